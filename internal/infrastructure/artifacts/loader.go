package artifacts

import (
	"churn-service/internal/domain/features"
	"churn-service/internal/domain/prediction"
	"churn-service/internal/infrastructure/xgboost"
	"churn-service/internal/pkg/apperrors"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
)

// Fixed artifact filenames written by the training job.
const (
	ScalerFile        = "scaler.json"
	GenderEncoderFile = "label_encoder_gender.json"
	FeatureNamesFile  = "feature_names.json"
	ModelFile         = "model.json"
)

type scalerDocument struct {
	FeatureNames []string  `json:"feature_names,omitempty"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
}

type encoderDocument struct {
	Classes []string `json:"classes"`
}

// ResolveDir returns dir, or the directory of the running executable when
// dir is empty.
func ResolveDir(dir string) (string, error) {
	if dir != "" {
		return filepath.Abs(dir)
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable path: %w", err)
	}
	return filepath.Dir(exe), nil
}

// Load reads the four training artifacts from dir. Every failure is an
// ArtifactLoadError and must stop the process from serving.
func Load(dir string, logger *slog.Logger) (prediction.Artifacts, error) {
	logger = logger.With(slog.String("component", "artifactLoader"), slog.String("dir", dir))

	namesPath := filepath.Join(dir, FeatureNamesFile)
	var rawNames []string
	if err := readJSON(namesPath, &rawNames); err != nil {
		return prediction.Artifacts{}, apperrors.NewArtifactLoadError("feature names", namesPath, err)
	}
	names, err := features.NewFeatureNames(rawNames)
	if err != nil {
		return prediction.Artifacts{}, apperrors.NewArtifactLoadError("feature names", namesPath, err)
	}
	if err := names.CheckSchema(); err != nil {
		return prediction.Artifacts{}, apperrors.NewArtifactLoadError("feature names", namesPath, err)
	}
	logger.Info("Loaded feature names", slog.Int("count", len(names)))

	encoderPath := filepath.Join(dir, GenderEncoderFile)
	var encDoc encoderDocument
	if err := readJSON(encoderPath, &encDoc); err != nil {
		return prediction.Artifacts{}, apperrors.NewArtifactLoadError("gender encoder", encoderPath, err)
	}
	encoder, err := features.NewGenderEncoder(encDoc.Classes)
	if err != nil {
		return prediction.Artifacts{}, apperrors.NewArtifactLoadError("gender encoder", encoderPath, err)
	}
	logger.Info("Loaded gender encoder", slog.Any("classes", encoder.Classes()))

	scalerPath := filepath.Join(dir, ScalerFile)
	var scDoc scalerDocument
	if err := readJSON(scalerPath, &scDoc); err != nil {
		return prediction.Artifacts{}, apperrors.NewArtifactLoadError("scaler", scalerPath, err)
	}
	if len(scDoc.FeatureNames) > 0 && !slices.Equal(scDoc.FeatureNames, []string(names)) {
		err := apperrors.WrapSchemaMismatch(fmt.Sprintf("scaler was fitted on %v, feature list is %v", scDoc.FeatureNames, names))
		return prediction.Artifacts{}, apperrors.NewArtifactLoadError("scaler", scalerPath, err)
	}
	scaler, err := features.NewScaler(scDoc.Mean, scDoc.Scale)
	if err != nil {
		return prediction.Artifacts{}, apperrors.NewArtifactLoadError("scaler", scalerPath, err)
	}

	codec, err := features.NewCodec(encoder, names, scaler)
	if err != nil {
		return prediction.Artifacts{}, apperrors.NewArtifactLoadError("scaler", scalerPath, err)
	}
	logger.Info("Loaded scaler", slog.Int("columns", scaler.Len()))

	modelPath := filepath.Join(dir, ModelFile)
	model, err := xgboost.LoadFile(modelPath, names)
	if err != nil {
		return prediction.Artifacts{}, apperrors.NewArtifactLoadError("classifier", modelPath, err)
	}
	logger.Info("Loaded classifier", slog.Int("trees", model.NumTrees()))

	return prediction.Artifacts{Codec: codec, Classifier: model}, nil
}

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	decoder := json.NewDecoder(f)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
