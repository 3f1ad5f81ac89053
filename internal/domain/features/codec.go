// Package features turns a customer record into the numeric vector the
// churn classifier was trained on: label-encode Gender, one-hot encode
// Geography with France dropped, order columns by the trained feature-name
// list, then standardize.
package features

import (
	"churn-service/internal/domain/customer"
	"churn-service/internal/pkg/apperrors"
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	ColCreditScore      = "CreditScore"
	ColGender           = "Gender"
	ColAge              = "Age"
	ColTenure           = "Tenure"
	ColBalance          = "Balance"
	ColNumOfProducts    = "NumOfProducts"
	ColHasCrCard        = "HasCrCard"
	ColIsActiveMember   = "IsActiveMember"
	ColEstimatedSalary  = "EstimatedSalary"
	ColGeographyGermany = "Geography_Germany"
	ColGeographySpain   = "Geography_Spain"
)

// TrainedOrder is the column order captured when the artifacts were fitted.
var TrainedOrder = FeatureNames{
	ColCreditScore,
	ColGender,
	ColAge,
	ColTenure,
	ColBalance,
	ColNumOfProducts,
	ColHasCrCard,
	ColIsActiveMember,
	ColEstimatedSalary,
	ColGeographyGermany,
	ColGeographySpain,
}

// RawFeatures is the encoded, unscaled record. Field order follows
// TrainedOrder so the JSON form reads in column order.
type RawFeatures struct {
	CreditScore      int     `json:"CreditScore"`
	Gender           int     `json:"Gender"`
	Age              int     `json:"Age"`
	Tenure           int     `json:"Tenure"`
	Balance          float64 `json:"Balance"`
	NumOfProducts    int     `json:"NumOfProducts"`
	HasCrCard        int     `json:"HasCrCard"`
	IsActiveMember   int     `json:"IsActiveMember"`
	EstimatedSalary  float64 `json:"EstimatedSalary"`
	GeographyGermany int     `json:"Geography_Germany"`
	GeographySpain   int     `json:"Geography_Spain"`
}

func (f RawFeatures) columns() map[string]float64 {
	return map[string]float64{
		ColCreditScore:      float64(f.CreditScore),
		ColGender:           float64(f.Gender),
		ColAge:              float64(f.Age),
		ColTenure:           float64(f.Tenure),
		ColBalance:          f.Balance,
		ColNumOfProducts:    float64(f.NumOfProducts),
		ColHasCrCard:        float64(f.HasCrCard),
		ColIsActiveMember:   float64(f.IsActiveMember),
		ColEstimatedSalary:  f.EstimatedSalary,
		ColGeographyGermany: float64(f.GeographyGermany),
		ColGeographySpain:   float64(f.GeographySpain),
	}
}

// Encoded pairs the raw field mapping with the same values laid out in
// feature-name order.
type Encoded struct {
	Raw    RawFeatures
	Vector []float64
}

// FeatureNames is the ordered column list fixed at training time.
type FeatureNames []string

func NewFeatureNames(names []string) (FeatureNames, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: feature name list is empty", apperrors.ErrInvalidArgument)
	}
	seen := make(map[string]struct{}, len(names))
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: feature name at position %d is blank", apperrors.ErrInvalidArgument, i)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate feature name %q", apperrors.ErrInvalidArgument, name)
		}
		seen[name] = struct{}{}
	}
	return append(FeatureNames(nil), names...), nil
}

func (n FeatureNames) Index(name string) (int, bool) {
	for i, candidate := range n {
		if candidate == name {
			return i, true
		}
	}
	return -1, false
}

// CheckSchema reports a SchemaMismatch unless the list names exactly the
// columns produced by Encode.
func (n FeatureNames) CheckSchema() error {
	produced := RawFeatures{}.columns()
	if len(n) != len(produced) {
		return apperrors.WrapSchemaMismatch(fmt.Sprintf("feature list has %d columns, encoder produces %d", len(n), len(produced)))
	}
	for _, name := range n {
		if _, ok := produced[name]; !ok {
			return apperrors.WrapSchemaMismatch(fmt.Sprintf("feature %q is not produced by the encoder", name))
		}
	}
	return nil
}

// GenderEncoder is a fitted label encoder. Codes are positions in the
// sorted class list, so Female=0 and Male=1 for the trained vocabulary.
type GenderEncoder struct {
	classes []string
	codes   map[string]int
}

func NewGenderEncoder(classes []string) (*GenderEncoder, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("%w: gender encoder has no classes", apperrors.ErrInvalidArgument)
	}
	if !sort.StringsAreSorted(classes) {
		return nil, fmt.Errorf("%w: gender encoder classes must be sorted, got %v", apperrors.ErrInvalidArgument, classes)
	}
	codes := make(map[string]int, len(classes))
	for i, class := range classes {
		if _, dup := codes[class]; dup {
			return nil, fmt.Errorf("%w: duplicate gender class %q", apperrors.ErrInvalidArgument, class)
		}
		codes[class] = i
	}
	return &GenderEncoder{classes: append([]string(nil), classes...), codes: codes}, nil
}

// Encode never accepts values outside the trained vocabulary.
func (e *GenderEncoder) Encode(value string) (int, error) {
	code, ok := e.codes[value]
	if !ok {
		return 0, apperrors.NewCategoryError(ColGender, value, e.classes)
	}
	return code, nil
}

func (e *GenderEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}

// Scaler is a fitted standardization: (x - mean) / scale per column.
type Scaler struct {
	mean  []float64
	scale []float64
}

func NewScaler(mean, scale []float64) (*Scaler, error) {
	if len(mean) == 0 || len(mean) != len(scale) {
		return nil, fmt.Errorf("%w: scaler needs equal, non-empty mean and scale (got %d and %d)", apperrors.ErrInvalidArgument, len(mean), len(scale))
	}
	for i := range scale {
		if math.IsNaN(mean[i]) || math.IsInf(mean[i], 0) {
			return nil, fmt.Errorf("%w: scaler mean[%d] is not finite", apperrors.ErrInvalidArgument, i)
		}
		if scale[i] == 0 || math.IsNaN(scale[i]) || math.IsInf(scale[i], 0) {
			return nil, fmt.Errorf("%w: scaler scale[%d] must be finite and non-zero", apperrors.ErrInvalidArgument, i)
		}
	}
	return &Scaler{
		mean:  append([]float64(nil), mean...),
		scale: append([]float64(nil), scale...),
	}, nil
}

func (s *Scaler) Len() int {
	return len(s.mean)
}

// Encode builds the raw feature vector for rec in the order given by names.
// Geography values other than Germany and Spain encode like France.
func Encode(rec customer.Record, encoder *GenderEncoder, names FeatureNames) (Encoded, error) {
	gender, err := encoder.Encode(rec.Gender)
	if err != nil {
		return Encoded{}, err
	}

	raw := RawFeatures{
		CreditScore:      rec.CreditScore,
		Gender:           gender,
		Age:              rec.Age,
		Tenure:           rec.Tenure,
		Balance:          rec.Balance,
		NumOfProducts:    rec.NumOfProducts,
		HasCrCard:        rec.HasCrCard,
		IsActiveMember:   rec.IsActiveMember,
		EstimatedSalary:  rec.EstimatedSalary,
		GeographyGermany: indicator(rec.Geography == customer.GeographyGermany),
		GeographySpain:   indicator(rec.Geography == customer.GeographySpain),
	}

	if err := names.CheckSchema(); err != nil {
		return Encoded{}, err
	}
	cols := raw.columns()
	vector := make([]float64, len(names))
	for i, name := range names {
		vector[i] = cols[name]
	}
	return Encoded{Raw: raw, Vector: vector}, nil
}

// Scale standardizes raw elementwise. Extreme inputs pass through unclipped.
func Scale(raw []float64, scaler *Scaler) ([]float64, error) {
	if len(raw) != scaler.Len() {
		return nil, apperrors.WrapSchemaMismatch(fmt.Sprintf("vector has %d columns, scaler was fitted on %d", len(raw), scaler.Len()))
	}
	scaled := make([]float64, len(raw))
	for i, v := range raw {
		scaled[i] = (v - scaler.mean[i]) / scaler.scale[i]
	}
	return scaled, nil
}

func indicator(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Codec binds the fitted encoder, column order and scaler together.
type Codec struct {
	encoder *GenderEncoder
	names   FeatureNames
	scaler  *Scaler
}

func NewCodec(encoder *GenderEncoder, names FeatureNames, scaler *Scaler) (*Codec, error) {
	if encoder == nil || scaler == nil {
		return nil, fmt.Errorf("%w: codec needs an encoder and a scaler", apperrors.ErrInvalidArgument)
	}
	if err := names.CheckSchema(); err != nil {
		return nil, err
	}
	if scaler.Len() != len(names) {
		return nil, apperrors.WrapSchemaMismatch(fmt.Sprintf("scaler was fitted on %d columns, feature list has %d", scaler.Len(), len(names)))
	}
	return &Codec{encoder: encoder, names: names, scaler: scaler}, nil
}

// Transform encodes rec and returns the raw encoding with its scaled vector.
func (c *Codec) Transform(rec customer.Record) (RawFeatures, []float64, error) {
	encoded, err := Encode(rec, c.encoder, c.names)
	if err != nil {
		return RawFeatures{}, nil, err
	}
	scaled, err := Scale(encoded.Vector, c.scaler)
	if err != nil {
		return RawFeatures{}, nil, err
	}
	return encoded.Raw, scaled, nil
}

func (c *Codec) FeatureNames() FeatureNames {
	return append(FeatureNames(nil), c.names...)
}
