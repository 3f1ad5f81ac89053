// Package web serves the dashboard: a prediction form backed by the
// inference API and summary statistics of the historical dataset.
package web

import (
	"bytes"
	"churn-service/internal/api/handler/dto"
	"churn-service/internal/domain/customer"
	"churn-service/internal/domain/dashboard"
	"churn-service/internal/pkg/apperrors"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
)

const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Predictor is satisfied by client.PredictClient.
type Predictor interface {
	Predict(ctx context.Context, rec customer.Record) (*dto.PredictResponse, error)
}

type Handler struct {
	predictor Predictor
	stats     dashboard.Service
	apiURL    string
	logger    *slog.Logger
}

func NewHandler(predictor Predictor, stats dashboard.Service, apiURL string, logger *slog.Logger) *Handler {
	if predictor == nil || stats == nil {
		panic("web.Handler requires a predictor and a dashboard service")
	}
	return &Handler{
		predictor: predictor,
		stats:     stats,
		apiURL:    apiURL,
		logger:    logger.With("component", "DashboardHandler"),
	}
}

type formValues struct {
	CreditScore     string
	Geography       string
	Gender          string
	Age             string
	Tenure          string
	Balance         string
	NumOfProducts   string
	HasCrCard       string
	IsActiveMember  string
	EstimatedSalary string
}

func formFromRecord(rec customer.Record) formValues {
	return formValues{
		CreditScore:     strconv.Itoa(rec.CreditScore),
		Geography:       string(rec.Geography),
		Gender:          rec.Gender,
		Age:             strconv.Itoa(rec.Age),
		Tenure:          strconv.Itoa(rec.Tenure),
		Balance:         strconv.FormatFloat(rec.Balance, 'f', -1, 64),
		NumOfProducts:   strconv.Itoa(rec.NumOfProducts),
		HasCrCard:       strconv.Itoa(rec.HasCrCard),
		IsActiveMember:  strconv.Itoa(rec.IsActiveMember),
		EstimatedSalary: strconv.FormatFloat(rec.EstimatedSalary, 'f', -1, 64),
	}
}

// record parses the submitted form. Blank fields keep their defaults.
func (f formValues) record() (customer.Record, error) {
	rec := customer.DefaultRecord()
	ints := []struct {
		name string
		raw  string
		dst  *int
	}{
		{"CreditScore", f.CreditScore, &rec.CreditScore},
		{"Age", f.Age, &rec.Age},
		{"Tenure", f.Tenure, &rec.Tenure},
		{"NumOfProducts", f.NumOfProducts, &rec.NumOfProducts},
		{"HasCrCard", f.HasCrCard, &rec.HasCrCard},
		{"IsActiveMember", f.IsActiveMember, &rec.IsActiveMember},
	}
	for _, field := range ints {
		if strings.TrimSpace(field.raw) == "" {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(field.raw))
		if err != nil {
			return customer.Record{}, apperrors.NewValidationError(field.name, "must be a whole number")
		}
		*field.dst = v
	}
	floats := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"Balance", f.Balance, &rec.Balance},
		{"EstimatedSalary", f.EstimatedSalary, &rec.EstimatedSalary},
	}
	for _, field := range floats {
		if strings.TrimSpace(field.raw) == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(field.raw), 64)
		if err != nil {
			return customer.Record{}, apperrors.NewValidationError(field.name, "must be a number")
		}
		*field.dst = v
	}
	if f.Geography != "" {
		rec.Geography = customer.Geography(f.Geography)
	}
	if f.Gender != "" {
		rec.Gender = f.Gender
	}
	return rec, rec.Validate()
}

type featureRow struct {
	Name  string
	Value string
}

type predictionView struct {
	Label       string
	Churned     bool
	Probability float64
	Confidence  float64
	Risk        string
	Features    []featureRow
}

type predictPage struct {
	Form        formValues
	Geographies []customer.Geography
	Genders     []string
	Result      *predictionView
	Error       string
}

type dashboardPage struct {
	Stats *dashboard.Stats
	Error string
}

// RiskBand buckets a churn probability for display.
func RiskBand(p float64) string {
	switch {
	case p < 0.3:
		return RiskLow
	case p < 0.6:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func newPredictionView(resp *dto.PredictResponse) *predictionView {
	view := &predictionView{
		Label:       resp.Label,
		Churned:     resp.Prediction == 1,
		Probability: resp.ChurnProbability,
		Confidence:  math.Max(resp.ChurnProbability, 1-resp.ChurnProbability),
		Risk:        RiskBand(resp.ChurnProbability),
	}
	// Marshal to keep the wire names and column order of input_features.
	raw, _ := json.Marshal(resp.InputFeatures)
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if tok, err := decoder.Token(); err == nil && tok == json.Delim('{') {
		for decoder.More() {
			key, err := decoder.Token()
			if err != nil {
				break
			}
			var value json.Number
			if err := decoder.Decode(&value); err != nil {
				break
			}
			view.Features = append(view.Features, featureRow{Name: fmt.Sprint(key), Value: value.String()})
		}
	}
	return view
}

func (h *Handler) newPredictPage(form formValues) predictPage {
	return predictPage{
		Form:        form,
		Geographies: customer.Geographies,
		Genders:     []string{customer.GenderFemale, customer.GenderMale},
	}
}

func (h *Handler) PredictForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "predict.html", h.newPredictPage(formFromRecord(customer.DefaultRecord())))
}

func (h *Handler) SubmitPrediction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		page := h.newPredictPage(formFromRecord(customer.DefaultRecord()))
		page.Error = "Could not read the submitted form."
		h.render(w, http.StatusBadRequest, "predict.html", page)
		return
	}
	form := formValues{
		CreditScore:     r.PostForm.Get("CreditScore"),
		Geography:       r.PostForm.Get("Geography"),
		Gender:          r.PostForm.Get("Gender"),
		Age:             r.PostForm.Get("Age"),
		Tenure:          r.PostForm.Get("Tenure"),
		Balance:         r.PostForm.Get("Balance"),
		NumOfProducts:   r.PostForm.Get("NumOfProducts"),
		HasCrCard:       r.PostForm.Get("HasCrCard"),
		IsActiveMember:  r.PostForm.Get("IsActiveMember"),
		EstimatedSalary: r.PostForm.Get("EstimatedSalary"),
	}
	page := h.newPredictPage(form)

	rec, err := form.record()
	if err != nil {
		var ve *apperrors.ValidationError
		if errors.As(err, &ve) {
			page.Error = fmt.Sprintf("%s %s.", ve.Field, ve.Message)
		} else {
			page.Error = err.Error()
		}
		h.render(w, http.StatusBadRequest, "predict.html", page)
		return
	}

	resp, err := h.predictor.Predict(r.Context(), rec)
	switch {
	case errors.Is(err, apperrors.ErrConnectivity):
		h.logger.WarnContext(r.Context(), "Prediction API unreachable", "error", err)
		page.Error = fmt.Sprintf("Cannot connect to the prediction API at %s. Make sure the backend is running.", h.apiURL)
		h.render(w, http.StatusBadGateway, "predict.html", page)
		return
	case err != nil:
		h.logger.ErrorContext(r.Context(), "Prediction request failed", "error", err)
		page.Error = fmt.Sprintf("Prediction failed: %v", err)
		h.render(w, http.StatusBadGateway, "predict.html", page)
		return
	}

	page.Result = newPredictionView(resp)
	h.render(w, http.StatusOK, "predict.html", page)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Stats(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to compute dashboard statistics", "error", err)
		h.render(w, http.StatusInternalServerError, "dashboard.html", dashboardPage{Error: "The customer dataset could not be loaded."})
		return
	}
	h.render(w, http.StatusOK, "dashboard.html", dashboardPage{Stats: stats})
}

func (h *Handler) StatsJSON(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Stats(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to compute dashboard statistics", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(dto.ErrorResponse{Error: dto.ErrorDetail{Code: "DATASET_UNAVAILABLE", Message: "The customer dataset could not be loaded."}})
		return
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(stats)
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("Failed to render template", "template", name, "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
