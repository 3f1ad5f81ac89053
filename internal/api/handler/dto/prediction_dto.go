package dto

import (
	"churn-service/internal/domain/customer"
	"churn-service/internal/domain/features"
	"churn-service/internal/domain/prediction"
)

// PredictRequest is a CustomerRecord where every field is optional. Omitted
// fields take the documented defaults.
type PredictRequest struct {
	CreditScore     *int     `json:"CreditScore,omitempty" example:"652"`
	Geography       *string  `json:"Geography,omitempty" example:"France"`
	Gender          *string  `json:"Gender,omitempty" example:"Female"`
	Age             *int     `json:"Age,omitempty" example:"37"`
	Tenure          *int     `json:"Tenure,omitempty" example:"5"`
	Balance         *float64 `json:"Balance,omitempty" example:"97198.54"`
	NumOfProducts   *int     `json:"NumOfProducts,omitempty" example:"1"`
	HasCrCard       *int     `json:"HasCrCard,omitempty" example:"1"`
	IsActiveMember  *int     `json:"IsActiveMember,omitempty" example:"1"`
	EstimatedSalary *float64 `json:"EstimatedSalary,omitempty" example:"100193.91"`
}

// ToRecord fills omitted fields with defaults and validates the result.
func (r *PredictRequest) ToRecord() (customer.Record, error) {
	rec := customer.DefaultRecord()
	setInt(&rec.CreditScore, r.CreditScore)
	if r.Geography != nil {
		rec.Geography = customer.Geography(*r.Geography)
	}
	if r.Gender != nil {
		rec.Gender = *r.Gender
	}
	setInt(&rec.Age, r.Age)
	setInt(&rec.Tenure, r.Tenure)
	setFloat(&rec.Balance, r.Balance)
	setInt(&rec.NumOfProducts, r.NumOfProducts)
	setInt(&rec.HasCrCard, r.HasCrCard)
	setInt(&rec.IsActiveMember, r.IsActiveMember)
	setFloat(&rec.EstimatedSalary, r.EstimatedSalary)

	if err := rec.Validate(); err != nil {
		return customer.Record{}, err
	}
	return rec, nil
}

// NewPredictRequest is the inverse of ToRecord, used by API clients.
func NewPredictRequest(rec customer.Record) PredictRequest {
	geography := string(rec.Geography)
	return PredictRequest{
		CreditScore:     &rec.CreditScore,
		Geography:       &geography,
		Gender:          &rec.Gender,
		Age:             &rec.Age,
		Tenure:          &rec.Tenure,
		Balance:         &rec.Balance,
		NumOfProducts:   &rec.NumOfProducts,
		HasCrCard:       &rec.HasCrCard,
		IsActiveMember:  &rec.IsActiveMember,
		EstimatedSalary: &rec.EstimatedSalary,
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

type PredictResponse struct {
	Prediction       int                  `json:"prediction" example:"0"`
	ChurnProbability float64              `json:"churn_probability" example:"0.1234"`
	Label            string               `json:"label" example:"Stayed"`
	InputFeatures    features.RawFeatures `json:"input_features"`
}

func NewPredictResponse(result *prediction.Result) PredictResponse {
	return PredictResponse{
		Prediction:       result.Prediction,
		ChurnProbability: result.ChurnProbability,
		Label:            result.Label,
		InputFeatures:    result.InputFeatures,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type TokenRequest struct {
	Username string `json:"username"`
}
