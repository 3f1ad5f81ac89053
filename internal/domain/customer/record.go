package customer

import (
	"churn-service/internal/pkg/apperrors"
	"fmt"
	"math"
)

type Geography string

const (
	GeographyFrance  Geography = "France"
	GeographyGermany Geography = "Germany"
	GeographySpain   Geography = "Spain"
)

// Geographies lists the trained geography levels in alphabetical order.
// France, the first level, is the one-hot reference category.
var Geographies = []Geography{GeographyFrance, GeographyGermany, GeographySpain}

func (g Geography) Valid() bool {
	for _, known := range Geographies {
		if g == known {
			return true
		}
	}
	return false
}

const (
	GenderFemale = "Female"
	GenderMale   = "Male"
)

const (
	MinCreditScore   = 300
	MaxCreditScore   = 900
	MinAge           = 18
	MaxAge           = 100
	MinTenure        = 0
	MaxTenure        = 10
	MinNumOfProducts = 1
	MaxNumOfProducts = 4
)

// Record is one customer described by the attributes the churn model is
// trained on. Gender is kept as free text: the trained encoder owns its
// vocabulary.
type Record struct {
	CreditScore     int
	Geography       Geography
	Gender          string
	Age             int
	Tenure          int
	Balance         float64
	NumOfProducts   int
	HasCrCard       int
	IsActiveMember  int
	EstimatedSalary float64
}

// DefaultRecord returns the dataset medians and modes used when a request
// omits a field.
func DefaultRecord() Record {
	return Record{
		CreditScore:     652,
		Geography:       GeographyFrance,
		Gender:          GenderFemale,
		Age:             37,
		Tenure:          5,
		Balance:         97198.54,
		NumOfProducts:   1,
		HasCrCard:       1,
		IsActiveMember:  1,
		EstimatedSalary: 100193.91,
	}
}

// Validate returns the first field that falls outside its declared range.
// Values are rejected, never clamped.
func (r Record) Validate() error {
	if err := intInRange("CreditScore", r.CreditScore, MinCreditScore, MaxCreditScore); err != nil {
		return err
	}
	if !r.Geography.Valid() {
		return apperrors.NewValidationError("Geography", fmt.Sprintf("must be one of %v, got %q", Geographies, r.Geography))
	}
	if r.Gender == "" {
		return apperrors.NewValidationError("Gender", "cannot be empty")
	}
	if err := intInRange("Age", r.Age, MinAge, MaxAge); err != nil {
		return err
	}
	if err := intInRange("Tenure", r.Tenure, MinTenure, MaxTenure); err != nil {
		return err
	}
	if err := nonNegative("Balance", r.Balance); err != nil {
		return err
	}
	if err := intInRange("NumOfProducts", r.NumOfProducts, MinNumOfProducts, MaxNumOfProducts); err != nil {
		return err
	}
	if err := intInRange("HasCrCard", r.HasCrCard, 0, 1); err != nil {
		return err
	}
	if err := intInRange("IsActiveMember", r.IsActiveMember, 0, 1); err != nil {
		return err
	}
	return nonNegative("EstimatedSalary", r.EstimatedSalary)
}

func intInRange(field string, value, lo, hi int) error {
	if value < lo || value > hi {
		return apperrors.NewValidationError(field, fmt.Sprintf("must be between %d and %d, got %d", lo, hi, value))
	}
	return nil
}

func nonNegative(field string, value float64) error {
	// NaN fails every comparison, so test for the accepted range.
	if !(value >= 0) || math.IsInf(value, 1) {
		return apperrors.NewValidationError(field, fmt.Sprintf("must be a finite non-negative number, got %v", value))
	}
	return nil
}

// HistoricalRecord is one row of the churn dataset.
type HistoricalRecord struct {
	RowNumber  int64
	CustomerID int64
	Surname    string
	Record
	Exited bool
}
