package customer_test

import (
	"churn-service/internal/domain/customer"
	"churn-service/internal/pkg/apperrors"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRecord(t *testing.T) {
	rec := customer.DefaultRecord()

	assert.Equal(t, 652, rec.CreditScore)
	assert.Equal(t, customer.GeographyFrance, rec.Geography)
	assert.Equal(t, "Female", rec.Gender)
	assert.Equal(t, 37, rec.Age)
	assert.Equal(t, 5, rec.Tenure)
	assert.Equal(t, 97198.54, rec.Balance)
	assert.Equal(t, 1, rec.NumOfProducts)
	assert.Equal(t, 1, rec.HasCrCard)
	assert.Equal(t, 1, rec.IsActiveMember)
	assert.Equal(t, 100193.91, rec.EstimatedSalary)
	assert.NoError(t, rec.Validate(), "defaults must be valid")
}

func TestRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *customer.Record)
		field   string
		wantErr bool
	}{
		{"CreditScore lower bound accepted", func(r *customer.Record) { r.CreditScore = 300 }, "", false},
		{"CreditScore upper bound accepted", func(r *customer.Record) { r.CreditScore = 900 }, "", false},
		{"CreditScore below range rejected", func(r *customer.Record) { r.CreditScore = 299 }, "CreditScore", true},
		{"CreditScore above range rejected", func(r *customer.Record) { r.CreditScore = 901 }, "CreditScore", true},
		{"Germany accepted", func(r *customer.Record) { r.Geography = customer.GeographyGermany }, "", false},
		{"Spain accepted", func(r *customer.Record) { r.Geography = customer.GeographySpain }, "", false},
		{"unknown Geography rejected", func(r *customer.Record) { r.Geography = "Italy" }, "Geography", true},
		{"empty Gender rejected", func(r *customer.Record) { r.Gender = "" }, "Gender", true},
		{"Age 18 accepted", func(r *customer.Record) { r.Age = 18 }, "", false},
		{"Age 100 accepted", func(r *customer.Record) { r.Age = 100 }, "", false},
		{"Age 17 rejected", func(r *customer.Record) { r.Age = 17 }, "Age", true},
		{"Age 101 rejected", func(r *customer.Record) { r.Age = 101 }, "Age", true},
		{"Tenure 0 accepted", func(r *customer.Record) { r.Tenure = 0 }, "", false},
		{"Tenure 11 rejected", func(r *customer.Record) { r.Tenure = 11 }, "Tenure", true},
		{"Tenure negative rejected", func(r *customer.Record) { r.Tenure = -1 }, "Tenure", true},
		{"Balance zero accepted", func(r *customer.Record) { r.Balance = 0 }, "", false},
		{"Balance negative rejected", func(r *customer.Record) { r.Balance = -0.01 }, "Balance", true},
		{"Balance NaN rejected", func(r *customer.Record) { r.Balance = math.NaN() }, "Balance", true},
		{"Balance infinite rejected", func(r *customer.Record) { r.Balance = math.Inf(1) }, "Balance", true},
		{"NumOfProducts 4 accepted", func(r *customer.Record) { r.NumOfProducts = 4 }, "", false},
		{"NumOfProducts 0 rejected", func(r *customer.Record) { r.NumOfProducts = 0 }, "NumOfProducts", true},
		{"NumOfProducts 5 rejected", func(r *customer.Record) { r.NumOfProducts = 5 }, "NumOfProducts", true},
		{"HasCrCard 0 accepted", func(r *customer.Record) { r.HasCrCard = 0 }, "", false},
		{"HasCrCard 2 rejected", func(r *customer.Record) { r.HasCrCard = 2 }, "HasCrCard", true},
		{"IsActiveMember -1 rejected", func(r *customer.Record) { r.IsActiveMember = -1 }, "IsActiveMember", true},
		{"EstimatedSalary negative rejected", func(r *customer.Record) { r.EstimatedSalary = -5 }, "EstimatedSalary", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := customer.DefaultRecord()
			tt.mutate(&rec)

			err := rec.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			var vErr *apperrors.ValidationError
			if assert.True(t, errors.As(err, &vErr)) {
				assert.Equal(t, tt.field, vErr.Field)
			}
		})
	}
}

func TestGeography_Valid(t *testing.T) {
	assert.True(t, customer.GeographyFrance.Valid())
	assert.True(t, customer.GeographyGermany.Valid())
	assert.True(t, customer.GeographySpain.Valid())
	assert.False(t, customer.Geography("france").Valid())
	assert.False(t, customer.Geography("").Valid())
}
