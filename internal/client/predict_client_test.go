package client

import (
	"churn-service/internal/api/handler/dto"
	"churn-service/internal/domain/customer"
	"churn-service/internal/pkg/apperrors"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictClient_Predict(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		var got dto.PredictRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/predict", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"prediction":1,"churn_probability":0.5125,"label":"Churned","input_features":{"CreditScore":652,"Geography_Germany":1}}`))
		}))
		defer srv.Close()
		rec := customer.DefaultRecord()
		rec.Geography = customer.GeographyGermany

		result, err := NewPredictClient(srv.URL+"/", time.Second).Predict(ctx, rec)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Prediction)
		assert.Equal(t, 0.5125, result.ChurnProbability)
		assert.Equal(t, "Churned", result.Label)
		assert.Equal(t, 1, result.InputFeatures.GeographyGermany)
		require.NotNil(t, got.Geography)
		assert.Equal(t, "Germany", *got.Geography)
		assert.Equal(t, 652, *got.CreditScore)
	})

	t.Run("Error - validation answer", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"code":"UNKNOWN_CATEGORY","message":"unknown Gender value","field":"Gender"}}`))
		}))
		defer srv.Close()

		_, err := NewPredictClient(srv.URL, time.Second).Predict(ctx, customer.DefaultRecord())

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "Gender", apiErr.Detail.Field)
		assert.Contains(t, err.Error(), "field Gender")
		assert.NotErrorIs(t, err, apperrors.ErrConnectivity)
	})

	t.Run("Error - plain text answer", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewPredictClient(srv.URL, time.Second).Predict(ctx, customer.DefaultRecord())

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "upstream exploded", apiErr.Detail.Message)
	})

	t.Run("Error - server unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewPredictClient(url, time.Second).Predict(ctx, customer.DefaultRecord())

		assert.ErrorIs(t, err, apperrors.ErrConnectivity)
		var connErr *apperrors.ConnectivityError
		require.ErrorAs(t, err, &connErr)
		assert.Equal(t, url+"/predict", connErr.URL)
	})

	t.Run("Error - timeout is a connectivity failure", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		_, err := NewPredictClient(srv.URL, 50*time.Millisecond).Predict(ctx, customer.DefaultRecord())

		assert.ErrorIs(t, err, apperrors.ErrConnectivity)
	})
}

func TestNewPredictClient_DefaultTimeout(t *testing.T) {
	c := NewPredictClient("http://127.0.0.1:8000", 0)
	assert.Equal(t, DefaultTimeout, c.client.Timeout)
	assert.Equal(t, "http://127.0.0.1:8000", c.baseURL)
}
