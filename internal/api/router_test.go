package api

import (
	"churn-service/internal/config"
	"churn-service/internal/domain/prediction"
	"churn-service/internal/infrastructure/artifacts"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureDir = "../infrastructure/artifacts/testdata/fixture"

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	a, err := artifacts.Load(fixtureDir, logger)
	require.NoError(t, err)
	svc, err := prediction.NewService(a, 16, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	srv := httptest.NewServer(SetupRouter(ctx, svc, cfg, logger))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig() *config.Config {
	return &config.Config{Metrics: config.MetricsConfig{Path: "/metrics"}}
}

type predictBody struct {
	Prediction       int                `json:"prediction"`
	ChurnProbability float64            `json:"churn_probability"`
	Label            string             `json:"label"`
	InputFeatures    map[string]float64 `json:"input_features"`
}

func postPredict(t *testing.T, url, body string, header http.Header) (*http.Response, predictBody) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+"/predict", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out predictBody
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestRouter_Liveness(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Churn Prediction API is running. Go to /swagger for the API docs."}`, string(body))

	health, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestRouter_PredictGolden(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp, defaults := postPredict(t, srv.URL, `{}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0.3775, defaults.ChurnProbability)
	assert.Equal(t, 0, defaults.Prediction)
	assert.Equal(t, "Stayed", defaults.Label)

	resp, germany := postPredict(t, srv.URL, `{"Geography":"Germany"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0.5125, germany.ChurnProbability)
	assert.Equal(t, "Churned", germany.Label)

	for name, v := range defaults.InputFeatures {
		if name == "Geography_Germany" {
			assert.Equal(t, 0.0, v)
			assert.Equal(t, 1.0, germany.InputFeatures[name])
			continue
		}
		assert.Equal(t, v, germany.InputFeatures[name], name)
	}
}

func TestRouter_PredictErrors(t *testing.T) {
	srv := newTestServer(t, testConfig())

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"credit score below range", `{"CreditScore":299}`, http.StatusBadRequest},
		{"credit score above range", `{"CreditScore":901}`, http.StatusBadRequest},
		{"unknown gender", `{"Gender":"Other"}`, http.StatusBadRequest},
		{"unknown geography", `{"Geography":"Italy"}`, http.StatusBadRequest},
		{"negative balance", `{"Balance":-1}`, http.StatusBadRequest},
		{"malformed", `not json`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postPredict(t, srv.URL, tt.body, nil)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	t.Run("boundaries accepted", func(t *testing.T) {
		resp, _ := postPredict(t, srv.URL, `{"CreditScore":300,"Age":100,"Tenure":0,"NumOfProducts":4}`, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestRouter_Auth(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Auth = config.AuthConfig{Enabled: true, JWTSecret: "router-secret"}
	srv := newTestServer(t, cfg)

	resp, _ := postPredict(t, srv.URL, `{}`, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	tokenResp, err := http.Post(srv.URL+"/auth/token", "application/json", strings.NewReader(`{"username":"analyst"}`))
	require.NoError(t, err)
	defer tokenResp.Body.Close()
	require.Equal(t, http.StatusOK, tokenResp.StatusCode)
	var token map[string]string
	require.NoError(t, json.NewDecoder(tokenResp.Body).Decode(&token))

	resp, body := postPredict(t, srv.URL, `{}`, http.Header{"Authorization": {token["token"]}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0.3775, body.ChurnProbability)
}

func TestRouter_Metrics(t *testing.T) {
	srv := newTestServer(t, testConfig())
	resp, _ := postPredict(t, srv.URL, `{}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	metrics, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	body, _ := io.ReadAll(metrics.Body)

	assert.Contains(t, string(body), "churn_predictions_total")
	assert.Contains(t, string(body), `churn_http_requests_total{method="POST",path="/predict",status_code="200"}`)
}
