package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredLogger(t *testing.T) {
	serve := func(status int) map[string]interface{} {
		logBuffer := new(bytes.Buffer)
		logger := slog.New(slog.NewJSONHandler(logBuffer, nil))

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"prediction":1}`))
		})

		req := httptest.NewRequest(http.MethodPost, "/predict?debug=1", nil)
		req.RemoteAddr = "192.0.2.1:12345"
		req.Header.Set("User-Agent", "TestAgent/1.0")
		req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "test-request-id-123"))

		rr := httptest.NewRecorder()
		StructuredLogger(logger)(next).ServeHTTP(rr, req)
		require.Equal(t, status, rr.Code)

		var logEntry map[string]interface{}
		require.NoError(t, json.Unmarshal(logBuffer.Bytes(), &logEntry), "Failed to unmarshal log output")
		return logEntry
	}

	t.Run("Success", func(t *testing.T) {
		entry := serve(http.StatusOK)

		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "Served request", entry["msg"])
		assert.Equal(t, "http", entry["component"])
		assert.Equal(t, http.MethodPost, entry["method"])
		assert.Equal(t, "/predict", entry["path"])
		assert.Equal(t, "192.0.2.1:12345", entry["remote_addr"])
		assert.Equal(t, "TestAgent/1.0", entry["user_agent"])
		assert.Equal(t, float64(http.StatusOK), entry["status"])
		assert.Equal(t, float64(len(`{"prediction":1}`)), entry["bytes_written"])
		assert.Equal(t, "test-request-id-123", entry["request_id"])
		assert.Contains(t, entry, "latency_ms")
	})

	t.Run("Error - server errors log at error level", func(t *testing.T) {
		entry := serve(http.StatusInternalServerError)

		assert.Equal(t, "ERROR", entry["level"])
	})
}
