package handler

import (
	"churn-service/internal/api/handler/dto"
	"churn-service/internal/pkg/apperrors"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

const (
	codeValidation      = "VALIDATION_ERROR"
	codeUnknownCategory = "UNKNOWN_CATEGORY"
	codeInvalidArgument = "INVALID_ARGUMENT"
	codeSchemaMismatch  = "SCHEMA_MISMATCH"
	codeUnauthorized    = "UNAUTHORIZED"
	codeNotFound        = "NOT_FOUND"
	codeInternal        = "INTERNAL_ERROR"
)

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	status, code, message, field := http.StatusInternalServerError, codeInternal, "An unexpected error occurred.", ""
	var validationError *apperrors.ValidationError
	var categoryError *apperrors.CategoryError

	switch {
	case errors.As(err, &validationError):
		status, code, message, field = http.StatusBadRequest, codeValidation, validationError.Message, validationError.Field
	case errors.As(err, &categoryError):
		status, code, message, field = http.StatusBadRequest, codeUnknownCategory, categoryError.Error(), categoryError.Field
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
		status, code, message = http.StatusBadRequest, codeInvalidArgument, err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		status, code, message = http.StatusUnauthorized, codeUnauthorized, "Unauthorized"
	case errors.Is(err, apperrors.ErrNotFound):
		status, code, message = http.StatusNotFound, codeNotFound, "Resource not found."
	case errors.Is(err, apperrors.ErrSchemaMismatch):
		slog.Default().Error("Feature schema mismatch", "error", err)
		code, message = codeSchemaMismatch, "Feature schema does not match the trained model."
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	resp := dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Code:    code,
			Message: message,
			Field:   field,
		},
	}
	respondJSON(w, status, resp)
}
