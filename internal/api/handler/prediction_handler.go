package handler

import (
	"churn-service/internal/api/handler/dto"
	"churn-service/internal/domain/prediction"
	"churn-service/internal/pkg/apperrors"
	"fmt"
	"log/slog"
	"net/http"
)

const livenessMessage = "Churn Prediction API is running. Go to /swagger for the API docs."

type PredictionHandler struct {
	service prediction.Service
	logger  *slog.Logger
}

func NewPredictionHandler(svc prediction.Service, logger *slog.Logger) *PredictionHandler {
	if svc == nil {
		panic("PredictionService cannot be nil for PredictionHandler")
	}
	return &PredictionHandler{
		service: svc,
		logger:  logger.With("component", "PredictionHandler"),
	}
}

// Predict scores a single customer record.
//
// @Summary Predict customer churn
// @Description Encodes and scales the customer record with the training artifacts and returns the churn label, the probability of churn rounded to 4 decimals, and the raw encoded features. Omitted fields take their documented defaults.
// @Tags Prediction
// @Accept json
// @Produce json
// @Param request body dto.PredictRequest true "Customer record"
// @Success 200 {object} dto.PredictResponse "Prediction"
// @Failure 400 {object} dto.ErrorResponse "Invalid or out-of-range field"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid bearer token"
// @Failure 500 {object} dto.ErrorResponse "Feature schema mismatch or internal error"
// @Router /predict [post]
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req dto.PredictRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.DebugContext(r.Context(), "Failed to decode predict request", "error", err)
		respondError(w, fmt.Errorf("%w: invalid request body: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	rec, err := req.ToRecord()
	if err != nil {
		h.logger.DebugContext(r.Context(), "Rejected customer record", "error", err)
		respondError(w, err)
		return
	}

	result, err := h.service.Predict(r.Context(), rec)
	if err != nil {
		respondError(w, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Prediction served", "label", result.Label, "churn_probability", result.ChurnProbability)
	respondJSON(w, http.StatusOK, dto.NewPredictResponse(result))
}

// Root reports liveness.
//
// @Summary Liveness message
// @Tags Health
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router / [get]
func (h *PredictionHandler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.MessageResponse{Message: livenessMessage})
}
