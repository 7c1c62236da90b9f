package handlers

import (
	"net/http"

	"github.com/markusmuilu/Predicting-Nba/internal/models"
)

// CurrentPredictions returns the Active ledger
// @Summary Pending predictions
// @Tags Predictions
// @Produce json
// @Success 200 {array} models.Pending
// @Failure 500 {object} models.ErrorResponse
// @Router /predictions/current [get]
func (h *Handler) CurrentPredictions(w http.ResponseWriter, r *http.Request) {
	active, err := h.ledger.LoadActive(r.Context())
	if err != nil {
		h.logger.Errorw("Failed to load active ledger", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to load predictions")
		return
	}

	h.jsonResponse(w, http.StatusOK, active.Records())
}

// PredictionHistory returns resolved predictions with an accuracy summary
// @Summary Resolved predictions
// @Tags Predictions
// @Produce json
// @Success 200 {object} models.HistoryResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /predictions/history [get]
func (h *Handler) PredictionHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.ledger.LoadHistory(r.Context())
	if err != nil {
		h.logger.Errorw("Failed to load prediction history", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to load history")
		return
	}

	acc := history.Accuracy()
	h.jsonResponse(w, http.StatusOK, models.HistoryResponse{
		Total:    acc.Total,
		Correct:  acc.Correct,
		Accuracy: acc.Rate,
		Records:  history.Records(),
	})
}
