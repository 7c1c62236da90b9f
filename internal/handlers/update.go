package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/markusmuilu/Predicting-Nba/internal/logic"
	"github.com/markusmuilu/Predicting-Nba/internal/models"
)

// Update runs one resolve-then-generate cycle synchronously. The cycle keeps
// running if the client goes away and stops only at the update timeout.
// @Summary Run the daily cycle now
// @Tags Predictions
// @Produce json
// @Success 200 {object} models.UpdateResponse
// @Failure 409 {object} models.ErrorResponse "A cycle is already running"
// @Failure 500 {object} models.ErrorResponse
// @Router /update [post]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.updateTimeout)
	defer cancel()

	report, err := h.cycle.Run(ctx)
	if err != nil {
		if errors.Is(err, logic.ErrCycleRunning) {
			h.errorResponse(w, http.StatusConflict, "Update already in progress")
			return
		}
		h.logger.Errorw("Manual update failed", "error", err, "cycle_id", report.ID)
		h.errorResponse(w, http.StatusInternalServerError, "Update failed")
		return
	}

	h.jsonResponse(w, http.StatusOK, models.UpdateResponse{
		ResolvedCount:  report.Resolve.Resolved,
		GeneratedCount: report.Generate.Generated,
	})
}
