package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/markusmuilu/Predicting-Nba/internal/models"
)

// Predict scores a single matchup for today. It never writes the ledger.
// @Summary Predict a matchup
// @Tags Predictions
// @Produce json
// @Param home query string true "Home team code (alias team1)"
// @Param away query string true "Away team code (alias team2)"
// @Success 200 {object} models.PredictResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /predict [get]
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := models.PredictRequest{
		Home: firstParam(q.Get("home"), q.Get("team1")),
		Away: firstParam(q.Get("away"), q.Get("team2")),
	}

	if err := h.validator.Struct(req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	date := models.DateOf(h.now(), h.league)
	prob, err := h.predictor.Predict(r.Context(), req.Home, req.Away, date)
	if err != nil {
		if errors.Is(err, models.ErrUnknownTeam) || errors.Is(err, models.ErrInvalidMatchup) {
			h.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Errorw("Prediction failed", "error", err, "home", req.Home, "away", req.Away, "date", date)
		h.errorResponse(w, http.StatusInternalServerError, "Prediction failed")
		return
	}

	h.jsonResponse(w, http.StatusOK, models.PredictResponse{
		Home:        req.Home,
		Away:        req.Away,
		ProbHomeWin: prob,
	})
}

func firstParam(values ...string) string {
	for _, v := range values {
		if v = strings.ToUpper(strings.TrimSpace(v)); v != "" {
			return v
		}
	}
	return ""
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s team is required", field)
	case "nefield":
		return "home and away must be different teams"
	default:
		return fmt.Sprintf("invalid %s team code", field)
	}
}
