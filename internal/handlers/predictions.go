package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/fixturecast/predictor-api/internal/logic"
	"github.com/fixturecast/predictor-api/internal/models"
)

// CreatePrediction predicts the result of a fixture between two competitors
// @Summary Predict a match
// @Description Competitor A is treated as the side playing at its own venue
// @Tags Predictions
// @Accept json
// @Produce json
// @Param body body models.PredictionRequest true "Prediction request"
// @Success 200 {object} models.PredictionResponse
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 503 {object} map[string]string "Statistics source unavailable"
// @Router /predictions [post]
func (h *Handler) CreatePrediction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	var req models.PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	ctx := r.Context()
	if h.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.requestTimeout)
		defer cancel()
	}

	res, err := h.prediction.Predict(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, logic.ErrInvalidRequest):
			h.errorResponse(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, logic.ErrSourceUnavailable):
			h.logger.Errorw("Statistics source unavailable", "error", err,
				"competitor_a", req.CompetitorAID, "competitor_b", req.CompetitorBID)
			h.errorResponse(w, http.StatusServiceUnavailable, "Statistics source unavailable")
		default:
			h.logger.Errorw("Failed to predict match", "error", err,
				"competitor_a", req.CompetitorAID, "competitor_b", req.CompetitorBID)
			h.errorResponse(w, http.StatusInternalServerError, "Failed to predict match")
		}
		return
	}

	if req.MatchID > 0 && h.history != nil {
		if _, err := h.history.Record(r.Context(), req.MatchID, res); err != nil {
			h.logger.Warnw("Failed to record prediction history", "error", err, "match_id", req.MatchID)
		}
	}

	h.jsonResponse(w, http.StatusOK, toResponse(res))
}

// GetPredictionHistory lists recently served predictions
// @Summary Prediction history
// @Tags Predictions
// @Produce json
// @Param limit query int false "Rows to return (max 100)" default(50)
// @Success 200 {array} models.PredictionHistory
// @Router /predictions/history [get]
func (h *Handler) GetPredictionHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.errorResponse(w, http.StatusNotImplemented, "Prediction history disabled")
		return
	}

	limit := logic.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.errorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	rows, err := h.history.List(r.Context(), limit)
	if err != nil {
		h.logger.Errorw("Failed to list prediction history", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to list prediction history")
		return
	}
	if rows == nil {
		rows = []models.PredictionHistory{}
	}
	h.jsonResponse(w, http.StatusOK, rows)
}

// ReloadModel swaps in the artifact at the configured path
// @Summary Reload model artifact
// @Tags Admin
// @Produce json
// @Security AdminToken
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string "Reload failed, previous model kept"
// @Router /admin/model/reload [post]
func (h *Handler) ReloadModel(w http.ResponseWriter, r *http.Request) {
	snap, err := h.model.Reload(h.artifactPath)
	if err != nil {
		h.errorResponse(w, http.StatusInternalServerError, "Reload failed: "+err.Error())
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"model_version": snap.Version,
		"loaded_at":     snap.LoadedAt,
	})
}

func toResponse(res *models.PredictionResult) models.PredictionResponse {
	keyFeatures := make(map[string]float64, len(res.KeyFeatures))
	for k, v := range res.KeyFeatures {
		keyFeatures[k] = round(v, 2)
	}
	insights := res.Insights
	if insights == nil {
		insights = []string{}
	}
	return models.PredictionResponse{
		RequestID:        res.RequestID,
		PredictedOutcome: res.PredictedLabel,
		PredictedWinner:  res.PredictedWinner,
		GoalsA:           round(res.GoalsA, 1),
		GoalsB:           round(res.GoalsB, 1),
		ConfidenceScore:  round(res.Confidence, 2),
		ProbA:            round(res.Probabilities.A, 2),
		ProbDraw:         round(res.Probabilities.Draw, 2),
		ProbB:            round(res.Probabilities.B, 2),
		ModelVersion:     res.ModelVersion,
		Insights:         insights,
		KeyFeatures:      keyFeatures,
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return "invalid field " + fe.Field() + ": failed " + fe.Tag()
	}
	return "Invalid request"
}
