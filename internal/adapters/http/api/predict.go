package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/winrate/internal/adapters/history"
	"github.com/okian/winrate/internal/domain/prediction"
	"github.com/okian/winrate/pkg/logger"
)

// PredictHandler handles prediction requests.
type PredictHandler struct {
	deps Dependencies
}

// NewPredictHandler creates a new prediction handler.
func NewPredictHandler(deps Dependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// HandleGetPrediction handles GET /predict/{player_id} requests.
// The breakdown is included unless explain=false is passed.
func (h *PredictHandler) HandleGetPrediction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	playerID := strings.TrimPrefix(r.URL.Path, "/predict/")
	if playerID == "" || strings.Contains(playerID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	explain := true
	if v := r.URL.Query().Get("explain"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		explain = b
	}

	p, err := h.deps.Predict(r.Context(), playerID)
	if err != nil {
		status, code := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger.Get().Error(r.Context(), "prediction request failed",
				logger.String("player_id", playerID),
				logger.String("code", code),
				logger.Error(err),
			)
		}
		writeError(w, status, code, err)
		return
	}
	if !explain {
		p = p.WithoutBreakdown()
	}
	writeJSON(w, http.StatusOK, p)
}

// statusFor maps prediction errors to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, prediction.ErrCanceled), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "canceled"
	case errors.Is(err, history.ErrInvalidPlayerID):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, history.ErrPlayerNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, prediction.ErrEmptyHistory):
		return http.StatusUnprocessableEntity, "empty_history"
	case errors.Is(err, history.ErrMalformedSource):
		return http.StatusBadGateway, "malformed_source"
	case errors.Is(err, history.ErrSourceUnavailable):
		return http.StatusBadGateway, "source_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
