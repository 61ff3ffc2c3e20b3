package api

import (
	"net/http"
)

// StatsProvider reports prediction service counters: started, window,
// predictions, failures and historySource.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves the prediction service counters.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests. Counters change with every
// prediction, so responses are marked uncacheable.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}
