package server

import (
	"net/http"
	"strings"

	"EchoFM/cache"
	"EchoFM/logger"
)

// SearchHandler searches tracks by title, artist or album substring.
// Results are cached briefly per normalized query.
func (h *APIHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	limit, err := parseLimit(r, 20, 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := cache.KeySearch + strings.ToLower(query)
	v, err := h.store.GetOrSet(key, cache.TTLSearch, func() (interface{}, error) {
		tracks, err := h.trackRepo.Search(r.Context(), query, limit)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"query":   query,
			"results": tracks,
		}, nil
	})
	if err != nil {
		logger.Error("search failed",
			logger.String("query", query),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	writeJSON(w, http.StatusOK, v)
}
