package server

import (
	"errors"
	"net/http"
	"strconv"

	"EchoFM/core/recommend"
	"EchoFM/logger"

	"github.com/gorilla/mux"
)

const recommendationAlgorithm = "hybrid (collaborative + content-based)"

// GetRecommendationsHandler returns personalized suggestions for the
// current user.
func (h *APIHandler) GetRecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit, err := parseLimit(r, 10, 50)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	recs, err := h.engine.Recommend(r.Context(), userID, limit)
	if err != nil {
		logger.Error("failed to compute recommendations",
			logger.Int64("userId", userID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to compute recommendations")
		return
	}

	if recs == nil {
		recs = []*recommend.ScoredTrack{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"recommendations": recs,
		"algorithm":       recommendationAlgorithm,
	})
}

// GetSimilarTracksHandler returns tracks sharing a source track's genre or
// artist.
func (h *APIHandler) GetSimilarTracksHandler(w http.ResponseWriter, r *http.Request) {
	trackID, err := strconv.ParseInt(mux.Vars(r)["trackId"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid track ID")
		return
	}

	limit, err := parseLimit(r, 10, 50)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	source, similar, err := h.engine.SimilarTo(r.Context(), trackID, limit)
	if err != nil {
		if errors.Is(err, recommend.ErrTrackNotFound) {
			writeError(w, http.StatusNotFound, "Track not found")
			return
		}
		logger.Error("failed to find similar tracks",
			logger.Int64("trackId", trackID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to find similar tracks")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sourceTrack": source,
		"similar":     similar,
	})
}
