package server

import (
	"encoding/json"
	"net/http"

	"EchoFM/logger"
)

// GetHistoryHandler returns the current user's play history, newest first.
func (h *APIHandler) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit, err := parseLimit(r, 50, 200)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.historyRepo.ListByUser(r.Context(), userID, limit)
	if err != nil {
		logger.Error("failed to list history",
			logger.Int64("userId", userID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to list history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"history": entries})
}

// RecordPlayHandler logs one playback of a track for the current user.
func (h *APIHandler) RecordPlayHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		TrackID int64 `json:"trackId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TrackID <= 0 {
		writeError(w, http.StatusBadRequest, "Track ID is required")
		return
	}

	track, err := h.trackRepo.GetByID(r.Context(), req.TrackID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get track")
		return
	}
	if track == nil {
		writeError(w, http.StatusNotFound, "Track not found")
		return
	}

	if err := h.historyRepo.Record(r.Context(), userID, req.TrackID); err != nil {
		logger.Error("failed to record play",
			logger.Int64("userId", userID),
			logger.Int64("trackId", req.TrackID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to record play")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "Play recorded"})
}

// ClearHistoryHandler wipes the current user's play history.
func (h *APIHandler) ClearHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.historyRepo.Clear(r.Context(), userID); err != nil {
		logger.Error("failed to clear history",
			logger.Int64("userId", userID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to clear history")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
