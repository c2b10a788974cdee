package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"EchoFM/logger"
	"EchoFM/queue"
)

// GetQueueHandler returns the current user's play queue in order.
func (h *APIHandler) GetQueueHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	items, err := h.playQueue.List(r.Context(), userID)
	if err != nil {
		logger.Error("failed to get queue",
			logger.Int64("userId", userID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get queue")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"queue": items})
}

// AddToQueueHandler appends a track to the user's play queue.
func (h *APIHandler) AddToQueueHandler(w http.ResponseWriter, r *http.Request) {
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

	item := queue.Item{
		TrackID: track.ID,
		Title:   track.Title,
		Artist:  track.Artist,
		Album:   track.Album,
	}
	if err := h.playQueue.Add(r.Context(), userID, item); err != nil {
		logger.Error("failed to add track to queue",
			logger.Int64("userId", userID),
			logger.Int64("trackId", track.ID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to add track to queue")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "Track added to queue"})
}

// RemoveFromQueueHandler removes one track from the queue, or clears the
// whole queue with ?clear=true.
func (h *APIHandler) RemoveFromQueueHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if r.URL.Query().Get("clear") == "true" {
		if err := h.playQueue.Clear(r.Context(), userID); err != nil {
			logger.Error("failed to clear queue",
				logger.Int64("userId", userID),
				logger.ErrorField(err))
			writeError(w, http.StatusInternalServerError, "Failed to clear queue")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Queue cleared"})
		return
	}

	trackIDStr := r.URL.Query().Get("trackId")
	trackID, err := strconv.ParseInt(trackIDStr, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid track ID")
		return
	}

	if err := h.playQueue.Remove(r.Context(), userID, trackID); err != nil {
		writeError(w, http.StatusNotFound, "Track not found in queue")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Track removed from queue"})
}

// ReorderQueueHandler rewrites the queue order, or shuffles it with
// ?shuffle=true.
func (h *APIHandler) ReorderQueueHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if r.URL.Query().Get("shuffle") == "true" {
		if err := h.playQueue.Shuffle(r.Context(), userID); err != nil {
			logger.Error("failed to shuffle queue",
				logger.Int64("userId", userID),
				logger.ErrorField(err))
			writeError(w, http.StatusInternalServerError, "Failed to shuffle queue")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Queue shuffled"})
		return
	}

	var req struct {
		TrackIDs []int64 `json:"trackIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.TrackIDs) == 0 {
		writeError(w, http.StatusBadRequest, "Track ID list is required")
		return
	}

	if err := h.playQueue.Reorder(r.Context(), userID, req.TrackIDs); err != nil {
		logger.Error("failed to reorder queue",
			logger.Int64("userId", userID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to reorder queue")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Queue reordered"})
}
