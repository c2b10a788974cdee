package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"EchoFM/cache"
	"EchoFM/logger"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// GetFavoritesHandler returns the current user's favorites, newest first.
func (h *APIHandler) GetFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	page, limit := parsePagination(r)
	favorites, total, err := h.favoriteRepo.ListByUser(r.Context(), userID, limit, (page-1)*limit)
	if err != nil {
		logger.Error("failed to list favorites",
			logger.Int64("userId", userID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to list favorites")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"favorites": favorites,
		"total":     total,
		"page":      page,
		"limit":     limit,
	})
}

// AddFavoriteHandler marks a track as liked. Liking twice is a conflict.
// The like is fanned out to connected clients and the user's cached
// recommendations are invalidated since the taste profile changed.
func (h *APIHandler) AddFavoriteHandler(w http.ResponseWriter, r *http.Request) {
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

	if err := h.favoriteRepo.Add(r.Context(), userID, req.TrackID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			writeError(w, http.StatusConflict, "Track already favorited")
			return
		}
		logger.Error("failed to add favorite",
			logger.Int64("userId", userID),
			logger.Int64("trackId", req.TrackID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to add favorite")
		return
	}

	username, _ := GetUsernameFromContext(r.Context())
	h.hub.TrackLiked(userID, username, req.TrackID)
	h.store.Del(cache.KeyRecommendations + strconv.FormatInt(userID, 10))

	writeJSON(w, http.StatusCreated, map[string]string{"message": "Track favorited"})
}

// RemoveFavoriteHandler removes a like and fans the unlike out.
func (h *APIHandler) RemoveFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	trackID, err := strconv.ParseInt(mux.Vars(r)["trackId"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid track ID")
		return
	}

	if err := h.favoriteRepo.Remove(r.Context(), userID, trackID); err != nil {
		logger.Error("failed to remove favorite",
			logger.Int64("userId", userID),
			logger.Int64("trackId", trackID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to remove favorite")
		return
	}

	username, _ := GetUsernameFromContext(r.Context())
	h.hub.TrackUnliked(userID, username, trackID)
	h.store.Del(cache.KeyRecommendations + strconv.FormatInt(userID, 10))

	w.WriteHeader(http.StatusNoContent)
}

// FavoriteStatusHandler reports whether the current user liked a track.
func (h *APIHandler) FavoriteStatusHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	trackID, err := strconv.ParseInt(mux.Vars(r)["trackId"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid track ID")
		return
	}

	favorited, err := h.favoriteRepo.IsFavorited(r.Context(), userID, trackID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check favorite status")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"favorited": favorited})
}
