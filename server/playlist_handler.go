package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"EchoFM/logger"
	"EchoFM/model"

	"github.com/gorilla/mux"
)

// CreatePlaylistHandler creates a playlist owned by the current user.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var playlist model.Playlist
	if err := json.NewDecoder(r.Body).Decode(&playlist); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if playlist.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	playlist.ID = 0
	playlist.UserID = userID

	if err := h.playlistRepo.Create(r.Context(), &playlist); err != nil {
		logger.Error("failed to create playlist", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to create playlist")
		return
	}

	logger.Info("playlist created",
		logger.Int64("playlistId", playlist.ID),
		logger.Int64("userId", userID))

	writeJSON(w, http.StatusCreated, &playlist)
}

// GetPlaylistsHandler returns the current user's playlists.
func (h *APIHandler) GetPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	playlists, err := h.playlistRepo.ListByUser(r.Context(), userID)
	if err != nil {
		logger.Error("failed to list playlists",
			logger.Int64("userId", userID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to list playlists")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"playlists": playlists})
}

// GetPlaylistHandler returns one playlist and its ordered tracks. Private
// playlists are only visible to their owner.
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlistID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid playlist ID")
		return
	}

	playlist, err := h.playlistRepo.GetByID(r.Context(), playlistID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get playlist")
		return
	}
	if playlist == nil {
		writeError(w, http.StatusNotFound, "Playlist not found")
		return
	}

	userID, _ := GetUserIDFromContext(r.Context())
	if !playlist.IsPublic && playlist.UserID != userID {
		writeError(w, http.StatusForbidden, "Playlist is private")
		return
	}

	tracks, err := h.playlistRepo.Tracks(r.Context(), playlistID)
	if err != nil {
		logger.Error("failed to get playlist tracks",
			logger.Int64("playlistId", playlistID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get playlist tracks")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"playlist": playlist,
		"tracks":   tracks,
	})
}

// UpdatePlaylistHandler updates a playlist's name, description or
// visibility. Only the owner may update it.
func (h *APIHandler) UpdatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlist, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		IsPublic    *bool   `json:"isPublic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name != nil {
		playlist.Name = *req.Name
	}
	if req.Description != nil {
		playlist.Description = *req.Description
	}
	if req.IsPublic != nil {
		playlist.IsPublic = *req.IsPublic
	}

	if err := h.playlistRepo.Update(r.Context(), playlist); err != nil {
		logger.Error("failed to update playlist",
			logger.Int64("playlistId", playlist.ID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to update playlist")
		return
	}

	writeJSON(w, http.StatusOK, playlist)
}

// DeletePlaylistHandler removes a playlist and its track entries.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlist, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	if err := h.playlistRepo.Delete(r.Context(), playlist.ID); err != nil {
		logger.Error("failed to delete playlist",
			logger.Int64("playlistId", playlist.ID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete playlist")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddPlaylistTrackHandler appends a track to a playlist and notifies any
// live room watching it.
func (h *APIHandler) AddPlaylistTrackHandler(w http.ResponseWriter, r *http.Request) {
	playlist, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	var req struct {
		TrackID int64 `json:"trackId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
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

	userID, _ := GetUserIDFromContext(r.Context())
	username, _ := GetUsernameFromContext(r.Context())

	if err := h.playlistRepo.AddTrack(r.Context(), playlist.ID, track.ID, userID); err != nil {
		logger.Error("failed to add track to playlist",
			logger.Int64("playlistId", playlist.ID),
			logger.Int64("trackId", track.ID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to add track to playlist")
		return
	}

	if payload, err := json.Marshal(track); err == nil {
		h.hub.TrackAddedInRoom(userID, username, strconv.FormatInt(playlist.ID, 10), payload)
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "Track added to playlist"})
}

// RemovePlaylistTrackHandler removes a track from a playlist and notifies
// any live room watching it.
func (h *APIHandler) RemovePlaylistTrackHandler(w http.ResponseWriter, r *http.Request) {
	playlist, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	trackID, err := strconv.ParseInt(mux.Vars(r)["trackId"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid track ID")
		return
	}

	if err := h.playlistRepo.RemoveTrack(r.Context(), playlist.ID, trackID); err != nil {
		logger.Error("failed to remove track from playlist",
			logger.Int64("playlistId", playlist.ID),
			logger.Int64("trackId", trackID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to remove track from playlist")
		return
	}

	userID, _ := GetUserIDFromContext(r.Context())
	username, _ := GetUsernameFromContext(r.Context())
	h.hub.TrackRemovedInRoom(userID, username, strconv.FormatInt(playlist.ID, 10), trackID)

	w.WriteHeader(http.StatusNoContent)
}

// ReorderPlaylistHandler rewrites track positions from an ordered id list.
func (h *APIHandler) ReorderPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlist, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	var req struct {
		TrackIDs []int64 `json:"trackIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.TrackIDs) == 0 {
		writeError(w, http.StatusBadRequest, "Track ID list is required")
		return
	}

	if err := h.playlistRepo.Reorder(r.Context(), playlist.ID, req.TrackIDs); err != nil {
		logger.Error("failed to reorder playlist",
			logger.Int64("playlistId", playlist.ID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to reorder playlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Playlist reordered"})
}

// ownedPlaylist loads the playlist from the route and verifies the current
// user owns it, writing the error response itself when not.
func (h *APIHandler) ownedPlaylist(w http.ResponseWriter, r *http.Request) (*model.Playlist, bool) {
	playlistID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid playlist ID")
		return nil, false
	}

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}

	playlist, err := h.playlistRepo.GetByID(r.Context(), playlistID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get playlist")
		return nil, false
	}
	if playlist == nil {
		writeError(w, http.StatusNotFound, "Playlist not found")
		return nil, false
	}
	if playlist.UserID != userID {
		writeError(w, http.StatusForbidden, "Not the playlist owner")
		return nil, false
	}
	return playlist, true
}
