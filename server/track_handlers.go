package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"EchoFM/cache"
	"EchoFM/logger"
	"EchoFM/model"

	"github.com/gorilla/mux"
)

// GetTracksHandler returns a paginated track listing. Results are cached
// per page/sort combination.
func (h *APIHandler) GetTracksHandler(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	sort := r.URL.Query().Get("sort")
	if sort == "" {
		sort = "created_at"
	}
	order := r.URL.Query().Get("order")
	if order == "" {
		order = "desc"
	}

	key := fmt.Sprintf("%s:%d:%d:%s:%s", cache.KeyTracksList, page, limit, sort, order)
	v, err := h.store.GetOrSet(key, cache.TTLTracksList, func() (interface{}, error) {
		tracks, total, err := h.trackRepo.List(r.Context(), sort, order, limit, (page-1)*limit)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"tracks": tracks,
			"total":  total,
			"page":   page,
			"limit":  limit,
		}, nil
	})
	if err != nil {
		logger.Error("failed to list tracks", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to list tracks")
		return
	}

	writeJSON(w, http.StatusOK, v)
}

// GetGenresHandler returns the distinct genres in the catalog.
func (h *APIHandler) GetGenresHandler(w http.ResponseWriter, r *http.Request) {
	v, err := h.store.GetOrSet(cache.KeyGenres, cache.TTLGenres, func() (interface{}, error) {
		genres, err := h.trackRepo.Genres(r.Context())
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"genres": genres}, nil
	})
	if err != nil {
		logger.Error("failed to list genres", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to list genres")
		return
	}

	writeJSON(w, http.StatusOK, v)
}

// GetTracksByGenreHandler returns tracks of one genre, paginated.
func (h *APIHandler) GetTracksByGenreHandler(w http.ResponseWriter, r *http.Request) {
	genre := mux.Vars(r)["genre"]
	page, limit := parsePagination(r)

	tracks, total, err := h.trackRepo.ListByGenre(r.Context(), genre, limit, (page-1)*limit)
	if err != nil {
		logger.Error("failed to list tracks by genre",
			logger.String("genre", genre),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to list tracks")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tracks": tracks,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

// GetTrackHandler returns a single track by id, cached individually.
func (h *APIHandler) GetTrackHandler(w http.ResponseWriter, r *http.Request) {
	trackID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid track ID")
		return
	}

	key := cache.KeyTrackSingle + strconv.FormatInt(trackID, 10)
	v, err := h.store.GetOrSet(key, cache.TTLTrackSingle, func() (interface{}, error) {
		track, err := h.trackRepo.GetByID(r.Context(), trackID)
		if err != nil {
			return nil, err
		}
		if track == nil {
			// Missing tracks are not cached.
			return nil, nil
		}
		return track, nil
	})
	if err != nil {
		logger.Error("failed to get track",
			logger.Int64("trackId", trackID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get track")
		return
	}

	track, _ := v.(*model.Track)
	if track == nil {
		writeError(w, http.StatusNotFound, "Track not found")
		return
	}

	writeJSON(w, http.StatusOK, track)
}

// CreateTrackHandler creates a track from JSON metadata.
func (h *APIHandler) CreateTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var track model.Track
	if err := json.NewDecoder(r.Body).Decode(&track); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if track.Title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	track.ID = 0
	track.UploadedBy = userID

	if err := h.trackRepo.Create(r.Context(), &track); err != nil {
		logger.Error("failed to create track", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to create track")
		return
	}

	h.store.Invalidate("tracks")
	h.store.Del(cache.KeyGenres)

	logger.Info("track created",
		logger.Int64("trackId", track.ID),
		logger.String("title", track.Title),
		logger.Int64("userId", userID))

	writeJSON(w, http.StatusCreated, &track)
}

// UpdateTrackHandler updates a track's metadata.
func (h *APIHandler) UpdateTrackHandler(w http.ResponseWriter, r *http.Request) {
	trackID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid track ID")
		return
	}

	existing, err := h.trackRepo.GetByID(r.Context(), trackID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get track")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Track not found")
		return
	}

	var track model.Track
	if err := json.NewDecoder(r.Body).Decode(&track); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	track.ID = trackID
	track.UploadedBy = existing.UploadedBy
	track.CreatedAt = existing.CreatedAt

	if err := h.trackRepo.Update(r.Context(), &track); err != nil {
		logger.Error("failed to update track",
			logger.Int64("trackId", trackID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to update track")
		return
	}

	h.store.Invalidate("tracks")
	h.store.Del(cache.KeyTrackSingle + strconv.FormatInt(trackID, 10))
	h.store.Del(cache.KeyGenres)

	writeJSON(w, http.StatusOK, &track)
}

// DeleteTrackHandler removes a track from the catalog.
func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	trackID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid track ID")
		return
	}

	if err := h.trackRepo.Delete(r.Context(), trackID); err != nil {
		logger.Error("failed to delete track",
			logger.Int64("trackId", trackID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete track")
		return
	}

	h.store.Invalidate("tracks")
	h.store.Del(cache.KeyTrackSingle + strconv.FormatInt(trackID, 10))

	logger.Info("track deleted", logger.Int64("trackId", trackID))
	w.WriteHeader(http.StatusNoContent)
}
