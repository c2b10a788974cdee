package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"EchoFM/cache"
	"EchoFM/logger"
	"EchoFM/model"

	"github.com/gorilla/mux"
)

// GetPodcastsHandler returns a paginated podcast listing, optionally
// filtered by category. Results are cached per page/category combination.
func (h *APIHandler) GetPodcastsHandler(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	category := r.URL.Query().Get("category")

	key := fmt.Sprintf("%s:%d:%d:%s", cache.KeyPodcastsList, page, limit, category)
	v, err := h.store.GetOrSet(key, cache.TTLPodcasts, func() (interface{}, error) {
		podcasts, total, err := h.podcastRepo.List(r.Context(), category, limit, (page-1)*limit)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"podcasts": podcasts,
			"total":    total,
			"page":     page,
			"limit":    limit,
		}, nil
	})
	if err != nil {
		logger.Error("failed to list podcasts", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to list podcasts")
		return
	}

	writeJSON(w, http.StatusOK, v)
}

// GetPodcastHandler returns a single podcast with its episodes.
func (h *APIHandler) GetPodcastHandler(w http.ResponseWriter, r *http.Request) {
	podcastID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid podcast ID")
		return
	}

	key := cache.KeyPodcastSingle + strconv.FormatInt(podcastID, 10)
	v, err := h.store.GetOrSet(key, cache.TTLPodcasts, func() (interface{}, error) {
		podcast, err := h.podcastRepo.GetByID(r.Context(), podcastID)
		if err != nil {
			return nil, err
		}
		if podcast == nil {
			return nil, nil
		}
		episodes, err := h.podcastRepo.Episodes(r.Context(), podcastID)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"podcast":  podcast,
			"episodes": episodes,
		}, nil
	})
	if err != nil {
		logger.Error("failed to get podcast",
			logger.Int64("podcastId", podcastID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get podcast")
		return
	}
	if v == nil {
		writeError(w, http.StatusNotFound, "Podcast not found")
		return
	}

	writeJSON(w, http.StatusOK, v)
}

// CreatePodcastHandler creates a podcast show.
func (h *APIHandler) CreatePodcastHandler(w http.ResponseWriter, r *http.Request) {
	var podcast model.Podcast
	if err := json.NewDecoder(r.Body).Decode(&podcast); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if podcast.Title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	podcast.ID = 0

	if err := h.podcastRepo.Create(r.Context(), &podcast); err != nil {
		logger.Error("failed to create podcast", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to create podcast")
		return
	}

	h.store.Invalidate("podcasts")

	logger.Info("podcast created",
		logger.Int64("podcastId", podcast.ID),
		logger.String("title", podcast.Title))

	writeJSON(w, http.StatusCreated, &podcast)
}

// DeletePodcastHandler removes a podcast and its episodes.
func (h *APIHandler) DeletePodcastHandler(w http.ResponseWriter, r *http.Request) {
	podcastID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid podcast ID")
		return
	}

	if err := h.podcastRepo.Delete(r.Context(), podcastID); err != nil {
		logger.Error("failed to delete podcast",
			logger.Int64("podcastId", podcastID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete podcast")
		return
	}

	h.store.Invalidate("podcasts")
	h.store.Del(cache.KeyPodcastSingle + strconv.FormatInt(podcastID, 10))

	w.WriteHeader(http.StatusNoContent)
}

// CreateEpisodeHandler adds an episode to a podcast.
func (h *APIHandler) CreateEpisodeHandler(w http.ResponseWriter, r *http.Request) {
	podcastID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid podcast ID")
		return
	}

	podcast, err := h.podcastRepo.GetByID(r.Context(), podcastID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get podcast")
		return
	}
	if podcast == nil {
		writeError(w, http.StatusNotFound, "Podcast not found")
		return
	}

	var episode model.PodcastEpisode
	if err := json.NewDecoder(r.Body).Decode(&episode); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if episode.Title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	episode.ID = 0
	episode.PodcastID = podcastID
	if episode.PublishedAt.IsZero() {
		episode.PublishedAt = time.Now()
	}

	if err := h.podcastRepo.CreateEpisode(r.Context(), &episode); err != nil {
		logger.Error("failed to create episode",
			logger.Int64("podcastId", podcastID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to create episode")
		return
	}

	h.store.Del(cache.KeyPodcastSingle + strconv.FormatInt(podcastID, 10))

	writeJSON(w, http.StatusCreated, &episode)
}
