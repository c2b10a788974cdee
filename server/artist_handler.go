package server

import (
	"net/http"

	"EchoFM/logger"
	"EchoFM/model"

	"github.com/gorilla/mux"
)

// GetArtistHandler returns an aggregate profile for an artist: track count,
// genres they appear under and their most recent tracks.
func (h *APIHandler) GetArtistHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if name == "" {
		writeError(w, http.StatusBadRequest, "Artist name is required")
		return
	}

	tracks, total, err := h.trackRepo.ByArtist(r.Context(), name, 10)
	if err != nil {
		logger.Error("failed to get artist tracks",
			logger.String("artist", name),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get artist")
		return
	}
	if total == 0 {
		writeError(w, http.StatusNotFound, "Artist not found")
		return
	}

	genres, err := h.trackRepo.GenresByArtist(r.Context(), name)
	if err != nil {
		logger.Error("failed to get artist genres",
			logger.String("artist", name),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get artist")
		return
	}

	writeJSON(w, http.StatusOK, &model.ArtistProfile{
		Name:       name,
		TrackCount: total,
		Genres:     genres,
		TopTracks:  tracks,
	})
}
