package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"EchoFM/logger"
	"EchoFM/model"
	"EchoFM/storage"
)

var nonAlphaNumeric = regexp.MustCompile(`[^a-zA-Z0-9_\-\.]`)
var multipleSpaces = regexp.MustCompile(`\s+`)

// generateSafeFilenamePrefix builds an object-storage-safe name from track
// metadata.
func generateSafeFilenamePrefix(title, artist, album string) string {
	if strings.TrimSpace(title) == "" {
		title = "Untitled_Track"
	}

	var parts []string
	if strings.TrimSpace(artist) != "" {
		parts = append(parts, strings.TrimSpace(artist))
	}
	if strings.TrimSpace(album) != "" {
		parts = append(parts, strings.TrimSpace(album))
	}
	parts = append(parts, strings.TrimSpace(title))

	base := strings.Join(parts, " - ")
	base = multipleSpaces.ReplaceAllString(base, "_")
	base = nonAlphaNumeric.ReplaceAllString(base, "")

	maxLength := 150
	if len(base) > maxLength {
		base = base[:maxLength]
	}
	if base == "" {
		base = "fallback_filename"
	}
	return base
}

// UploadTrackHandler handles audio file uploads with metadata.
// Expected multipart form fields:
// - trackFile: the audio file
// - title: track title
// - artist, album, genre: optional metadata
// - coverFile: cover art image (optional)
func (h *APIHandler) UploadTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse multipart form: %v", err))
		return
	}

	trackFile, trackHeader, err := r.FormFile("trackFile")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing 'trackFile' in form")
		return
	}
	defer trackFile.Close()

	title := r.FormValue("title")
	if title == "" {
		writeError(w, http.StatusBadRequest, "Missing 'title' in form")
		return
	}
	artist := r.FormValue("artist")
	album := r.FormValue("album")
	genre := r.FormValue("genre")

	safeBase := generateSafeFilenamePrefix(title, artist, album)
	ext := filepath.Ext(trackHeader.Filename)
	if ext == "" {
		ext = ".dat"
	}

	contentType := trackHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}

	audioURL, err := storage.Upload(r.Context(), "audio/"+safeBase+ext, trackFile, trackHeader.Size, contentType)
	if err != nil {
		logger.Error("failed to upload audio file", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to store audio file")
		return
	}

	var coverURL string
	coverFile, coverHeader, err := r.FormFile("coverFile")
	if err == nil {
		defer coverFile.Close()
		coverType := coverHeader.Header.Get("Content-Type")
		if !strings.HasPrefix(coverType, "image/") {
			writeError(w, http.StatusBadRequest, "Cover must be an image")
			return
		}
		coverExt := filepath.Ext(coverHeader.Filename)
		if coverExt == "" {
			coverExt = ".jpg"
		}
		coverURL, err = storage.Upload(r.Context(), "covers/"+safeBase+coverExt, coverFile, coverHeader.Size, coverType)
		if err != nil {
			logger.Error("failed to upload cover file", logger.ErrorField(err))
			writeError(w, http.StatusInternalServerError, "Failed to store cover file")
			return
		}
	} else if err != http.ErrMissingFile {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Error processing cover file: %v", err))
		return
	}

	track := &model.Track{
		Title:      title,
		Artist:     artist,
		Album:      album,
		Genre:      genre,
		AudioURL:   audioURL,
		CoverURL:   coverURL,
		UploadedBy: userID,
	}

	if err := h.trackRepo.Create(r.Context(), track); err != nil {
		logger.Error("failed to create track entry", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to create track entry")
		return
	}

	h.store.Invalidate("tracks")

	logger.Info("track uploaded",
		logger.Int64("trackId", track.ID),
		logger.Int64("userId", userID),
		logger.String("title", title))

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Track uploaded successfully",
		"track":   track,
	})
}

// UploadCoverHandler stores a standalone cover image and returns its URL.
// Expected multipart form fields: cover (image file), artist, album.
func (h *APIHandler) UploadCoverHandler(w http.ResponseWriter, r *http.Request) {
	const maxFileSize = 10 << 20
	if err := r.ParseMultipartForm(maxFileSize); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	artist := r.FormValue("artist")
	album := r.FormValue("album")
	if artist == "" || album == "" {
		writeError(w, http.StatusBadRequest, "Artist and album are required")
		return
	}

	file, header, err := r.FormFile("cover")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing 'cover' in form")
		return
	}
	defer file.Close()

	if header.Size > maxFileSize {
		writeError(w, http.StatusBadRequest, "File too large")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, http.StatusBadRequest, "Only image files are allowed")
		return
	}

	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = ".jpg"
	}
	safeBase := generateSafeFilenamePrefix(album, artist, "")

	coverURL, err := storage.Upload(r.Context(), "covers/"+safeBase+"_cover"+ext, file, header.Size, contentType)
	if err != nil {
		logger.Error("failed to upload cover", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to store cover")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"coverUrl": coverURL})
}
