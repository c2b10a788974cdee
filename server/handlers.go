package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"EchoFM/cache"
	"EchoFM/config"
	"EchoFM/core/auth"
	"EchoFM/core/presence"
	"EchoFM/core/recommend"
	"EchoFM/logger"
	"EchoFM/queue"
	"EchoFM/repository"
)

// APIHandler handles all API requests.
type APIHandler struct {
	userRepo     repository.UserRepository
	trackRepo    repository.TrackRepository
	podcastRepo  repository.PodcastRepository
	playlistRepo repository.PlaylistRepository
	favoriteRepo repository.FavoriteRepository
	historyRepo  repository.HistoryRepository
	store        *cache.Store
	engine       *recommend.Engine
	hub          *presence.Hub
	playQueue    *queue.Store
	cfg          *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	userRepo repository.UserRepository,
	trackRepo repository.TrackRepository,
	podcastRepo repository.PodcastRepository,
	playlistRepo repository.PlaylistRepository,
	favoriteRepo repository.FavoriteRepository,
	historyRepo repository.HistoryRepository,
	store *cache.Store,
	engine *recommend.Engine,
	hub *presence.Hub,
	playQueue *queue.Store,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		userRepo:     userRepo,
		trackRepo:    trackRepo,
		podcastRepo:  podcastRepo,
		playlistRepo: playlistRepo,
		favoriteRepo: favoriteRepo,
		historyRepo:  historyRepo,
		store:        store,
		engine:       engine,
		hub:          hub,
		playQueue:    playQueue,
		cfg:          cfg,
	}
}

type contextKey string

const (
	ctxKeyUserID   contextKey = "userID"
	ctxKeyUsername contextKey = "username"
)

// AuthMiddleware is a middleware function that checks for a valid JWT token.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := auth.ParseToken(parts[1])
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, ctxKeyUsername, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetUserIDFromContext extracts the user ID from the request context.
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(ctxKeyUserID).(int64)
	if !ok {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// GetUsernameFromContext extracts the username from the request context.
func GetUsernameFromContext(ctx context.Context) (string, error) {
	username, ok := ctx.Value(ctxKeyUsername).(string)
	if !ok {
		return "", fmt.Errorf("username not found in context")
	}
	return username, nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// parseLimit reads a limit query parameter, clamped to [1, max]. A missing
// parameter yields the fallback; a non-numeric one is an error.
func parseLimit(r *http.Request, fallback, max int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	if limit < 1 {
		limit = 1
	}
	if limit > max {
		limit = max
	}
	return limit, nil
}

// parsePagination reads page/limit query parameters with sane defaults.
func parsePagination(r *http.Request) (page, limit int) {
	page = 1
	limit = 20

	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			page = v
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	return page, limit
}

// CacheStatsHandler reports cache hit/miss counters and live key count.
func (h *APIHandler) CacheStatsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Stats())
}
