package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"EchoFM/cache"
	"EchoFM/config"
	"EchoFM/core/auth"
	"EchoFM/core/presence"
	"EchoFM/core/recommend"
	"EchoFM/db"
	"EchoFM/logger"
	"EchoFM/model"
	"EchoFM/queue"
	"EchoFM/repository"
	"EchoFM/storage"

	"github.com/gorilla/mux"
)

// Start initializes dependencies and runs the HTTP server until interrupted.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogOutputPath,
	})

	auth.InitJWT(cfg.JWTSecret, cfg.JWTExpiryHours)

	if err := storage.InitMinio(cfg); err != nil {
		logger.Fatal("failed to initialize MinIO", logger.ErrorField(err))
	}

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("failed to connect to database", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	if err := db.AutoMigrateModels(
		&model.User{},
		&model.Track{},
		&model.Favorite{},
		&model.Podcast{},
		&model.PodcastEpisode{},
		&model.Playlist{},
		&model.PlaylistTrack{},
		&model.PlayHistory{},
	); err != nil {
		logger.Fatal("failed to migrate models", logger.ErrorField(err))
	}

	if err := db.ConnectRedis(cfg); err != nil {
		logger.Fatal("failed to connect to Redis", logger.ErrorField(err))
	}
	defer db.CloseRedis()

	userRepo := repository.NewGormUserRepository(db.GormDB)
	trackRepo := repository.NewGormTrackRepository(db.GormDB)
	podcastRepo := repository.NewGormPodcastRepository(db.GormDB)
	playlistRepo := repository.NewGormPlaylistRepository(db.GormDB)
	favoriteRepo := repository.NewGormFavoriteRepository(db.GormDB)
	historyRepo := repository.NewGormHistoryRepository(db.GormDB)

	store := cache.New()
	defer store.Close()

	engine := recommend.NewEngine(favoriteRepo, trackRepo, store)
	hub := presence.NewHub()
	playQueue := queue.NewStore(db.RedisClient)

	apiHandler := NewAPIHandler(
		userRepo, trackRepo, podcastRepo, playlistRepo, favoriteRepo, historyRepo,
		store, engine, hub, playQueue, cfg,
	)

	router := newRouter(apiHandler)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("server stopped")
}

// newRouter builds the full route table for the API.
func newRouter(apiHandler *APIHandler) *mux.Router {
	router := mux.NewRouter()

	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Auth
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)

	// Tracks
	router.HandleFunc("/api/tracks", apiHandler.GetTracksHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks", apiHandler.AuthMiddleware(apiHandler.CreateTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/genres", apiHandler.GetGenresHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/genre/{genre}", apiHandler.GetTracksByGenreHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/{id}", apiHandler.GetTrackHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/{id}", apiHandler.AuthMiddleware(apiHandler.UpdateTrackHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/tracks/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteTrackHandler)).Methods(http.MethodDelete)

	// Podcasts
	router.HandleFunc("/api/podcasts", apiHandler.GetPodcastsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/podcasts", apiHandler.AuthMiddleware(apiHandler.CreatePodcastHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/podcasts/{id}", apiHandler.GetPodcastHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/podcasts/{id}", apiHandler.AuthMiddleware(apiHandler.DeletePodcastHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/podcasts/{id}/episodes", apiHandler.AuthMiddleware(apiHandler.CreateEpisodeHandler)).Methods(http.MethodPost)

	// Playlists
	router.HandleFunc("/api/playlists", apiHandler.AuthMiddleware(apiHandler.GetPlaylistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists", apiHandler.AuthMiddleware(apiHandler.CreatePlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}", apiHandler.AuthMiddleware(apiHandler.GetPlaylistHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists/{id}", apiHandler.AuthMiddleware(apiHandler.UpdatePlaylistHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/playlists/{id}", apiHandler.AuthMiddleware(apiHandler.DeletePlaylistHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/playlists/{id}/tracks", apiHandler.AuthMiddleware(apiHandler.AddPlaylistTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}/tracks/{trackId}", apiHandler.AuthMiddleware(apiHandler.RemovePlaylistTrackHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/playlists/{id}/reorder", apiHandler.AuthMiddleware(apiHandler.ReorderPlaylistHandler)).Methods(http.MethodPut)

	// Favorites
	router.HandleFunc("/api/favorites", apiHandler.AuthMiddleware(apiHandler.GetFavoritesHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/favorites", apiHandler.AuthMiddleware(apiHandler.AddFavoriteHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/favorites/{trackId}", apiHandler.AuthMiddleware(apiHandler.RemoveFavoriteHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/favorites/{trackId}/status", apiHandler.AuthMiddleware(apiHandler.FavoriteStatusHandler)).Methods(http.MethodGet)

	// Play history
	router.HandleFunc("/api/history", apiHandler.AuthMiddleware(apiHandler.GetHistoryHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/history", apiHandler.AuthMiddleware(apiHandler.RecordPlayHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/history", apiHandler.AuthMiddleware(apiHandler.ClearHistoryHandler)).Methods(http.MethodDelete)

	// Play queue
	router.HandleFunc("/api/queue", apiHandler.AuthMiddleware(apiHandler.GetQueueHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/queue", apiHandler.AuthMiddleware(apiHandler.AddToQueueHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/queue", apiHandler.AuthMiddleware(apiHandler.RemoveFromQueueHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/queue", apiHandler.AuthMiddleware(apiHandler.ReorderQueueHandler)).Methods(http.MethodPut)

	// Search and artists
	router.HandleFunc("/api/search", apiHandler.SearchHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/artists/{name}", apiHandler.GetArtistHandler).Methods(http.MethodGet)

	// Recommendations
	router.HandleFunc("/api/recommendations", apiHandler.AuthMiddleware(apiHandler.GetRecommendationsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/recommendations/similar/{trackId}", apiHandler.AuthMiddleware(apiHandler.GetSimilarTracksHandler)).Methods(http.MethodGet)

	// Uploads
	router.HandleFunc("/api/upload", apiHandler.AuthMiddleware(apiHandler.UploadTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/upload/cover", apiHandler.AuthMiddleware(apiHandler.UploadCoverHandler)).Methods(http.MethodPost)

	// Admin
	router.HandleFunc("/api/admin/cache/stats", apiHandler.AuthMiddleware(apiHandler.CacheStatsHandler)).Methods(http.MethodGet)

	// WebSocket
	router.HandleFunc("/ws", apiHandler.WebSocketHandler)

	return router
}
