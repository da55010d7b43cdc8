package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"wavecut/cache"
	"wavecut/config"
	"wavecut/core/auth"
	"wavecut/core/cut"
	"wavecut/core/ffmpeg"
	"wavecut/core/ingest"
	"wavecut/core/job"
	"wavecut/db"
	"wavecut/logger"
	"wavecut/model"
	"wavecut/repository"
	"wavecut/storage"
)

// Start initializes all backends and runs the HTTP server until interrupted.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	auth.Init(cfg.JWTSecret)

	blobs, err := storage.NewMinioStore(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize MinIO", logger.ErrorField(err))
	}

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	if err := db.AutoMigrateModels(&model.User{}, &model.Asset{}, &model.Marker{}); err != nil {
		logger.Fatal("Failed to migrate database", logger.ErrorField(err))
	}

	if err := db.ConnectRedis(cfg); err != nil {
		logger.Fatal("Failed to connect to Redis", logger.ErrorField(err))
	}
	defer db.CloseRedis()
	logger.Info("Successfully connected to Redis")

	if err := os.MkdirAll(cfg.WorkDir, 0755); err != nil {
		logger.Fatal("Failed to create work directory", logger.ErrorField(err))
	}

	assetRepo := repository.NewGormAssetRepository(db.GormDB)
	markerRepo := repository.NewGormMarkerRepository(db.GormDB)
	userRepo := repository.NewGormUserRepository(db.GormDB)

	transcoder := ffmpeg.New(cfg.FFmpegPath, time.Duration(cfg.FFmpegTimeout)*time.Second, cfg.AudioBitrate)
	executor := cut.NewExecutor(transcoder, blobs, cfg.WorkDir)

	jobStore := cache.NewRedisJobStore(db.RedisClient)
	tracker := job.NewTracker(jobStore)

	apiHandler := NewAPIHandler(cfg, assetRepo, markerRepo, userRepo, tracker, executor, transcoder, blobs)

	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	reaper := job.NewReaper(jobStore, blobs, time.Duration(cfg.JobTTLHours)*time.Hour, 10*time.Minute)
	reaper.Start(rootCtx)

	if cfg.InboxDir != "" {
		watcher := ingest.NewWatcher(cfg.InboxDir, apiHandler.IngestLocalFile)
		if err := watcher.Start(rootCtx); err != nil {
			logger.Fatal("Failed to start inbox watcher", logger.ErrorField(err))
		}
	}

	router := mux.NewRouter()

	// CORS middleware.
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Disposition")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Auth endpoints.
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)

	// Asset and marker endpoints.
	router.HandleFunc("/api/assets", apiHandler.AuthMiddleware(apiHandler.UploadAssetHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/assets/{id}", apiHandler.AuthMiddleware(apiHandler.GetAssetHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/assets/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteAssetHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/assets/{id}/markers", apiHandler.AuthMiddleware(apiHandler.PutMarkersHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/assets/{id}/markers", apiHandler.AuthMiddleware(apiHandler.GetMarkersHandler)).Methods(http.MethodGet)

	// Processing and job endpoints.
	router.HandleFunc("/api/process", apiHandler.AuthMiddleware(apiHandler.ProcessHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/jobs/{id}", apiHandler.AuthMiddleware(apiHandler.GetJobHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/jobs/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteJobHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/jobs/{id}/download", apiHandler.AuthMiddleware(apiHandler.DownloadJobHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/jobs/{id}/ws", apiHandler.JobStatusSocketHandler).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server stopped")
}
