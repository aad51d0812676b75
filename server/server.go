package server

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"Bt1Cut/cache"
	"Bt1Cut/config"
	"Bt1Cut/core/auth"
	"Bt1Cut/core/media"
	"Bt1Cut/core/session"
	"Bt1Cut/db"
	"Bt1Cut/logger"
	"Bt1Cut/repository"
	"Bt1Cut/storage"

	"github.com/gorilla/mux"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	// 设置服务器超时
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 初始化 MinIO 客户端
	if err := storage.InitMinio(cfg); err != nil {
		logger.Fatal("Failed to initialize MinIO", logger.ErrorField(err))
	}

	// Connect to the database
	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("Failed to connect GORM", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	// Connect to Redis
	if err := db.ConnectRedis(cfg); err != nil {
		logger.Fatal("Failed to connect to Redis", logger.ErrorField(err))
	}
	defer db.CloseRedis()
	logger.Info("Successfully connected to Redis")

	// Initialize database schema
	if err := db.InitDB(); err != nil {
		logger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if err := db.MigrateSnapshotTables(); err != nil {
		logger.Fatal("Failed to migrate snapshot tables", logger.ErrorField(err))
	}

	ensureDirExists(cfg.MediaStageDir)

	userRepo := repository.NewMySQLUserRepository(db.DB)
	projectRepo := repository.NewGormProjectRepository(db.GormDB)
	assetRepo := repository.NewGormAssetRepository(db.GormDB)

	snapCache := cache.NewSnapshotCache(cfg.AutosaveTTL)
	sessions := session.NewManager(cfg, snapCache)
	go sessions.RunReaper()

	mediaSvc := media.NewService(cfg, assetRepo, media.NewStatProber())

	var watcher *media.Watcher
	if cfg.WatchDir != "" {
		ensureDirExists(cfg.WatchDir)
		watcher = media.NewWatcher(mediaSvc, cfg.WatchUserID, cfg.WatchDir)
		go watcher.Run()
		logger.Info("watch folder importer started", logger.String("dir", cfg.WatchDir))
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTExpiryHours)*time.Hour)

	// 初始化处理器
	apiHandler := NewAPIHandler(userRepo, projectRepo, assetRepo, mediaSvc, sessions, snapCache, tokens, cfg)

	// 使用 gorilla/mux 创建路由器
	router := mux.NewRouter()

	// 添加 CORS 中间件
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// 用户认证相关的API端点
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)

	// 项目相关的API端点
	router.HandleFunc("/api/projects", apiHandler.AuthMiddleware(apiHandler.CreateProjectHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/projects", apiHandler.AuthMiddleware(apiHandler.ListProjectsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/projects/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteProjectHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/projects/{id}/open", apiHandler.AuthMiddleware(apiHandler.OpenProjectHandler)).Methods(http.MethodPost)

	// 会话与时间线编辑的API端点
	router.HandleFunc("/api/sessions/{id}/close", apiHandler.AuthMiddleware(apiHandler.CloseSessionHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/sessions/{id}/timeline", apiHandler.AuthMiddleware(apiHandler.GetTimelineHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/sessions/{id}/tracks", apiHandler.AuthMiddleware(apiHandler.AddTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/sessions/{id}/tracks/{trackId}", apiHandler.AuthMiddleware(apiHandler.RemoveTrackHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/sessions/{id}/tracks/{trackId}/clips", apiHandler.AuthMiddleware(apiHandler.AddClipHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/sessions/{id}/tracks/{trackId}/clips/{clipId}", apiHandler.AuthMiddleware(apiHandler.UpdateClipHandler)).Methods(http.MethodPatch, http.MethodPut)
	router.HandleFunc("/api/sessions/{id}/tracks/{trackId}/clips/{clipId}", apiHandler.AuthMiddleware(apiHandler.DeleteClipHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/sessions/{id}/tracks/{trackId}/clips/{clipId}/move", apiHandler.AuthMiddleware(apiHandler.MoveClipHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/sessions/{id}/tracks/{trackId}/clips/{clipId}/select", apiHandler.AuthMiddleware(apiHandler.SelectClipHandler)).Methods(http.MethodPost)

	// 视图控制
	router.HandleFunc("/api/sessions/{id}/view/zoom", apiHandler.AuthMiddleware(apiHandler.ZoomHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/sessions/{id}/view/pan", apiHandler.AuthMiddleware(apiHandler.PanHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/sessions/{id}/view/viewport", apiHandler.AuthMiddleware(apiHandler.ViewportHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/sessions/{id}/ruler", apiHandler.AuthMiddleware(apiHandler.RulerHandler)).Methods(http.MethodGet)

	// 拖拽
	router.HandleFunc("/api/sessions/{id}/drag/grab", apiHandler.AuthMiddleware(apiHandler.DragGrabHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/sessions/{id}/drag/move", apiHandler.AuthMiddleware(apiHandler.DragMoveHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/sessions/{id}/drag/drop", apiHandler.AuthMiddleware(apiHandler.DragDropHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/sessions/{id}/drag/cancel", apiHandler.AuthMiddleware(apiHandler.DragCancelHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/sessions/{id}/clips/nudge", apiHandler.AuthMiddleware(apiHandler.NudgeHandler)).Methods(http.MethodPost)

	// 播放控制。seek先注册，避免被{action}吞掉
	router.HandleFunc("/api/sessions/{id}/playback/seek", apiHandler.AuthMiddleware(apiHandler.SeekHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/sessions/{id}/playback/{action}", apiHandler.AuthMiddleware(apiHandler.PlaybackHandler)).Methods(http.MethodPost)

	// 事件流
	router.HandleFunc("/api/sessions/{id}/ws", apiHandler.AuthMiddleware(apiHandler.SessionStreamHandler)).Methods(http.MethodGet)

	// 素材库
	router.HandleFunc("/api/assets", apiHandler.AuthMiddleware(apiHandler.RegisterAssetHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/assets", apiHandler.AuthMiddleware(apiHandler.ListAssetsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/assets/{id}", apiHandler.AuthMiddleware(apiHandler.GetAssetHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/assets/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteAssetHandler)).Methods(http.MethodDelete)

	// 添加MinIO文件服务路由（缩略图与波形）
	router.PathPrefix("/static/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		objectPath := strings.TrimPrefix(r.URL.Path, "/static/")

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		object, err := storage.GetObject(ctx, cfg, objectPath)
		if err != nil {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		defer object.Close()

		var contentType string
		if strings.HasPrefix(objectPath, "thumbs/") {
			contentType = "image/jpeg"
		} else if strings.HasPrefix(objectPath, "waveforms/") {
			contentType = "application/json"
		} else {
			contentType = "application/octet-stream"
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=31536000") // 缓存一年

		if _, err := io.Copy(w, object); err != nil {
			logger.Warn("Error serving file from MinIO", logger.ErrorField(err))
		}
	})

	server.Handler = router

	// 创建一个通道来接收操作系统信号
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 在goroutine中启动服务器
	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	// 等待中断信号
	<-stop
	logger.Info("Shutting down server...")

	// 创建一个5秒超时的上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	// 关闭会话，触发最后一次自动保存
	if watcher != nil {
		watcher.Stop()
	}
	sessions.Stop()

	logger.Info("Server stopped")
}

func ensureDirExists(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info("Creating directory", logger.String("path", path))
		if err := os.MkdirAll(path, 0755); err != nil {
			logger.Fatal("Failed to create directory", logger.String("path", path), logger.ErrorField(err))
		}
	} else if err != nil {
		logger.Fatal("Failed to check directory", logger.String("path", path), logger.ErrorField(err))
	}
}
