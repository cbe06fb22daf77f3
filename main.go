package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"biseogo/internal/api"
	"biseogo/internal/config"
	"biseogo/internal/export"
	"biseogo/internal/logger"
	"biseogo/internal/middleware"
	"biseogo/internal/redis"
	"biseogo/internal/service/ai"
	"biseogo/internal/service/assistant"
	"biseogo/internal/service/tts"
	"biseogo/internal/session"
	"biseogo/internal/storage"
	"biseogo/internal/store"
)

func main() {
	cfgPath := os.Getenv("BISEOGO_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg, err := logger.New(&cfg.Logging)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	conversations, err := store.NewConversationStore(cfg.Data.ConversationsDir(), logg)
	if err != nil {
		logg.Fatalf("init conversation store: %v", err)
	}
	snapshots, err := store.NewSnapshotStore(cfg.Data.SessionsDir(), logg)
	if err != nil {
		logg.Fatalf("init snapshot store: %v", err)
	}

	var settingsStore session.SettingsStore
	switch cfg.Data.SettingsStore {
	case "redis":
		rdb, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			logg.Fatalf("connect redis: %v", err)
		}
		defer rdb.Close()
		settingsStore, err = store.NewSettingsStore(store.SettingsStoreRedis, store.WithRedisClient(rdb))
		if err != nil {
			logg.Fatalf("init settings store: %v", err)
		}
	default:
		settingsStore, err = store.NewSettingsStore(store.SettingsStoreFile, store.WithSettingsDir(cfg.Data.Dir))
		if err != nil {
			logg.Fatalf("init settings store: %v", err)
		}
	}

	renderer, err := export.NewRenderer(cfg.Data.ExportsDir(), cfg.Data.FontPath, logg)
	if err != nil {
		logg.Fatalf("init export renderer: %v", err)
	}

	completer, err := ai.NewService(cfg.Provider, cfg)
	if err != nil {
		logg.Fatalf("init completion provider: %v", err)
	}

	synthesizer, err := tts.NewService(&cfg.TTS, cfg.Data.AudioDir(), "", logg)
	if err != nil {
		logg.Fatalf("init tts service: %v", err)
	}

	db, err := storage.Open(&cfg.Database)
	if err != nil {
		logg.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := storage.Migrate(db, cfg.Database.Driver); err != nil {
		logg.Fatalf("migrate database: %v", err)
	}

	service := assistant.NewService(completer, conversations, snapshots, renderer, logg, assistant.Options{
		SettingsStore:  settingsStore,
		Synthesizer:    synthesizer,
		DB:             db,
		RequestTimeout: cfg.Chat.RequestTimeout,
		AudioTTL:       cfg.TTS.AudioTTL,
		ContextSize:    cfg.Chat.ContextSize,
	})

	cleanCtx, cleanCancel := context.WithCancel(context.Background())
	defer cleanCancel()
	service.StartAudioCleaner(cleanCtx, cfg.TTS.CleanInterval)

	router := gin.Default()
	if cfg.Metrics.Enabled {
		router.Use(middleware.Metrics())
		router.GET(cfg.Metrics.Path, middleware.MetricsHandler())
	}
	handler := api.NewHandler(service, cfg.Data.AudioDir(), logg)
	handler.RegisterRoutes(router)

	logg.WithField("address", cfg.Server.Address).Info("starting server")
	if err := router.Run(cfg.Server.Address); err != nil {
		logg.Fatalf("server stopped: %v", err)
	}
}
