package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/dasom-care/dasom-backend/config"
	"github.com/dasom-care/dasom-backend/internal/api/handlers"
	"github.com/dasom-care/dasom-backend/internal/api/middleware"
	"github.com/dasom-care/dasom-backend/internal/api/routes"
	"github.com/dasom-care/dasom-backend/internal/cache"
	"github.com/dasom-care/dasom-backend/internal/logger"
	"github.com/dasom-care/dasom-backend/internal/providers/llm"
	"github.com/dasom-care/dasom-backend/internal/providers/stt"
	"github.com/dasom-care/dasom-backend/internal/providers/tts"
	"github.com/dasom-care/dasom-backend/internal/realtime"
	mongorepo "github.com/dasom-care/dasom-backend/internal/repositories/mongo"
	pgrepo "github.com/dasom-care/dasom-backend/internal/repositories/postgres"
	"github.com/dasom-care/dasom-backend/internal/services"
	"github.com/dasom-care/dasom-backend/internal/storage"
	"github.com/dasom-care/dasom-backend/internal/workers"
)

func main() {
	_ = godotenv.Load()
	lg := logger.New()

	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.Fatalf("MongoDB index error: %v", err)
	}
	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// repositories
	userRepo := pgrepo.NewUserRepo(config.PostgresDB)
	welfareRepo := pgrepo.NewWelfareRepo(config.PostgresDB)
	messageRepo := pgrepo.NewMessageRepo(config.PostgresDB)
	callRepo := mongorepo.NewCallSessionRepo(config.MongoDatabase())

	// optional call-audio archive
	var archive storage.Uploader
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		up, err := storage.NewGCSUploader(ctx, bucket)
		if err != nil {
			log.Fatalf("GCS init error: %v", err)
		}
		defer up.Close()
		archive = up
	}

	// services
	userSvc := services.NewUserService(userRepo, os.Getenv("JWT_SECRET"), 24*time.Hour)
	welfareSvc := services.NewWelfareService(welfareRepo, cache.NewRedisCache(config.RedisClient), 10*time.Minute)
	historySvc := services.NewCallHistoryService(callRepo, messageRepo, archive)

	// AI providers
	sttP, llmP, ttsP, err := buildProviders(ctx)
	if err != nil {
		log.Fatalf("AI provider init error: %v", err)
	}
	defer sttP.Close()
	defer llmP.Close()
	defer ttsP.Close()

	// realtime core
	rtCfg := realtime.Config{
		MinAudioBytes:  envInt("RT_MIN_AUDIO_BYTES", 0),
		MaxWindowTurns: envInt("RT_MAX_WINDOW_TURNS", 0),
		IdleTimeout:    envDuration("RT_IDLE_TIMEOUT", 0),
		ReapInterval:   envDuration("RT_REAP_INTERVAL", 0),
		VoiceID:        os.Getenv("RT_VOICE_ID"),
		Language:       os.Getenv("RT_LANGUAGE"),
	}
	windows := realtime.NewWindowStore(rtCfg.MaxWindowTurns)
	pipeline := realtime.NewOrchestrator(rtCfg, lg, sttP, llmP, ttsP, windows,
		services.WelfareLookup(welfareSvc), historySvc)
	manager := realtime.NewManager(rtCfg, lg, windows, pipeline,
		realtime.NewPionFactory(stunURLs()), historySvc)
	realtime.NewReaper(rtCfg, lg, manager).Start(ctx)

	// catalog sync
	if endpoint := os.Getenv("WELFARE_API_ENDPOINT"); endpoint != "" {
		sync := &workers.CatalogSyncWorker{
			Welfare:    welfareSvc,
			Endpoint:   endpoint,
			ServiceKey: os.Getenv("WELFARE_API_KEY"),
			Interval:   envDuration("WELFARE_SYNC_INTERVAL", 24*time.Hour),
			Logger:     lg,
		}
		if err := sync.Start(ctx); err != nil {
			log.Fatalf("catalog sync init error: %v", err)
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(lg))

	routes.RegisterRoutes(r, routes.Deps{
		User:    handlers.NewUserHandler(userSvc),
		Welfare: handlers.NewWelfareHandler(welfareSvc),
		Call:    handlers.NewCallHandler(historySvc),
		WS:      handlers.NewWSHandler(manager, lg),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	lg.WithField("port", port).Info("server starting")
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// buildProviders wires the AI backend selected by AI_BACKEND: "openai"
// (default) or "google" for Cloud Speech + Vertex Gemini. TTS always runs on
// OpenAI; there is no second synthesis backend.
func buildProviders(ctx context.Context) (stt.Provider, llm.Provider, tts.Provider, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	ttsP := tts.NewOpenAISpeech(apiKey)

	if os.Getenv("AI_BACKEND") == "google" {
		sttP, err := stt.NewGoogleSpeech(ctx)
		if err != nil {
			return nil, nil, nil, err
		}
		llmP, err := llm.NewVertexGemini(ctx,
			os.Getenv("GCP_PROJECT"), os.Getenv("GCP_LOCATION"), os.Getenv("GEMINI_MODEL"))
		if err != nil {
			return nil, nil, nil, err
		}
		return sttP, llmP, ttsP, nil
	}

	return stt.NewOpenAIWhisper(apiKey), llm.NewOpenAIChat(apiKey, os.Getenv("OPENAI_CHAT_MODEL")), ttsP, nil
}

func stunURLs() []string {
	if v := os.Getenv("STUN_URLS"); v != "" {
		return []string{v}
	}
	return []string{"stun:stun.l.google.com:19302"}
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
