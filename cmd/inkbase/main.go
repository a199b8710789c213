package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/inkwell-ai/inkbase/internal/config"
	logpkg "github.com/inkwell-ai/inkbase/internal/logger"
	"github.com/inkwell-ai/inkbase/internal/metrics"
	"github.com/inkwell-ai/inkbase/internal/store"
	storeBadger "github.com/inkwell-ai/inkbase/internal/store/badger"
	storeRedis "github.com/inkwell-ai/inkbase/internal/store/redis"
	chiTransport "github.com/inkwell-ai/inkbase/internal/transport/chi"
	"github.com/inkwell-ai/inkbase/internal/transport/gemini"
	"github.com/inkwell-ai/inkbase/internal/transport/googleapi"
	openaiGen "github.com/inkwell-ai/inkbase/internal/transport/openai"
	chatuc "github.com/inkwell-ai/inkbase/internal/usecase/chat"
	embeddinguc "github.com/inkwell-ai/inkbase/internal/usecase/embedding"
	generateuc "github.com/inkwell-ai/inkbase/internal/usecase/generate"
	healthuc "github.com/inkwell-ai/inkbase/internal/usecase/health"
	kbuc "github.com/inkwell-ai/inkbase/internal/usecase/kb"
	retrievaluc "github.com/inkwell-ai/inkbase/internal/usecase/retrieval"
	"github.com/inkwell-ai/inkbase/internal/version"
)

func main() {
	// .env carries PORT and storage overrides for the desktop setup.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting inkbase API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	ctx := context.Background()

	// Create the document store based on driver
	var st store.Store
	switch cfg.Storage.Driver {
	case "badger":
		st, err = storeBadger.New(cfg.Storage.Path, logger)
	case "redis":
		st, err = storeRedis.New(ctx, storeRedis.Config{
			Addrs:      cfg.Redis.Addrs,
			Username:   cfg.Redis.Username,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			KeyPrefix:  cfg.Storage.KeyPrefix,
			Dimensions: cfg.Index.Dimensions,
			HNSWM:      cfg.Index.HNSWM,
			HNSWEF:     cfg.Index.HNSWEFConstruct,
		}, logger)
	default:
		logger.Fatal("Unknown storage driver", zap.String("driver", cfg.Storage.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to open document store", zap.Error(err))
	}
	defer st.Close()

	if rs, ok := st.(*storeRedis.Store); ok {
		if err := rs.WaitForReady(ctx, time.Duration(cfg.Redis.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Redis not ready", zap.Error(err))
		}
	}
	logger.Info("Document store ready", zap.String("location", st.Location()))

	// Register provider metrics explicitly (no init())
	metrics.RegisterProviderMetrics()

	// Embedder chain: Gemini behind the store-backed vector cache.
	embedder := embeddinguc.NewCached(
		gemini.NewEmbedder(gemini.DefaultEmbeddingModel, logger),
		st,
		metrics.EmbeddingCacheTotal,
		logger,
	)

	geminiGen := gemini.NewGenerator(logger)
	openAIGen := openaiGen.NewGenerator("", logger)

	// Use case services
	kbSvc := kbuc.New(st, embedder, cfg.Identity.PrefixLen, logger)
	retrievalSvc := retrievaluc.New(st, embedder, logger)
	chatSvc := chatuc.New(retrievalSvc, geminiGen, cfg.Chat.Model, cfg.Chat.ContextChars, cfg.Chat.MaxContextDocs, logger)
	generateSvc := generateuc.New(geminiGen, openAIGen, logger)
	healthSvc := healthuc.New(st)

	server := chiTransport.NewServer(
		kbSvc,
		retrievalSvc,
		chatSvc,
		generateSvc,
		googleapi.NewSearchClient(logger),
		googleapi.NewBooksClient(logger),
		healthSvc,
		logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.HTTP.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]any{
						"success": false,
						"error":   "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
