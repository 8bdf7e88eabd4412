package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"huddle/api/internal/app"
	"huddle/api/internal/assist"
	"huddle/api/internal/authpw"
	"huddle/api/internal/config"
	"huddle/api/internal/email"
	"huddle/api/internal/export"
	"huddle/api/internal/metrics"
	"huddle/api/internal/realtime"
	"huddle/api/internal/search"
	"huddle/api/internal/session"
	"huddle/api/internal/storage"
	"huddle/api/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	dataStore := store.NewPostgresStore(db)

	pgfts := search.NewPgFTS(db)
	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
	}
	searchService := search.NewService(meiliClient, pgfts)
	if meiliClient != nil {
		defer meiliClient.Close()
	}

	deps := app.Deps{
		Search:  searchService,
		Metrics: metrics.NewManager(),
		Export:  export.NewService(app.NewPayrollExportStore(dataStore, cfg.PayrollTaxRate)),
	}

	emailService := email.NewService(email.Config{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		From:      cfg.SMTPFrom,
		FromName:  cfg.SMTPFromName,
		EnableTLS: true,
	})
	deps.Email = emailService
	deps.AuthPW = authpw.NewService(dataStore)

	// Redis carries refresh sessions and the realtime event fanout.
	if strings.TrimSpace(cfg.RedisURL) != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid redis url: %v", err)
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		log.Printf("Using Redis for refresh token storage")
		deps.Sessions = session.NewRedisStoreWithClient(redisClient)
		broker := realtime.NewBroker(redisClient)
		defer broker.Close()
		deps.Broker = broker
	} else {
		log.Printf("Using PostgreSQL for refresh token storage")
	}

	if strings.TrimSpace(cfg.MinioEndpoint) != "" {
		fileStore, err := storage.New(ctx, storage.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			log.Fatalf("object storage setup failed: %v", err)
		}
		deps.Files = fileStore
	}

	deps.Assist = assistService(ctx, cfg)

	service := app.New(cfg, dataStore, deps)
	if err := service.Bootstrap(ctx); err != nil {
		log.Printf("WARNING: bootstrap error (will retry on next restart): %v", err)
	}

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Huddle API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func assistService(ctx context.Context, cfg config.Config) *assist.Service {
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		log.Printf("GEMINI_API_KEY not set, assist functions use heuristic fallbacks")
		return assist.NewService(nil)
	}
	gen, err := assist.NewGenAIGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Printf("WARNING: GenAI client setup failed, using heuristic fallbacks: %v", err)
		return assist.NewService(nil)
	}
	return assist.NewService(gen)
}
