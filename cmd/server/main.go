package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	authservice "identity-service/internal/auth/service"
	"identity-service/internal/audit"
	auditrepo "identity-service/internal/audit/repository"
	"identity-service/internal/config"
	"identity-service/internal/db"
	"identity-service/internal/security"
	"identity-service/internal/server"
	sessionrepo "identity-service/internal/session/repository"
	teleotel "identity-service/internal/telemetry/otel"
	userrepo "identity-service/internal/user/repository"
	userservice "identity-service/internal/user/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	providers, err := teleotel.NewProviders(context.Background(), cfg.OTLPEndpoint, "identity-service", cfg.Env != "production")
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(ctx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	hasher := security.NewHasher(cfg.BcryptCost)
	tokens := security.NewTokenProvider(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL(), cfg.RefreshTTL())

	users := userrepo.NewPostgresRepository(database)
	sessions := sessionrepo.NewPostgresRepository(database)
	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(database))

	authSvc := authservice.NewAuthService(users, sessions, hasher, tokens, cfg.SessionCap, auditLogger)
	userSvc := userservice.NewUserService(users, sessions, auditLogger)

	router := server.NewRouter(server.Options{
		Auth:       authSvc,
		Users:      userSvc,
		Tokens:     tokens,
		DB:         database,
		CORSOrigin: cfg.CORSOrigin,
		Tracer:     providers.TracerProvider.Tracer("identity-service/http"),
		Meter:      providers.MeterProvider.Meter("identity-service/http"),
		Production: cfg.Env == "production",
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
