package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/daisamonteiro/banque-backoffice/internal/config"
	"github.com/daisamonteiro/banque-backoffice/internal/handler"
	"github.com/daisamonteiro/banque-backoffice/internal/lifecycle"
	"github.com/daisamonteiro/banque-backoffice/internal/logging"
	"github.com/daisamonteiro/banque-backoffice/internal/middleware"
	"github.com/daisamonteiro/banque-backoffice/internal/repository"
	"github.com/daisamonteiro/banque-backoffice/internal/service"
)

const routePrefix = "/monteiro.daisa/v1"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("banque-api", cfg.LogLevel, cfg.AppEnv)

	ctx := context.Background()
	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	compteRepo := repository.NewCompteRepository(db)
	clientRepo := repository.NewClientRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	operationLogRepo := repository.NewOperationLogRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	clock := lifecycle.SystemClock{}
	compteService := service.NewCompteService(compteRepo, clientRepo, transactionRepo, db, clock, cfg.NumeroMaxAttempts)
	clientService := service.NewClientService(clientRepo, clock)

	compteHandler := handler.NewCompteHandler(compteService, transactionRepo)
	clientHandler := handler.NewClientHandler(clientService)
	authHandler := handler.NewAuthHandler(adminRepo, cfg.JWTSecret, time.Duration(cfg.JWTExpiryMinutes)*time.Minute)
	healthHandler := handler.NewHealthHandler(db)

	authMW := middleware.Auth(cfg.JWTSecret)
	auditMW := middleware.Audit(operationLogRepo, routePrefix+"/comptes")
	protected := func(h http.HandlerFunc) http.Handler {
		return authMW(auditMW(h))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET "+routePrefix+"/comptes", compteHandler.List)
	mux.Handle("POST "+routePrefix+"/comptes", protected(compteHandler.Create))
	mux.HandleFunc("GET "+routePrefix+"/comptes/{compteId}", compteHandler.Show)
	mux.Handle("PATCH "+routePrefix+"/comptes/{compteId}", protected(compteHandler.Update))
	mux.Handle("DELETE "+routePrefix+"/comptes/{compteId}", protected(compteHandler.Delete))
	mux.Handle("POST "+routePrefix+"/comptes/{compteId}/bloquer", protected(compteHandler.Bloquer))
	mux.Handle("POST "+routePrefix+"/comptes/{compteId}/debloquer", protected(compteHandler.Debloquer))
	mux.HandleFunc("GET "+routePrefix+"/comptes/{compteId}/transactions", compteHandler.Transactions)

	mux.HandleFunc("GET "+routePrefix+"/clients", clientHandler.List)
	mux.Handle("POST "+routePrefix+"/clients", authMW(http.HandlerFunc(clientHandler.Create)))
	mux.HandleFunc("GET "+routePrefix+"/clients/{clientId}", clientHandler.Show)
	mux.Handle("PATCH "+routePrefix+"/clients/{clientId}", authMW(http.HandlerFunc(clientHandler.Update)))
	mux.HandleFunc("GET "+routePrefix+"/clients/{clientId}/comptes", compteHandler.ByClient)

	mux.HandleFunc("POST "+routePrefix+"/auth/login", authHandler.Login)

	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)

	root := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
