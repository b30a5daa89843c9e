package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/erechnung/erechnung-backend/internal/invoice/handler"
	"github.com/erechnung/erechnung-backend/internal/invoice/repository"
	"github.com/erechnung/erechnung-backend/internal/invoice/service"
	"github.com/erechnung/erechnung-backend/pkg/config"
	"github.com/erechnung/erechnung-backend/pkg/database"
	"github.com/erechnung/erechnung-backend/pkg/httputil"
	"github.com/erechnung/erechnung-backend/pkg/i18n"
	"github.com/erechnung/erechnung-backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation("invoice-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("invoice-service", cfg.Server.Environment)
	log.Info().Msg("starting Invoice Service")

	// Connect to the audit database. Auditing is best-effort: in
	// development a missing database only disables the audit trail.
	var auditRepo *repository.AuditRepository
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		if cfg.Server.Environment != config.EnvDevelopment {
			log.Fatal().Err(err).Msg("failed to connect to audit database")
		}
		log.Warn().Err(err).Msg("audit database unavailable, audit trail disabled")
	} else {
		defer db.Close()
		auditRepo = repository.NewAuditRepository(db)
	}

	// Initialize service and handlers
	invoiceService := service.NewInvoiceService(auditRepo, log)
	invoiceHandler := handler.NewHandler(invoiceService, cfg.Limits, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(i18n.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{
			"status":  "healthy",
			"service": "invoice-service",
		}
		if db != nil {
			health["database"] = db.Health(r.Context())
		}
		httputil.JSON(w, http.StatusOK, health)
	})

	// API routes
	r.Route("/api/v1/invoices", func(r chi.Router) {
		r.Post("/validate", invoiceHandler.Validate)
		r.Post("/validate/date-range", invoiceHandler.ValidateDateRange)
		r.Post("/generate/xrechnung", invoiceHandler.GenerateXRechnung)
		r.Post("/generate/sap", invoiceHandler.GenerateSAP)
		r.Post("/inspect", invoiceHandler.Inspect)
		r.Get("/audit", invoiceHandler.RecentAudit)
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
