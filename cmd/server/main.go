package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"pdfshelf/internal/bootstrap"
	"pdfshelf/internal/config"
	"pdfshelf/internal/handler"
	"pdfshelf/internal/httputil"
	"pdfshelf/internal/middleware"
	"pdfshelf/internal/service"
	"pdfshelf/internal/storage"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"db_driver", cfg.DBDriver,
		"table_prefix", cfg.TablePrefix,
		"upload_root", cfg.UploadRoot,
	)

	ctx := context.Background()
	stores, err := bootstrap.OpenStores(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}
	defer stores.Close()

	if err := stores.RunSchema(ctx); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}

	blobs, err := storage.NewBlobStore(cfg.UploadRoot, logger)
	if err != nil {
		log.Fatalf("Failed to prepare upload root: %v", err)
	}

	// Services
	guard := service.NewAccessGuard(stores.Folders, logger)
	folderService := service.NewFolderService(stores.Folders, stores.Pdfs, blobs, stores.TxManager, guard, logger)
	pdfService := service.NewPdfService(stores.Pdfs, blobs, guard, logger)

	// Handlers
	folderHandler := handler.NewFolderHandler(folderService, logger)
	pdfHandler := handler.NewPdfHandler(pdfService, cfg.MaxUploadBytes, logger)

	logger.Info("services initialized", "max_upload_bytes", cfg.MaxUploadBytes)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, folderHandler, pdfHandler)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RateLimit → RequestLogger → Recovery → Routes
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogger(logger)(h)
	h = middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)(h)

	// CORS - outermost so OPTIONS pre-flight requests are never rate limited
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", httputil.RequestIDHeader},
		ExposedHeaders:   []string{httputil.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Minute, // large uploads on slow links
		WriteTimeout: 0,                // PDFs are streamed
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	logger.Info("shutting down", "signal", sig.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
