package main

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
	"uleaf-admin/internal/backend"
	"uleaf-admin/internal/config"
	"uleaf-admin/internal/db"
	"uleaf-admin/internal/directory"
	"uleaf-admin/internal/discount"
	"uleaf-admin/internal/handler"
	"uleaf-admin/internal/invoice"
	"uleaf-admin/internal/orders"
	"uleaf-admin/internal/ports"
	"uleaf-admin/internal/repository"
	"uleaf-admin/internal/server"
	"uleaf-admin/internal/service"
	"uleaf-admin/internal/storage"
)

const searchIdleTimeout = 10 * time.Minute

type activityStore interface {
	ports.ActivityRecorder
	handler.ActivityLister
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]ports.HealthChecker{}

	// activity log: Postgres when configured, otherwise in memory
	var activity activityStore
	if cfg.DatabaseURL != "" {
		pg, err := db.New(ctx, cfg)
		if err != nil {
			logger.Error("failed to connect database", "err", err)
			os.Exit(1)
		}
		defer pg.Close()
		if err := pg.Migrate(ctx); err != nil {
			logger.Error("failed to migrate database", "err", err)
			os.Exit(1)
		}
		activity = repository.ActivityLogRepository{DB: pg}
		checks["database"] = pg
	} else {
		activity = &repository.MemoryActivityLog{Logger: logger}
	}

	// Firebase Auth (optional)
	var firebaseAuth service.FirebaseVerifier
	if cfg.FirebaseProjectID != "" {
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, firebaseOptions(cfg)...)
		if err != nil {
			logger.Error("failed to init firebase app", "err", err)
			os.Exit(1)
		}
		client, err := app.Auth(ctx)
		if err != nil {
			logger.Error("failed to init firebase auth", "err", err)
			os.Exit(1)
		}
		firebaseAuth = client
	}

	// backend
	opts := backend.Options{
		Endpoints:  cfg.Endpoints,
		HTTPClient: &http.Client{Timeout: cfg.BackendTimeout},
		Tokens:     server.BackendTokens(cfg.BackendServiceToken),
		Logger:     logger,
	}
	if cfg.ConnectivityProbe != "" {
		opts.Probe = backend.HTTPProbe{URL: cfg.ConnectivityProbe}
	}
	api := backend.New(opts)
	checks["backend"] = api

	// invoice storage
	var store ports.ObjectStore
	invoiceDir := ""
	if cfg.InvoiceBucket != "" {
		s3Store, err := storage.NewS3Store(ctx, storage.S3Options{
			Bucket:        cfg.InvoiceBucket,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to init invoice bucket", "err", err)
			os.Exit(1)
		}
		store = s3Store
	} else {
		local, err := storage.NewLocalStore(cfg.InvoiceDir, "/files")
		if err != nil {
			logger.Error("failed to init invoice dir", "err", err)
			os.Exit(1)
		}
		store = local
		invoiceDir = cfg.InvoiceDir
	}

	// services
	authSvc := service.AuthService{Config: cfg, Logger: logger, FirebaseAuth: firebaseAuth}
	dir := directory.New(api, cfg.DirectoryPageLimit)
	searches := directory.NewSearchSessions(func() *directory.BuyerSearch {
		return directory.NewBuyerSearch(cfg.SearchDebounce, dir.SearchBuyers, dir.Buyers)
	})
	go sweepSearches(ctx, searches, logger)
	invoices := invoice.NewService(api, api, store, cfg.DirectoryPageLimit, logger)

	// handlers
	handlers := server.Handlers{
		Health:     handler.HealthHandler{Checks: checks},
		Auth:       handler.AuthHandler{Service: &authSvc},
		Docs:       handler.DocsHandler{},
		Discounts:  handler.DiscountHandler{API: api, Deleter: discount.NewDeleter(api), Activity: activity, Logger: logger},
		Reference:  handler.ReferenceHandler{Source: api},
		Directory:  handler.DirectoryHandler{Directory: dir, Searches: searches},
		Orders:     handler.OrderHandler{Lister: orders.Lister{Orders: api, DefaultLimit: 20}},
		Invoices:   handler.InvoiceHandler{Service: invoices, Activity: activity, Logger: logger},
		Activity:   handler.ActivityLogHandler{Repo: activity},
		InvoiceDir: invoiceDir,
	}

	router := server.NewRouter(logger, authSvc, handlers)

	if err := server.Start(ctx, cfg, router, logger, searches.Close); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

func sweepSearches(ctx context.Context, searches *directory.SearchSessions, logger *slog.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := searches.Sweep(searchIdleTimeout); n > 0 {
				logger.Debug("closed idle buyer searches", "count", n)
			}
		}
	}
}

func firebaseOptions(cfg config.Config) []option.ClientOption {
	if cfg.FirebaseCredFile == "" {
		return nil
	}

	cred := cfg.FirebaseCredFile
	// inline JSON or base64-encoded JSON
	if strings.HasPrefix(strings.TrimSpace(cred), "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cred))}
	}
	if decoded, err := base64.StdEncoding.DecodeString(cred); err == nil && strings.HasPrefix(strings.TrimSpace(string(decoded)), "{") {
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}
	}

	return []option.ClientOption{option.WithCredentialsFile(cred)}
}
