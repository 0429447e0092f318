package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mytheresa/go-catalog-analytics/app/analytics"
	"github.com/mytheresa/go-catalog-analytics/app/catalog"
	"github.com/mytheresa/go-catalog-analytics/app/categories"
	"github.com/mytheresa/go-catalog-analytics/app/config"
	"github.com/mytheresa/go-catalog-analytics/app/database"
	"github.com/mytheresa/go-catalog-analytics/app/events"
	"github.com/mytheresa/go-catalog-analytics/app/health"
	"github.com/mytheresa/go-catalog-analytics/app/logging"
	"github.com/mytheresa/go-catalog-analytics/app/metrics"
	"github.com/mytheresa/go-catalog-analytics/app/middleware"
	"github.com/mytheresa/go-catalog-analytics/models"
	"gorm.io/gorm"
)

func main() {
	os.Exit(serve())
}

// serve returns the process exit code once every deferred close has run.
func serve() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	log, closer, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer closer.Close()
	slog.SetDefault(log)

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		return 1
	}
	log.Info("server stopped gracefully")
	return 0
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	// Initialize database connection
	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	publisher, err := newPublisher(cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	m := metrics.New()
	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.HTTP.Host, strconv.Itoa(cfg.HTTP.Port)),
		Handler:      newRouter(cfg, db, events.NewNotifier(publisher, m, log), m, log),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

type closingPublisher interface {
	events.Publisher
	Close() error
}

type nopClosingPublisher struct{ events.NopPublisher }

func (nopClosingPublisher) Close() error { return nil }

func newPublisher(cfg config.KafkaConfig, log *slog.Logger) (closingPublisher, error) {
	if len(cfg.Brokers) == 0 {
		log.Info("no kafka brokers configured, domain events are dropped")
		return nopClosingPublisher{}, nil
	}
	log.Info("publishing domain events to kafka", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Brokers, cfg.Topic)), nil
}

func newRouter(cfg *config.Config, db *gorm.DB, notifier *events.Notifier, m *metrics.Metrics, log *slog.Logger) http.Handler {
	// Initialize repositories
	productRepo := models.NewProductsRepository(db)
	categoryRepo := models.NewCategoriesRepository(db)
	analyticsRepo := models.NewAnalyticsRepository(db)

	// Initialize handlers
	healthHandler := health.NewHealthHandler(health.PingerFunc(func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}), log)
	catHandler := catalog.NewCatalogHandler(productRepo, categoryRepo, notifier, log)
	categoriesHandler := categories.NewCategoryHandler(categoryRepo, productRepo, notifier, log)
	analyticsHandler := analytics.NewAnalyticsHandler(analyticsRepo, log)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Metrics(m))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", analyticsHandler.HandleSummary)
	r.Get("/health", healthHandler.ServeHTTP)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/products", func(r chi.Router) {
		r.Get("/", catHandler.HandleList)
		r.Post("/", catHandler.HandleCreate)
		r.Get("/{id}", catHandler.HandleGet)
		r.Put("/{id}", catHandler.HandleUpdate)
		r.Delete("/{id}", catHandler.HandleDelete)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", categoriesHandler.HandleGetAll)
		r.Post("/", categoriesHandler.HandleCreate)
		r.Put("/{id}", categoriesHandler.HandleUpdate)
		r.Delete("/{id}", categoriesHandler.HandleDelete)
		r.Get("/{id}/products", categoriesHandler.HandleProducts)
	})

	r.Get("/analytics", analyticsHandler.HandleGet)

	return r
}
