package apiserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/acme/product-importer/internal/config"
	"github.com/acme/product-importer/internal/events"
	handlers "github.com/acme/product-importer/internal/handlers/v1alpha1"
	"github.com/acme/product-importer/internal/imports"
	"github.com/acme/product-importer/internal/imports/jobs"
	"github.com/acme/product-importer/internal/notifier"
	"github.com/acme/product-importer/internal/service"
	"github.com/acme/product-importer/internal/store"
	"github.com/acme/product-importer/pkg/metrics"
	"github.com/acme/product-importer/pkg/middleware"
)

const gracefulShutdownTimeout = 5 * time.Second

type Server struct {
	cfg      *config.Config
	store    store.Store
	listener net.Listener
	producer *events.EventProducer
}

// New returns a new instance of the importer API server.
func New(
	cfg *config.Config,
	store store.Store,
	listener net.Listener,
	producer *events.EventProducer,
) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		listener: listener,
		producer: producer,
	}
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegisterDefault()

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.Service.CorsOrigins,
			AllowedMethods:   []string{"GET", "PUT", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
	)

	// pgx pool backing the River job queue
	pool, err := NewPgxPool(ctx, s.cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	webhookNotifier := notifier.NewWebhookNotifier(s.store)
	importer := imports.NewImporter(s.store, webhookNotifier, s.producer)

	jobsClient, err := jobs.NewClient(ctx, pool, importer)
	if err != nil {
		return fmt.Errorf("failed to create jobs client: %w", err)
	}

	if err := jobsClient.Start(ctx); err != nil {
		return fmt.Errorf("failed to start job queue: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := jobsClient.Stop(stopCtx); err != nil {
			zap.S().Named("api_server").Warnw("failed to stop jobs client", "error", err)
		}
	}()

	zap.S().Named("api_server").Info("job queue initialized")

	h := handlers.NewServiceHandler(
		service.NewProductService(s.store),
		service.NewImportService(s.store, jobsClient, s.producer, s.cfg),
		service.NewWebhookService(s.store, webhookNotifier),
	)
	h.RegisterRoutes(router)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	srv := http.Server{Addr: s.cfg.Service.Address, Handler: router}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("serving API: %s", s.cfg.Service.Address)
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// NewPgxPool builds the connection pool used by River, sized for job
// processing plus LISTEN/NOTIFY.
func NewPgxPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s port=%s dbname=%s",
		cfg.Database.Hostname,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Port,
		cfg.Database.Name,
	)

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx config: %w", err)
	}

	poolCfg.MaxConns = 20
	poolCfg.MinConns = 5
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	return pool, nil
}
