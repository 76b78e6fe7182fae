package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

// SnapshotSource serves stock detail snapshots.
type SnapshotSource interface {
	Snapshot(ctx context.Context, symbol string) (types.StockSnapshot, error)
}

// NewsFetcher is the live provider chain.
type NewsFetcher interface {
	FetchNews(ctx context.Context, symbol string, limit, daysBack int) ([]types.LiveNews, string)
}

type Config struct {
	Addr         string
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Recommender interfaces.Recommender
	Risk        interfaces.RiskRecommender // nil disables risk ranking
	Stocks      SnapshotSource
	News        NewsFetcher
	RSS         interfaces.NewsProvider

	NewsLimit  int
	RSSLimit   int
	WindowDays int
}

type Server struct {
	router *chi.Mux
	server *http.Server
	cfg    Config
}

func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 60 * time.Second
	}
	if cfg.NewsLimit <= 0 {
		cfg.NewsLimit = 10
	}
	if cfg.RSSLimit <= 0 {
		cfg.RSSLimit = 5
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 7
	}

	s := &Server{router: chi.NewRouter(), cfg: cfg}
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(s.cfg.WriteTimeout))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleRoot)
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/news", s.handleNews)
	s.router.Get("/rss/{symbol}", s.handleRSS)
	s.router.Get("/stock/{symbol}", s.handleStock)
	s.router.Get("/risk/recommend", s.handleRiskRecommend)
	s.router.Post("/recommend", s.handleRecommend)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Start() error {
	logger.Info(context.Background(), "Starting HTTP server", "addr", s.cfg.Addr)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info(ctx, "Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Debug(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
