package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kevinmichaelchen/showcase/internal/curate"
	"github.com/kevinmichaelchen/showcase/internal/filter"
	"github.com/kevinmichaelchen/showcase/internal/logging"
	"github.com/kevinmichaelchen/showcase/internal/pipeline"
	"github.com/kevinmichaelchen/showcase/internal/view"
)

// GridBuilder produces rendered grids; *pipeline.Builder satisfies it.
type GridBuilder interface {
	Grid(ctx context.Context, handle string, spec pipeline.GridSpec) pipeline.Grid
}

type Server struct {
	mux     *chi.Mux
	builder GridBuilder
	handle  string
	cfg     *options
}

type options struct {
	assetDir              string
	featuredRequireImages bool
	logger                *zap.Logger
}

type Option func(*options)

// WithAssetDir serves local preview images under /assets/.
func WithAssetDir(dir string) Option {
	return func(o *options) { o.assetDir = dir }
}

func WithFeaturedRequireImages(require bool) Option {
	return func(o *options) { o.featuredRequireImages = require }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func New(builder GridBuilder, handle string, opts ...Option) *Server {
	cfg := &options{}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.logger = logging.OrNop(cfg.logger)

	s := &Server{
		mux:     chi.NewRouter(),
		builder: builder,
		handle:  handle,
		cfg:     cfg,
	}

	s.mux.Use(middleware.RequestID)
	s.mux.Use(middleware.Recoverer)
	s.mux.Use(requestLogger(cfg.logger))

	s.mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		safeWrite(w, cfg.logger, http.StatusOK, "text/plain; charset=utf-8", []byte("ok"))
	})
	s.mux.Get("/", s.page(curate.ModeFeatured))
	s.mux.Get("/projects", s.page(curate.ModeAll))
	s.mux.Get("/api/grids/{mode}", s.gridJSON)

	if cfg.assetDir != "" {
		fs := http.StripPrefix("/assets/", http.FileServer(http.Dir(cfg.assetDir)))
		s.mux.Handle("/assets/*", fs)
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.cfg.logger.Info("listening", zap.String("addr", addr), zap.String("user", s.handle))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	<-errCh
	return nil
}

func (s *Server) spec(mode curate.Mode) pipeline.GridSpec {
	return pipeline.GridSpec{
		Mode:          mode,
		RequireImages: mode == curate.ModeFeatured && s.cfg.featuredRequireImages,
	}
}

func (s *Server) page(mode curate.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grid := s.builder.Grid(r.Context(), s.handle, s.spec(mode))
		selected := r.URL.Query().Get("category")
		if selected == "" {
			selected = filter.All
		}

		var buf bytes.Buffer
		if err := view.HTML(&buf, view.NewPage(s.handle, []pipeline.Grid{grid}, selected)); err != nil {
			s.cfg.logger.Error("rendering page", zap.Error(err))
			safeWrite(w, s.cfg.logger, http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("internal error"))
			return
		}
		safeWrite(w, s.cfg.logger, http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
	}
}

func (s *Server) gridJSON(w http.ResponseWriter, r *http.Request) {
	mode, err := curate.ParseMode(chi.URLParam(r, "mode"))
	if err != nil {
		safeWrite(w, s.cfg.logger, http.StatusNotFound, "text/plain; charset=utf-8", []byte(err.Error()))
		return
	}

	grid := s.builder.Grid(r.Context(), s.handle, s.spec(mode))

	var buf bytes.Buffer
	if err := view.JSON(&buf, view.NewPage(s.handle, []pipeline.Grid{grid}, r.URL.Query().Get("category"))); err != nil {
		s.cfg.logger.Error("encoding grid", zap.Error(err))
		safeWrite(w, s.cfg.logger, http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("internal error"))
		return
	}
	safeWrite(w, s.cfg.logger, http.StatusOK, "application/json", buf.Bytes())
}

func safeWrite(w http.ResponseWriter, logger *zap.Logger, code int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		logger.Error("fail to write response", zap.Error(err))
	}
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
