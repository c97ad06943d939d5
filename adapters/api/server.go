package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"godoe/app"
	"godoe/internal"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes bounds campaign files and response sheets.
const maxBodyBytes = 8 << 20

// Server exposes the campaign service over HTTP.
type Server struct {
	service *app.CampaignService
	router  *chi.Mux
	logger  *internal.Logger
}

// NewServer wires routes for a campaign service.
func NewServer(service *app.CampaignService, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	s := &Server{
		service: service,
		router:  chi.NewRouter(),
		logger:  logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/campaigns", func(r chi.Router) {
		r.Get("/", s.handleListCampaigns)
		r.Post("/", s.handleCreateCampaign)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetCampaign)
			r.Post("/design", s.handleNextDesign)
			r.Post("/responses", s.handleSubmitResponses)
			r.Post("/reevaluate", s.handleReevaluate)
			r.Put("/phase", s.handleSetPhase)
			r.Get("/iterations", s.handleIterations)
			r.Get("/report", s.handleReport)
		})
	})
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("campaign API listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down campaign API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("%s %s -> %d in %s [%s]", r.Method, r.URL.Path, ww.Status(),
			time.Since(start), middleware.GetReqID(r.Context()))
	})
}
