package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobmonitor/internal/ports"
	"jobmonitor/internal/resolver"
	"jobmonitor/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Pinger reports whether the queue store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	// PublicURL, when set, is the base of job URIs instead of the request host.
	PublicURL string
	Pinger    Pinger
}

type Server struct {
	router    *chi.Mux
	handler   http.Handler
	registry  *resolver.Registry
	submitter *usecase.Submitter
	monitor   usecase.Monitor
	opts      Options
}

func NewServer(q ports.Queue, reg *resolver.Registry, opts Options) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		registry:  reg,
		submitter: usecase.NewSubmitter(reg, q),
		monitor:   usecase.Monitor{Q: q},
		opts:      opts,
	}
	s.routes()

	s.handler = chainMiddleware(
		s.router,
		recoverHandler,
		requestIDHandler,
		realIPHandler,
		loggerHandler(func(w http.ResponseWriter, r *http.Request) bool { return r.URL.Path == "/healthz" }),
		corsHandler,
	)
	return s
}

func (s *Server) routes() {
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondMessage(w, r, http.StatusNotFound, "resource not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondMessage(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	s.router.Route("/jobs", func(r chi.Router) {
		r.Get("/", s.listJobs)
		r.Post("/", s.createJob)
		r.Get("/{id}", s.getJob)
	})
	s.router.Get("/resolvers", s.listResolvers)
	s.router.Get("/healthz", s.healthz)
}

// Handler returns the router wrapped in the server's middleware.
func (s *Server) Handler() http.Handler { return s.handler }

// Run method of the Server struct runs the HTTP server on the specified port
// until SIGINT or SIGTERM, then shuts it down gracefully.
func (s *Server) Run(port int) error {
	addr := fmt.Sprintf(":%d", port)

	httpServer := http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}

		close(done)
	}()

	log.Info().Msgf("server serving on port %d", port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}

	<-done
	log.Info().Msg("Server stopped")
	return nil
}
