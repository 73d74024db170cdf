package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type Server struct {
	log *logger.Logger
	srv *http.Server
}

func NewServer(log *logger.Logger, address string, cfg RouterConfig) *Server {
	return &Server{
		log: log,
		srv: &http.Server{
			Addr:              address,
			Handler:           NewRouter(cfg),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Run serves until ctx is done, then drains in-flight requests for up to
// shutdownTimeout.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("HTTP server shutting down")
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
