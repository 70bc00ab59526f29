package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"cutroom/internal/config"
	"cutroom/internal/export"
	"cutroom/internal/export/ffmpeg"
	"cutroom/internal/library"
	"cutroom/internal/logging"
	"cutroom/internal/media"
	"cutroom/internal/services"
)

// ServerConfig carries the collaborators the handlers need. Config and
// Library are required; Loader and Encoder default to the ffprobe and
// ffmpeg implementations when nil. Stream is optional; without it the
// logs endpoint serves empty pages.
type ServerConfig struct {
	Config    *config.Config
	Library   *library.Store
	Loader    media.Loader
	Encoder   export.Encoder
	Logger    *slog.Logger
	Stream    *logging.StreamHub
	Version   string
	StartTime time.Time

	exports *exportManager
}

func (cfg ServerConfig) normalized() ServerConfig {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if cfg.Loader == nil {
		cfg.Loader = media.NewProbeLoader(cfg.Config.FFprobeBinary(), cfg.Logger)
	}
	if cfg.Encoder == nil {
		cfg.Encoder = ffmpeg.NewEncoder(
			ffmpeg.WithBinary(cfg.Config.FFmpegBinary()),
			ffmpeg.WithLogger(cfg.Logger),
		)
	}
	if cfg.StartTime.IsZero() {
		cfg.StartTime = time.Now()
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.exports == nil {
		cfg.exports = newExportManager(cfg.Config, cfg.Library, cfg.Loader, cfg.Encoder, cfg.Logger)
	}
	return cfg
}

// Server wraps the HTTP listener lifecycle around the route table.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewServer builds a server bound to the configured API address.
func NewServer(cfg ServerConfig) *Server {
	cfg = cfg.normalized()
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Config.Paths.APIBind,
			Handler:      NewRouter(cfg),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

// Start listens and serves until Shutdown. A clean shutdown returns nil.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "api", "listen",
			"cannot bind "+s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.logger.Info("api listening", logging.String("addr", listener.Addr().String()))
	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until the context expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Addr reports the bound address once Start has opened the listener,
// falling back to the configured bind address before that.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}
