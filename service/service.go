package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/errgroup"

	"github.com/ethereum-optimism/infra/op-checker/metrics"
)

const (
	DefaultHealthzAddr = "0.0.0.0:8080"
	DefaultMetricsAddr = "0.0.0.0:7300"
)

type Config struct {
	HealthzAddr string // empty disables the healthz and reports server
	MetricsAddr string // empty disables the metrics server
	Reports     Reports
	Log         log.Logger
}

type Service struct {
	Healthz *HealthzServer
	Metrics *MetricsServer

	cfg   Config
	group *errgroup.Group
}

func New(cfg Config) *Service {
	if cfg.Log == nil {
		cfg.Log = log.New()
	}
	return &Service{
		Healthz: NewHealthzServer(cfg.Reports, cfg.Log),
		Metrics: &MetricsServer{},
		cfg:     cfg,
	}
}

// Start launches the configured servers in the background. Listen errors are
// logged and counted; Wait returns the first of them.
func (s *Service) Start(ctx context.Context) {
	s.cfg.Log.Info("service starting")
	s.group = new(errgroup.Group)

	// servers are created before the goroutines so Shutdown always sees them
	if s.cfg.HealthzAddr != "" {
		s.Healthz.Prepare(ctx, s.cfg.HealthzAddr)
		s.group.Go(func() error {
			s.cfg.Log.Info("starting healthz server", "addr", s.cfg.HealthzAddr)
			return s.serve("healthz", s.Healthz.Serve)
		})
	}
	if s.cfg.MetricsAddr != "" {
		s.Metrics.Prepare(s.cfg.MetricsAddr)
		s.group.Go(func() error {
			s.cfg.Log.Info("starting metrics server", "addr", s.cfg.MetricsAddr)
			return s.serve("metrics", s.Metrics.Serve)
		})
	}

	s.cfg.Log.Info("service started")
}

func (s *Service) serve(name string, start func() error) error {
	if err := start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.cfg.Log.Error("error starting server", "server", name, "err", err)
		metrics.RecordErrorDetails("error starting "+name+" server", err)
		return err
	}
	return nil
}

// Wait blocks until every server has stopped
func (s *Service) Wait() error {
	if s.group == nil {
		return nil
	}
	return s.group.Wait()
}

func (s *Service) Shutdown(ctx context.Context) {
	s.cfg.Log.Info("service shutting down")

	_ = s.Healthz.Shutdown(ctx)
	s.cfg.Log.Info("healthz stopped")

	_ = s.Metrics.Shutdown(ctx)
	s.cfg.Log.Info("metrics stopped")

	if err := s.Wait(); err != nil {
		s.cfg.Log.Warn("service stopped with error", "err", err)
	}
	s.cfg.Log.Info("service stopped")
}
