package service

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsServer struct {
	server *http.Server
}

// Prepare creates the underlying server without listening yet
func (m *MetricsServer) Prepare(addr string) {
	hdlr := http.NewServeMux()
	hdlr.Handle("/metrics", promhttp.Handler())
	m.server = &http.Server{
		Handler: hdlr,
		Addr:    addr,
	}
}

// Serve listens on the prepared address until Shutdown
func (m *MetricsServer) Serve() error {
	return m.server.ListenAndServe()
}

func (m *MetricsServer) Start(addr string) error {
	m.Prepare(addr)
	return m.Serve()
}

func (m *MetricsServer) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}
