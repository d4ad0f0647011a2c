package service

import (
	"context"
	"encoding/json"
	"net"
	"net/http"

	"github.com/ethereum/go-ethereum/log"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/ethereum-optimism/infra/op-checker/reporting"
)

// Reports gives read access to the latest unit reports
type Reports interface {
	List() []reporting.Entry
	Get(description string) (reporting.Entry, bool)
}

// HealthzServer serves liveness and the latest unit reports
type HealthzServer struct {
	server  *http.Server
	reports Reports
	log     log.Logger
}

func NewHealthzServer(reports Reports, logger log.Logger) *HealthzServer {
	if logger == nil {
		logger = log.New()
	}
	return &HealthzServer{
		reports: reports,
		log:     logger,
	}
}

// Handler returns the routed handler wrapped in CORS
func (h *HealthzServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.Handle).Methods(http.MethodGet)
	r.HandleFunc("/reports", h.HandleList).Methods(http.MethodGet)
	r.HandleFunc("/reports/{unit}", h.HandleReport).Methods(http.MethodGet)
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
	})
	return c.Handler(r)
}

// Prepare creates the underlying server without listening yet
func (h *HealthzServer) Prepare(ctx context.Context, addr string) {
	h.server = &http.Server{
		Handler:     h.Handler(),
		Addr:        addr,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
}

// Serve listens on the prepared address until Shutdown
func (h *HealthzServer) Serve() error {
	return h.server.ListenAndServe()
}

func (h *HealthzServer) Start(ctx context.Context, addr string) error {
	h.Prepare(ctx, addr)
	return h.Serve()
}

func (h *HealthzServer) Shutdown(ctx context.Context) error {
	if h.server == nil {
		return nil
	}
	return h.server.Shutdown(ctx)
}

func (h *HealthzServer) Handle(w http.ResponseWriter, r *http.Request) {
	h.log.Trace("Received health check request", "path", r.URL.Path)
	w.Write([]byte("OK")) //nolint:errcheck
}

// HandleList writes the latest report summary of every unit as JSON
func (h *HealthzServer) HandleList(w http.ResponseWriter, r *http.Request) {
	entries := []reporting.Entry{}
	if h.reports != nil {
		entries = h.reports.List()
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		h.log.Error("failed to encode report list", "err", err)
	}
}

// HandleReport writes the latest full report of one unit as text
func (h *HealthzServer) HandleReport(w http.ResponseWriter, r *http.Request) {
	unit := mux.Vars(r)["unit"]
	if h.reports == nil {
		http.NotFound(w, r)
		return
	}
	entry, ok := h.reports.Get(unit)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Unit-Digest", entry.Report.Digest)
	w.Write([]byte(entry.Content)) //nolint:errcheck
}
