package daemon

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/doccpub/internal/config"
	"git.home.luguber.info/inful/doccpub/internal/eventstore"
	"git.home.luguber.info/inful/doccpub/internal/logfields"
)

// maxWebhookBody bounds webhook payload reads.
const maxWebhookBody = 1 << 20

// HTTPServer exposes the daemon's webhook, health and metrics endpoints.
type HTTPServer struct {
	server   *http.Server
	cfg      config.DaemonConfig
	daemon   *Daemon
	registry *prom.Registry
	store    eventstore.Store
}

// NewHTTPServer creates the daemon's HTTP endpoint surface. registry and
// store may be nil; the corresponding endpoints are then omitted or degrade.
func NewHTTPServer(cfg config.DaemonConfig, d *Daemon, registry *prom.Registry, store eventstore.Store) *HTTPServer {
	s := &HTTPServer{cfg: cfg, daemon: d, registry: registry, store: store}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook", s.handleWebhook)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	if cfg.Metrics && registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	s.server = &http.Server{
		Addr:         cfg.Listen,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Start binds the listen address and serves in the background. Binding
// happens here so startup fails fast on an occupied port.
func (s *HTTPServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.server.Addr, err)
	}

	slog.Info("HTTP server started", logfields.URL("http://"+ln.Addr().String()))
	go func() {
		if serr := s.server.Serve(ln); serr != nil && serr != http.ErrServerClosed {
			slog.Error("HTTP server exited", logfields.Error(serr))
		}
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (s *HTTPServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleWebhook accepts push notifications and triggers a publish. When a
// webhook secret is configured the payload must carry a valid GitHub-style
// HMAC signature.
func (s *HTTPServer) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "failed to read payload", http.StatusBadRequest)
		return
	}

	if s.cfg.WebhookSecret != "" {
		if !validSignature(s.cfg.WebhookSecret, body, r.Header.Get("X-Hub-Signature-256")) {
			slog.Warn("Webhook rejected: bad signature")
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}
	}

	if len(body) > 0 && !json.Valid(body) {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	slog.Info("Webhook received", logfields.Trigger("webhook"),
		slog.String("event", r.Header.Get("X-GitHub-Event")))
	s.daemon.TriggerPublish("webhook")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "accepted",
		"timestamp": time.Now().UTC(),
	})
}

// validSignature checks a "sha256=<hex>" signature over body.
func validSignature(secret string, body []byte, header string) bool {
	sig, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	want := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(want), []byte(sig))
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": string(s.daemon.Status()),
		"uptime": time.Since(s.daemon.StartTime()).String(),
	})
}

// handleStatus reports daemon state plus recent run history when a store is
// attached.
func (s *HTTPServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":     string(s.daemon.Status()),
		"started_at": s.daemon.StartTime().UTC(),
		"active_run": s.daemon.ActiveRun(),
	}
	if s.store != nil {
		runs, err := s.store.RecentRuns(r.Context(), 10)
		if err != nil {
			slog.Warn("Failed to load run history", logfields.Error(err))
		} else {
			resp["recent_runs"] = runs
		}
	}

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp)
}
