package daemon

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/doccpub/internal/config"
	"git.home.luguber.info/inful/doccpub/internal/logfields"
	"git.home.luguber.info/inful/doccpub/internal/pipeline"
)

// natsEnvelope is the wire format for mirrored run events.
type natsEnvelope struct {
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// NATSPublisher mirrors pipeline run events onto a NATS subject so external
// systems (chat notifiers, dashboards) can follow publishes without polling.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to the configured NATS server.
func NewNATSPublisher(cfg *config.NATSConfig) (*NATSPublisher, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, fmt.Errorf("nats mirroring is disabled")
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name("doccpub"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Info("NATS event mirroring enabled", logfields.URL(cfg.URL), slog.String("subject", cfg.Subject))
	return &NATSPublisher{conn: conn, subject: cfg.Subject}, nil
}

// Attach subscribes the publisher to every run lifecycle event on the bus.
func (p *NATSPublisher) Attach(bus *pipeline.Bus) {
	for _, name := range []string{"RunStarted", "StageCompleted", "StageFailed", "RunFinished"} {
		bus.Subscribe(name, p.publish)
	}
}

// publish mirrors one event. Delivery is best effort: a NATS outage never
// fails a run.
func (p *NATSPublisher) publish(e pipeline.Event) error {
	data, err := json.Marshal(natsEnvelope{
		Event:     e.Name(),
		Timestamp: time.Now().UTC(),
		Payload:   e,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		slog.Warn("Failed to mirror event to NATS",
			logfields.RunID(e.GetRunID()),
			slog.String("event", e.Name()),
			logfields.Error(err))
	}
	return nil
}

// Close flushes and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Flush(); err != nil {
		slog.Warn("Failed to flush NATS connection", logfields.Error(err))
	}
	p.conn.Close()
}
