// Package events publishes analysis lifecycle notifications over NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects emitted by the analysis engine.
const (
	SubjectDatasetLoaded = "csinsight.dataset.loaded"
	SubjectReportBuilt   = "csinsight.report.built"
	SubjectCachesCleared = "csinsight.caches.cleared"
)

// DatasetLoaded is published after a CSV upload is accepted.
type DatasetLoaded struct {
	SessionID string    `json:"session_id"`
	DatasetID string    `json:"dataset_id"`
	Name      string    `json:"name"`
	Records   int       `json:"records"`
	LoadedAt  time.Time `json:"loaded_at"`
}

// ReportBuilt is published when a report is computed (not on cache hits).
type ReportBuilt struct {
	SessionID string `json:"session_id"`
	DatasetID string `json:"dataset_id"`
	ReportID  string `json:"report_id"`
	Records   int    `json:"records"`
}

// CachesCleared is published when a session resets its state.
type CachesCleared struct {
	SessionID string `json:"session_id"`
}

// Publisher sends events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(subject string, data any) error
	Close()
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(string, any) error { return nil }
func (Nop) Close()                    {}

// NATS publishes JSON payloads to a NATS server.
type NATS struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// Connect dials url, retrying in the background if the server is not up.
func Connect(ctx context.Context, url, token string, logger *slog.Logger) (*NATS, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := []nats.Option{
		nats.Name("csinsight"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATS{conn: nc, logger: logger}, nil
}

// Publish marshals data as JSON and publishes it on subject.
func (n *NATS) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return n.conn.Publish(subject, payload)
}

// Close drains pending messages and closes the connection.
func (n *NATS) Close() {
	if err := n.conn.Drain(); err != nil {
		n.logger.Warn("nats drain failed", "error", err)
		n.conn.Close()
	}
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Event is one recorded publication.
type Event struct {
	Subject string
	Payload []byte
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish records the JSON encoding of data.
func (r *Recorder) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	r.mu.Lock()
	r.events = append(r.events, Event{Subject: subject, Payload: payload})
	r.mu.Unlock()
	return nil
}

// Close is a no-op.
func (r *Recorder) Close() {}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Subjects lists recorded subjects in publish order.
func (r *Recorder) Subjects() []string {
	evs := r.Events()
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.Subject
	}
	return out
}
