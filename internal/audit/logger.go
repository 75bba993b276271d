// Package audit writes the append-only decision and escalation logs.
//
// Every classification outcome appends exactly one decision record, and
// every outcome needing review appends exactly one escalation record.
// Records are newline-delimited JSON, one per line, and are never updated
// or deleted. Writes happen on a dedicated goroutine behind a bounded
// queue so the decision path never blocks on I/O; write failures are
// warned and swallowed, never surfaced to the caller.
package audit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerkeep/ledgerkeep/internal/model"
)

// File names within the audit directory.
const (
	decisionLogName   = "decisions.log"
	escalationLogName = "escalations.log"
)

// defaultQueueSize bounds the write queue. When the queue is full the
// engine drops the record with a warning rather than stalling decisions.
const defaultQueueSize = 256

type recordKind int

const (
	kindDecision recordKind = iota
	kindEscalation
	kindFlush
)

type record struct {
	decision   *model.DecisionLogEntry
	escalation *model.EscalationEntry
	ack        chan struct{}
	kind       recordKind
}

// Logger appends decision and escalation records to durable storage.
type Logger struct {
	queue       chan record
	done        chan struct{}
	dir         string
	decisions   *os.File
	escalations *os.File
	closed      atomic.Bool
}

// NewLogger creates a logger writing under dir. The directory is created
// lazily on the first write, so constructing a logger never touches disk.
func NewLogger(dir string) *Logger {
	l := &Logger{
		dir:   dir,
		queue: make(chan record, defaultQueueSize),
		done:  make(chan struct{}),
	}

	go l.run()

	return l
}

// LogDecision queues a decision record. Missing IDs and timestamps are
// filled in. Never blocks and never returns an error; a full queue drops
// the record with a warning.
func (l *Logger) LogDecision(entry model.DecisionLogEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	l.enqueue(record{kind: kindDecision, decision: &entry})
}

// LogEscalation queues an escalation record. Entries always start pending;
// resolution belongs to the review workflow, not this log.
func (l *Logger) LogEscalation(entry model.EscalationEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.Status == "" {
		entry.Status = model.EscalationPending
	}

	l.enqueue(record{kind: kindEscalation, escalation: &entry})
}

// Flush blocks until every record queued before the call has been written.
func (l *Logger) Flush() {
	if l.closed.Load() {
		return
	}

	ack := make(chan struct{})
	l.queue <- record{kind: kindFlush, ack: ack}
	<-ack
}

// Close flushes pending records and stops the writer. The logger cannot
// be used afterwards.
func (l *Logger) Close() {
	if !l.closed.CompareAndSwap(false, true) {
		return
	}

	close(l.queue)
	<-l.done
}

func (l *Logger) enqueue(rec record) {
	if l.closed.Load() {
		slog.Warn("Audit logger is closed, dropping record")
		return
	}

	select {
	case l.queue <- rec:
	default:
		slog.Warn("Audit queue is full, dropping record", "dir", l.dir)
	}
}

// run drains the queue until Close.
func (l *Logger) run() {
	defer close(l.done)

	for rec := range l.queue {
		switch rec.kind {
		case kindDecision:
			l.append(decisionLogName, &l.decisions, rec.decision)
		case kindEscalation:
			l.append(escalationLogName, &l.escalations, rec.escalation)
		case kindFlush:
			close(rec.ack)
		}
	}

	if l.decisions != nil {
		if err := l.decisions.Close(); err != nil {
			slog.Warn("Failed to close decision log", "error", err)
		}
	}
	if l.escalations != nil {
		if err := l.escalations.Close(); err != nil {
			slog.Warn("Failed to close escalation log", "error", err)
		}
	}
}

// append writes one record as a single JSON line, opening the file (and
// creating the directory) on first use.
func (l *Logger) append(name string, file **os.File, entry any) {
	if *file == nil {
		f, err := l.open(name)
		if err != nil {
			slog.Warn("Failed to open audit log", "file", name, "error", err)
			return
		}
		*file = f
	}

	data, err := json.Marshal(entry)
	if err != nil {
		slog.Warn("Failed to encode audit record", "file", name, "error", err)
		return
	}

	if _, err := (*file).Write(append(data, '\n')); err != nil {
		slog.Warn("Failed to append audit record", "file", name, "error", err)
	}
}

func (l *Logger) open(name string) (*os.File, error) {
	if err := os.MkdirAll(l.dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}

	path := filepath.Join(l.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) // #nosec G304 -- path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	return f, nil
}
