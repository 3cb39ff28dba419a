// Package sessionlog keeps the append-only log of completed sessions and
// derives statistics from it.
package sessionlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Thiht/transactor"
	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/pomomo-focus"
)

// Log is the sole source of truth for statistics. Persistence failures are
// logged and never surface to callers.
type Log struct {
	mu      sync.Mutex
	store   pomomo.DocumentStore
	tx      transactor.Transactor
	now     func() time.Time
	l       *log.Logger
	records []pomomo.SessionRecord
	stats   pomomo.Statistics
}

type Option func(*Log)

func WithClock(now func() time.Time) Option {
	return func(lg *Log) { lg.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(lg *Log) { lg.l = l }
}

// WithTransactor runs every write inside tx.
func WithTransactor(tx transactor.Transactor) Option {
	return func(lg *Log) { lg.tx = tx }
}

// New creates a Log backed by store and loads it.
func New(ctx context.Context, store pomomo.DocumentStore, opts ...Option) *Log {
	lg := &Log{
		store: store,
		now:   time.Now,
		l:     log.Default(),
	}
	for _, opt := range opts {
		opt(lg)
	}
	lg.Load(ctx)
	return lg
}

// Load replaces the in-memory log with the stored one. A missing, unreadable
// or malformed document yields an empty log.
func (lg *Log) Load(ctx context.Context) pomomo.Statistics {
	records, err := lg.read(ctx)
	if err != nil {
		if errors.Is(err, pomomo.ErrNotFound) {
			lg.l.Debug("no stored session log")
		} else {
			lg.l.Error("failed to load session log", "err", err)
		}
		records = nil
	}

	lg.mu.Lock()
	defer lg.mu.Unlock()
	lg.records = records
	lg.stats = ComputeStatistics(lg.records, lg.now())
	return lg.stats
}

// Append adds r to the log, persists the full log and returns the recomputed
// statistics. IDs are kept strictly increasing.
func (lg *Log) Append(ctx context.Context, r pomomo.SessionRecord) pomomo.Statistics {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	if n := len(lg.records); n > 0 && r.ID <= lg.records[n-1].ID {
		r.ID = lg.records[n-1].ID + 1
	}
	if r.Date == "" {
		r.Date = pomomo.CalendarDate(r.Timestamp)
	}
	lg.records = append(lg.records, r)
	lg.persistLocked(ctx)
	lg.stats = ComputeStatistics(lg.records, lg.now())
	lg.l.Debug("appended session record", "id", r.ID, "type", r.Kind, "minutes", r.DurationMinutes)
	return lg.stats
}

// Reset clears the whole log. Callers are responsible for confirmation.
func (lg *Log) Reset(ctx context.Context) pomomo.Statistics {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	cleared := len(lg.records)
	lg.records = nil
	lg.persistLocked(ctx)
	lg.stats = ComputeStatistics(lg.records, lg.now())
	lg.l.Info("session log reset", "cleared", cleared)
	return lg.stats
}

// Statistics recomputes aggregates as of the current time.
func (lg *Log) Statistics() pomomo.Statistics {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	lg.stats = ComputeStatistics(lg.records, lg.now())
	return lg.stats
}

// Records returns a copy of the log, oldest first.
func (lg *Log) Records() []pomomo.SessionRecord {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	out := make([]pomomo.SessionRecord, len(lg.records))
	copy(out, lg.records)
	return out
}

// LastSaved reports when the log was last persisted. It returns an error
// wrapping pomomo.ErrNotFound when nothing has been saved yet.
func (lg *Log) LastSaved(ctx context.Context) (time.Time, error) {
	if lg.store == nil {
		return time.Time{}, pomomo.ErrNotFound
	}
	return lg.store.UpdatedAt(ctx, pomomo.SessionLogKey)
}

func (lg *Log) read(ctx context.Context) ([]pomomo.SessionRecord, error) {
	if lg.store == nil {
		return nil, pomomo.ErrNotFound
	}
	raw, err := lg.store.Get(ctx, pomomo.SessionLogKey)
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}

func (lg *Log) persistLocked(ctx context.Context) {
	if lg.store == nil {
		return
	}
	raw, err := Encode(lg.records)
	if err != nil {
		lg.l.Error("failed to encode session log", "err", err)
		return
	}

	write := func(ctx context.Context) error {
		return lg.store.Put(ctx, pomomo.SessionLogKey, raw)
	}
	if lg.tx != nil {
		err = lg.tx.WithinTransaction(ctx, write)
	} else {
		err = write(ctx)
	}
	if err != nil {
		lg.l.Error("failed to save session log", "records", len(lg.records), "err", err)
	}
}

// Encode renders records as the stored JSON array. A nil log encodes as [].
func Encode(records []pomomo.SessionRecord) ([]byte, error) {
	if records == nil {
		records = []pomomo.SessionRecord{}
	}
	return json.Marshal(records)
}

func Decode(raw []byte) ([]pomomo.SessionRecord, error) {
	var records []pomomo.SessionRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode session log: %w", err)
	}
	for i := range records {
		if records[i].Date == "" {
			records[i].Date = pomomo.CalendarDate(records[i].Timestamp)
		}
	}
	return records, nil
}
