// Package sqlite implements repo interfaces
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	txStdLib "github.com/Thiht/transactor/stdlib"
	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/pomomo-focus"
)

const SelectDocument = "SELECT key, value, created_at, updated_at FROM kv_store"

type documentEntity struct {
	Key       string
	Value     string
	CreatedAt int64
	UpdatedAt int64
}

type scannable interface {
	Scan(dest ...any) error
}

// documentRepo stores one JSON document per key.
type documentRepo struct {
	dbGetter txStdLib.DBGetter
	l        *log.Logger
	now      func() time.Time
}

func NewDocumentRepo(dbGetter txStdLib.DBGetter, logger *log.Logger) *documentRepo {
	return &documentRepo{
		dbGetter: dbGetter,
		l:        logger,
		now:      time.Now,
	}
}

var _ pomomo.DocumentStore = (*documentRepo)(nil)

func (r *documentRepo) Get(ctx context.Context, key string) ([]byte, error) {
	e, err := r.get(ctx, key)
	if err != nil {
		return nil, err
	}
	return []byte(e.Value), nil
}

func (r *documentRepo) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("provide key")
	}

	now := r.now().UnixMilli()
	query := "INSERT INTO kv_store (key, value, created_at, updated_at) VALUES (?, ?, ?, ?) " +
		"ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at"
	r.l.Debug("saving document", "key", key, "bytes", len(value))
	if _, err := r.dbGetter(ctx).ExecContext(ctx, query, key, string(value), now, now); err != nil {
		return fmt.Errorf("failed to save document %s: %w", key, err)
	}
	return nil
}

// UpdatedAt reports when key was last written.
func (r *documentRepo) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	e, err := r.get(ctx, key)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(e.UpdatedAt), nil
}

func (r *documentRepo) get(ctx context.Context, key string) (documentEntity, error) {
	if key == "" {
		return documentEntity{}, fmt.Errorf("provide key")
	}
	row := r.dbGetter(ctx).QueryRowContext(ctx, SelectDocument+" WHERE key = ?", key)
	return extractDocument(row, key)
}

func extractDocument(s scannable, key string) (documentEntity, error) {
	var e documentEntity
	if err := s.Scan(&e.Key, &e.Value, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return documentEntity{}, fmt.Errorf("document %s: %w", key, pomomo.ErrNotFound)
		}
		return documentEntity{}, err
	}
	return e, nil
}
