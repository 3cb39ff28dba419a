package pomomo

import (
	"context"
	"errors"
	"time"
)

// SessionLogKey is the storage key holding the JSON session log.
const SessionLogKey = "pomodoroSessions"

var ErrNotFound = errors.New("not found")

// DocumentStore persists whole documents under fixed keys.
type DocumentStore interface {
	// Get returns an error wrapping ErrNotFound when key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// UpdatedAt reports the last Put of key, or an error wrapping ErrNotFound.
	UpdatedAt(ctx context.Context, key string) (time.Time, error)
}
