package sessionlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/Thiht/transactor"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/benjamonnguyen/pomomo-focus"
)

type mockStore struct {
	mu     sync.Mutex
	docs   map[string][]byte
	saved  map[string]time.Time
	getErr error
	putErr error
	puts   int
}

func newMockStore() *mockStore {
	return &mockStore{docs: make(map[string][]byte), saved: make(map[string]time.Time)}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.docs[key]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", key, pomomo.ErrNotFound)
	}
	return v, nil
}

func (m *mockStore) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.docs[key] = value
	m.saved[key] = day(0)
	return nil
}

func (m *mockStore) UpdatedAt(_ context.Context, key string) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	at, ok := m.saved[key]
	if !ok {
		return time.Time{}, fmt.Errorf("updated at %s: %w", key, pomomo.ErrNotFound)
	}
	return at, nil
}

type mockTransactor struct {
	calls int
}

func (m *mockTransactor) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	m.calls++
	return fn(ctx)
}

var _ transactor.Transactor = (*mockTransactor)(nil)

func newTestLog(t *testing.T, store pomomo.DocumentStore, opts ...Option) *Log {
	t.Helper()
	opts = append([]Option{
		WithClock(func() time.Time { return day(0) }),
		WithLogger(log.New(io.Discard)),
	}, opts...)
	return New(context.Background(), store, opts...)
}

func TestLog_AppendAndReload(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMockStore()
	lg := newTestLog(t, store)

	lg.Append(ctx, pomomo.NewSessionRecord(pomomo.WorkPhase, 25, "", day(-1)))
	stats := lg.Append(ctx, pomomo.NewSessionRecord(pomomo.WorkPhase, 25, "write", day(0)))
	require.Equal(t, 2, stats.TotalWorkSessions)
	require.Equal(t, 2, stats.StreakDays)

	reloaded := newTestLog(t, store)
	want, err := Encode(lg.Records())
	require.NoError(t, err)
	got, err := Encode(reloaded.Records())
	require.NoError(t, err)
	require.JSONEq(t, string(want), string(got))
	require.Equal(t, stats, reloaded.Statistics())
}

func TestLog_StreakScenarios(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	recent := newTestLog(t, newMockStore())
	recent.Append(ctx, pomomo.NewSessionRecord(pomomo.WorkPhase, 25, "", day(0)))
	recent.Append(ctx, pomomo.NewSessionRecord(pomomo.WorkPhase, 25, "", day(-1)))
	require.Equal(t, 2, recent.Statistics().StreakDays)

	stale := newTestLog(t, newMockStore())
	stale.Append(ctx, pomomo.NewSessionRecord(pomomo.WorkPhase, 25, "", day(-3)))
	require.Equal(t, 0, stale.Statistics().StreakDays)
}

func TestLog_LoadFailureYieldsEmptyLog(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	store.getErr = errors.New("storage unavailable")
	lg := newTestLog(t, store)

	require.Empty(t, lg.Records())
	require.Equal(t, pomomo.Statistics{}, lg.Statistics())
}

func TestLog_MalformedDocumentYieldsEmptyLog(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	store.docs[pomomo.SessionLogKey] = []byte(`{"not":"an array"`)
	lg := newTestLog(t, store)

	require.Empty(t, lg.Records())
	require.Equal(t, pomomo.Statistics{}, lg.Statistics())
}

func TestLog_SaveFailureKeepsMemory(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	store.putErr = errors.New("disk full")
	lg := newTestLog(t, store)

	stats := lg.Append(context.Background(), pomomo.NewSessionRecord(pomomo.WorkPhase, 25, "", day(0)))
	require.Equal(t, 1, stats.TotalWorkSessions)
	require.Len(t, lg.Records(), 1)
	require.Equal(t, 1, store.puts)
}

func TestLog_IDsStrictlyIncrease(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	lg := newTestLog(t, newMockStore())
	at := day(0)
	for i := 0; i < 3; i++ {
		lg.Append(ctx, pomomo.NewSessionRecord(pomomo.WorkPhase, 25, "", at))
	}
	lg.Append(ctx, pomomo.NewSessionRecord(pomomo.BreakPhase, 5, "", at.Add(-time.Hour)))

	records := lg.Records()
	require.Len(t, records, 4)
	for i := 1; i < len(records); i++ {
		require.Greater(t, records[i].ID, records[i-1].ID)
	}
	require.Equal(t, at.UnixMilli(), records[0].ID)
}

func TestLog_Reset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMockStore()
	lg := newTestLog(t, store)
	lg.Append(ctx, pomomo.NewSessionRecord(pomomo.WorkPhase, 25, "", day(0)))

	stats := lg.Reset(ctx)
	require.Equal(t, pomomo.Statistics{}, stats)
	require.Empty(t, lg.Records())
	require.JSONEq(t, `[]`, string(store.docs[pomomo.SessionLogKey]))

	require.Empty(t, newTestLog(t, store).Records())
}

func TestLog_WritesWithinTransaction(t *testing.T) {
	t.Parallel()

	tx := &mockTransactor{}
	store := newMockStore()
	lg := newTestLog(t, store, WithTransactor(tx))
	lg.Append(context.Background(), pomomo.NewSessionRecord(pomomo.WorkPhase, 25, "", day(0)))
	lg.Reset(context.Background())

	require.Equal(t, 2, tx.calls)
	require.Equal(t, 2, store.puts)
}

func TestLog_RecordsReturnsCopy(t *testing.T) {
	t.Parallel()

	lg := newTestLog(t, newMockStore())
	lg.Append(context.Background(), pomomo.NewSessionRecord(pomomo.WorkPhase, 25, "", day(0)))

	records := lg.Records()
	records[0].Task = "mutated"
	require.Equal(t, pomomo.DefaultTaskLabel, lg.Records()[0].Task)
}

func TestLog_NilStore(t *testing.T) {
	t.Parallel()

	lg := newTestLog(t, nil)
	stats := lg.Append(context.Background(), pomomo.NewSessionRecord(pomomo.WorkPhase, 25, "", day(0)))
	require.Equal(t, 1, stats.TotalWorkSessions)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	raw := []byte(`[
		{"id": 1, "type": "work", "duration": 25, "task": "Focus session", "timestamp": "2026-10-18T09:00:00Z", "date": "2026-10-18"},
		{"id": 2, "type": "break", "duration": 5, "task": "Focus session", "timestamp": "2026-10-18T09:30:00Z"}
	]`)
	records, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, pomomo.WorkPhase, records[0].Kind)
	require.Equal(t, pomomo.BreakPhase, records[1].Kind)
	require.Equal(t, pomomo.CalendarDate(records[1].Timestamp), records[1].Date)

	_, err = Decode([]byte(`[{"type": "nap"}]`))
	require.Error(t, err)
}

func TestEncode_Nil(t *testing.T) {
	t.Parallel()

	raw, err := Encode(nil)
	require.NoError(t, err)
	require.Equal(t, "[]", string(raw))
}

func TestLog_LastSaved(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMockStore()
	lg := newTestLog(t, store)

	_, err := lg.LastSaved(ctx)
	require.ErrorIs(t, err, pomomo.ErrNotFound)

	lg.Append(ctx, pomomo.NewSessionRecord(pomomo.WorkPhase, 25, "", day(0)))
	saved, err := lg.LastSaved(ctx)
	require.NoError(t, err)
	require.Equal(t, day(0), saved)

	_, err = newTestLog(t, nil).LastSaved(ctx)
	require.ErrorIs(t, err, pomomo.ErrNotFound)
}
