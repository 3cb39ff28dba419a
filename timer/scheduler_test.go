package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTickerScheduler(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	cancel := NewTickerScheduler().Every(2*time.Millisecond, func() { calls.Add(1) })
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)

	cancel()
	cancel()
	time.Sleep(10 * time.Millisecond)
	settled := calls.Load()
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, settled, calls.Load())
}

func TestTickerScheduler_CancelFromCallback(t *testing.T) {
	t.Parallel()

	var (
		calls  atomic.Int64
		cancel func()
		ready  = make(chan struct{})
	)
	cancel = NewTickerScheduler().Every(time.Millisecond, func() {
		<-ready
		calls.Add(1)
		cancel()
	})
	close(ready)

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, int64(1), calls.Load())
}
