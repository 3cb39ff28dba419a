package timer

import (
	"sync"
	"time"
)

// Scheduler runs fn every interval until the returned cancel func is called.
// cancel must be safe to call more than once and from inside fn.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
}

type tickerScheduler struct{}

// NewTickerScheduler returns a Scheduler backed by one time.Ticker goroutine
// per scheduled callback.
func NewTickerScheduler() Scheduler {
	return tickerScheduler{}
}

func (tickerScheduler) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}
