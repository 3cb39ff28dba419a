package timer

import (
	"github.com/benjamonnguyen/pomomo-focus"
)

// Snapshot is a read-only view of the engine for display.
type Snapshot struct {
	Phase            pomomo.Phase     `json:"phase"`
	Running          bool             `json:"running"`
	Paused           bool             `json:"paused"`
	RemainingSeconds int              `json:"remainingSeconds"`
	TotalSeconds     int              `json:"totalSeconds"`
	Display          string           `json:"display"`
	Ratio            float64          `json:"ratio"`
	Status           string           `json:"status"`
	Task             string           `json:"task,omitempty"`
	Durations        pomomo.Durations `json:"durations"`

	// BreakPreviewSeconds is set while the paused break preview is counting.
	BreakPreviewSeconds int `json:"breakPreviewSeconds,omitempty"`
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		Phase:            e.phase,
		Running:          e.running,
		Paused:           e.paused,
		RemainingSeconds: e.remaining,
		TotalSeconds:     e.total,
		Display:          pomomo.FormatClock(e.remaining),
		Status:           e.status,
		Task:             e.task,
		Durations:        e.durations,
	}
	if e.total > 0 {
		s.Ratio = float64(e.remaining) / float64(e.total)
	}
	if e.cancelPreview != nil {
		s.BreakPreviewSeconds = e.previewLeft
	}
	return s
}
