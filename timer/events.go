package timer

import (
	"time"

	"github.com/benjamonnguyen/pomomo-focus"
)

type EventType string

const (
	EventStateChange      EventType = "state_change"
	EventTick             EventType = "tick"
	EventPhaseComplete    EventType = "phase_complete"
	EventBreakPreview     EventType = "break_preview"
	EventBreakPreviewOver EventType = "break_preview_over"
)

// Event describes an engine update. For EventPhaseComplete, Previous is the
// phase that finished, DurationMinutes its configured length and Phase the
// phase now queued.
type Event struct {
	Type            EventType
	Phase           pomomo.Phase
	Previous        pomomo.Phase
	DurationMinutes int
	Remaining       int
	Status          string
	Task            string
	Message         string
	At              time.Time
}

const (
	StatusReady         = "Ready to Focus"
	StatusTaskSet       = "Ready to start"
	StatusWorking       = "Working..."
	StatusBreak         = "Break time"
	StatusPaused        = "Paused"
	StatusPreviewOver   = "Break finished - Ready to resume"
	StatusWorkComplete  = "Work complete! Time for a break"
	StatusBreakComplete = "Break complete! Ready for work"

	MessageWorkComplete = "Work session complete! Time for a well-deserved break!"
	MessageBreakOver    = "Break time is over! Ready for another work session?"
	MessagePreviewOver  = "Break time is over! Ready to get back to work?"
)

func runningStatus(p pomomo.Phase) string {
	if p == pomomo.WorkPhase {
		return StatusWorking
	}
	return StatusBreak
}

func previewStatus(remaining int) string {
	return "Break: " + pomomo.FormatClock(remaining)
}
