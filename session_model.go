package pomomo

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	DefaultWorkMinutes  = 25
	DefaultBreakMinutes = 5

	// MaxMinutes bounds a single phase to one day.
	MaxMinutes = 24 * 60

	// DefaultTaskLabel is recorded when no task was set for the finished phase.
	DefaultTaskLabel = "Focus session"

	// CalendarDateLayout is the layout of SessionRecord.Date.
	CalendarDateLayout = "2006-01-02"
)

type Phase uint8

const (
	WorkPhase Phase = iota
	BreakPhase
)

func (p Phase) String() string {
	switch p {
	case WorkPhase:
		return "work"
	case BreakPhase:
		return "break"
	default:
		panic(fmt.Sprintf("no matching enum for Phase: %d", uint8(p)))
	}
}

// Next returns the phase that follows p.
func (p Phase) Next() Phase {
	if p == WorkPhase {
		return BreakPhase
	}
	return WorkPhase
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Phase) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParsePhase(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func ParsePhase(s string) (Phase, error) {
	switch s {
	case "work":
		return WorkPhase, nil
	case "break":
		return BreakPhase, nil
	default:
		return 0, fmt.Errorf("unknown phase %q", s)
	}
}

// SessionRecord is one completed phase. It is never mutated after creation.
type SessionRecord struct {
	ID              int64     `json:"id"`
	Kind            Phase     `json:"type"`
	DurationMinutes int       `json:"duration"`
	Task            string    `json:"task"`
	Timestamp       time.Time `json:"timestamp"`
	Date            string    `json:"date"`
}

func NewSessionRecord(kind Phase, durationMinutes int, task string, at time.Time) SessionRecord {
	if task == "" {
		task = DefaultTaskLabel
	}
	return SessionRecord{
		ID:              at.UnixMilli(),
		Kind:            kind,
		DurationMinutes: durationMinutes,
		Task:            task,
		Timestamp:       at,
		Date:            CalendarDate(at),
	}
}

func CalendarDate(t time.Time) string {
	return t.Local().Format(CalendarDateLayout)
}

// Statistics is derived from the session log and never persisted.
type Statistics struct {
	TotalWorkSessions  int     `json:"totalWorkSessions"`
	TotalBreakSessions int     `json:"totalBreakSessions"`
	TotalWorkHours     float64 `json:"totalWorkHours"`
	TotalBreakHours    float64 `json:"totalBreakHours"`
	StreakDays         int     `json:"streakDays"`
}

// Durations holds the configured phase lengths in minutes.
type Durations struct {
	WorkMinutes  int `json:"work" yaml:"work"`
	BreakMinutes int `json:"break" yaml:"break"`
}

func DefaultDurations() Durations {
	return Durations{
		WorkMinutes:  DefaultWorkMinutes,
		BreakMinutes: DefaultBreakMinutes,
	}
}

// Normalized replaces values outside 1..MaxMinutes with the defaults.
func (d Durations) Normalized() Durations {
	if !ValidMinutes(d.WorkMinutes) {
		d.WorkMinutes = DefaultWorkMinutes
	}
	if !ValidMinutes(d.BreakMinutes) {
		d.BreakMinutes = DefaultBreakMinutes
	}
	return d
}

func ValidMinutes(m int) bool {
	return m > 0 && m <= MaxMinutes
}

// Of returns the configured minutes for p.
func (d Durations) Of(p Phase) int {
	if p == WorkPhase {
		return d.WorkMinutes
	}
	return d.BreakMinutes
}
