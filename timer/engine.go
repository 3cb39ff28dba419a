// Package timer implements the work/break countdown state machine.
package timer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/pomomo-focus"
)

// TickInterval is the countdown resolution.
const TickInterval = time.Second

// ErrSessionActive is returned when durations are edited while a countdown is
// running or paused.
var ErrSessionActive = errors.New("timer is running or paused")

// Recorder receives a record each time a phase completes naturally.
type Recorder interface {
	Append(context.Context, pomomo.SessionRecord) pomomo.Statistics
}

// Chime plays the completion cue. Errors are ignored by the engine.
type Chime interface {
	Play() error
}

type Config struct {
	Durations pomomo.Durations
	Scheduler Scheduler
	Chime     Chime
	Now       func() time.Time
	Logger    *log.Logger
}

// Engine owns the countdown state. All transitions are serialized by mu;
// events are delivered after mu is released.
type Engine struct {
	mu        sync.Mutex
	parentCtx context.Context
	recorder  Recorder
	scheduler Scheduler
	chime     Chime
	now       func() time.Time
	l         *log.Logger

	durations pomomo.Durations
	phase     pomomo.Phase
	running   bool
	paused    bool
	remaining int
	total     int
	task      string
	status    string

	// at most one tick source and one preview source; callbacks carrying an
	// older generation are dropped
	cancelTick    func()
	tickGen       uint64
	cancelPreview func()
	previewGen    uint64
	previewLeft   int

	handlers []func(Event)
}

func New(ctx context.Context, recorder Recorder, cfg Config) *Engine {
	if cfg.Scheduler == nil {
		cfg.Scheduler = NewTickerScheduler()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	e := &Engine{
		parentCtx: ctx,
		recorder:  recorder,
		scheduler: cfg.Scheduler,
		chime:     cfg.Chime,
		now:       cfg.Now,
		l:         cfg.Logger,
		durations: cfg.Durations.Normalized(),
		phase:     pomomo.WorkPhase,
		status:    StatusReady,
	}
	e.resetPhaseLocked()
	return e
}

// OnEvent registers handler for every subsequent event. Handlers run on the
// goroutine that caused the transition and must not block.
func (e *Engine) OnEvent(handler func(Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
}

// Start begins or resumes the countdown. It is a no-op while running.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.stopPreviewLocked()
	if e.remaining <= 0 {
		e.resetPhaseLocked()
	}
	e.running = true
	e.paused = false
	e.status = runningStatus(e.phase)
	e.startTickLocked()
	ev := e.eventLocked(EventStateChange)
	e.mu.Unlock()

	e.l.Debug("timer started", "phase", ev.Phase, "remaining", ev.Remaining)
	e.emit(ev)
}

// Pause freezes the countdown and starts the break preview. It is a no-op
// unless running.
//
// The preview always counts down the configured break length, also when the
// paused phase is itself a break.
func (e *Engine) Pause() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.stopTickLocked()
	e.running = false
	e.paused = true
	e.status = StatusPaused
	e.startPreviewLocked(e.durations.BreakMinutes * 60)
	ev := e.eventLocked(EventStateChange)
	e.mu.Unlock()

	e.l.Debug("timer paused", "phase", ev.Phase, "remaining", ev.Remaining)
	e.emit(ev)
}

// Toggle starts the countdown when it is not running and pauses it otherwise.
func (e *Engine) Toggle() {
	e.mu.Lock()
	running := e.running
	e.mu.Unlock()
	if running {
		e.Pause()
	} else {
		e.Start()
	}
}

// Stop cancels the countdown and resets the current phase to its full
// duration. The phase is not advanced and nothing is recorded.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.haltLocked()
	e.resetPhaseLocked()
	e.status = StatusReady
	ev := e.eventLocked(EventStateChange)
	e.mu.Unlock()

	e.l.Debug("timer stopped", "phase", ev.Phase)
	e.emit(ev)
}

// Tick advances the countdown by one second when running.
func (e *Engine) Tick() {
	e.mu.Lock()
	e.tickLocked()
}

func (e *Engine) scheduledTick(gen uint64) {
	e.mu.Lock()
	if gen != e.tickGen {
		e.mu.Unlock()
		return
	}
	e.tickLocked()
}

// tickLocked releases mu before recording and emitting.
func (e *Engine) tickLocked() {
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.remaining--
	if e.remaining > 0 {
		ev := e.eventLocked(EventTick)
		e.mu.Unlock()
		e.emit(ev)
		return
	}
	e.remaining = 0
	e.completeLocked()
}

// completeLocked finishes the current phase and releases mu.
func (e *Engine) completeLocked() {
	e.stopTickLocked()
	e.running = false
	e.paused = false

	finished := e.phase
	minutes := e.durations.Of(finished)
	record := pomomo.NewSessionRecord(finished, minutes, e.task, e.now())

	e.phase = finished.Next()
	e.resetPhaseLocked()
	message := MessageWorkComplete
	e.status = StatusWorkComplete
	if finished == pomomo.BreakPhase {
		message = MessageBreakOver
		e.status = StatusBreakComplete
	}
	ev := e.eventLocked(EventPhaseComplete)
	ev.Previous = finished
	ev.DurationMinutes = minutes
	ev.Message = message
	e.mu.Unlock()

	if e.recorder != nil {
		e.recorder.Append(e.parentCtx, record)
	}
	e.playChime()
	e.l.Info("phase complete", "finished", finished, "minutes", minutes, "next", ev.Phase)
	e.emit(ev)
}

// SetDurations updates the configured phase lengths. Non-positive values fall
// back to the defaults. Returns ErrSessionActive while running or paused.
func (e *Engine) SetDurations(workMinutes, breakMinutes int) error {
	e.mu.Lock()
	if e.running || e.paused {
		e.mu.Unlock()
		return ErrSessionActive
	}
	e.durations = pomomo.Durations{WorkMinutes: workMinutes, BreakMinutes: breakMinutes}.Normalized()
	e.resetPhaseLocked()
	ev := e.eventLocked(EventStateChange)
	e.mu.Unlock()

	e.emit(ev)
	return nil
}

// SelectPreset applies durations regardless of state, stopping any countdown
// and returning to a fresh work phase.
func (e *Engine) SelectPreset(workMinutes, breakMinutes int) {
	e.mu.Lock()
	e.haltLocked()
	e.durations = pomomo.Durations{WorkMinutes: workMinutes, BreakMinutes: breakMinutes}.Normalized()
	e.phase = pomomo.WorkPhase
	e.resetPhaseLocked()
	e.status = StatusReady
	ev := e.eventLocked(EventStateChange)
	e.mu.Unlock()

	e.l.Debug("preset selected", "work", workMinutes, "break", breakMinutes)
	e.emit(ev)
}

// SetTask attaches label to the current and following phases. Blank labels
// are ignored and reported as false.
func (e *Engine) SetTask(label string) bool {
	label = strings.TrimSpace(label)
	if label == "" {
		return false
	}

	e.mu.Lock()
	e.task = label
	if !e.running && !e.paused {
		e.status = StatusTaskSet
	}
	ev := e.eventLocked(EventStateChange)
	e.mu.Unlock()

	e.emit(ev)
	return true
}

// Close cancels scheduled callbacks without touching state.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTickLocked()
	e.stopPreviewLocked()
}

func (e *Engine) haltLocked() {
	e.stopTickLocked()
	e.stopPreviewLocked()
	e.running = false
	e.paused = false
}

func (e *Engine) resetPhaseLocked() {
	e.total = e.durations.Of(e.phase) * 60
	e.remaining = e.total
}

func (e *Engine) startTickLocked() {
	e.stopTickLocked()
	e.tickGen++
	gen := e.tickGen
	e.cancelTick = e.scheduler.Every(TickInterval, func() { e.scheduledTick(gen) })
}

func (e *Engine) stopTickLocked() {
	if e.cancelTick != nil {
		e.cancelTick()
		e.cancelTick = nil
	}
	e.tickGen++
}

func (e *Engine) startPreviewLocked(seconds int) {
	e.stopPreviewLocked()
	e.previewGen++
	gen := e.previewGen
	e.previewLeft = seconds
	e.cancelPreview = e.scheduler.Every(TickInterval, func() { e.previewTick(gen) })
}

func (e *Engine) stopPreviewLocked() {
	if e.cancelPreview != nil {
		e.cancelPreview()
		e.cancelPreview = nil
	}
	e.previewGen++
	e.previewLeft = 0
}

func (e *Engine) previewTick(gen uint64) {
	e.mu.Lock()
	if gen != e.previewGen || e.cancelPreview == nil {
		e.mu.Unlock()
		return
	}
	e.previewLeft--
	var ev Event
	over := e.previewLeft <= 0
	if over {
		e.stopPreviewLocked()
		e.status = StatusPreviewOver
		ev = e.eventLocked(EventBreakPreviewOver)
		ev.Message = MessagePreviewOver
	} else {
		e.status = previewStatus(e.previewLeft)
		ev = e.eventLocked(EventBreakPreview)
		ev.Remaining = e.previewLeft
	}
	e.mu.Unlock()

	if over {
		e.playChime()
	}
	e.emit(ev)
}

func (e *Engine) playChime() {
	if e.chime == nil {
		return
	}
	if err := e.chime.Play(); err != nil {
		e.l.Debug("chime unavailable", "err", err)
	}
}

func (e *Engine) eventLocked(t EventType) Event {
	return Event{
		Type:      t,
		Phase:     e.phase,
		Remaining: e.remaining,
		Status:    e.status,
		Task:      e.task,
		At:        e.now(),
	}
}

func (e *Engine) emit(ev Event) {
	e.mu.Lock()
	handlers := make([]func(Event), len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}
