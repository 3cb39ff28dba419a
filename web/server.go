// Package web serves the timer and session log over a JSON HTTP API.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/benjamonnguyen/pomomo-focus"
	"github.com/benjamonnguyen/pomomo-focus/timer"
)

const requestIDHeader = "X-Request-ID"

// TimerEngine is the subset of *timer.Engine the handlers drive.
type TimerEngine interface {
	Start()
	Pause()
	Stop()
	Toggle()
	SetDurations(workMinutes, breakMinutes int) error
	SelectPreset(workMinutes, breakMinutes int)
	SetTask(label string) bool
	Snapshot() timer.Snapshot
}

// SessionLog is the subset of *sessionlog.Log the handlers read and reset.
type SessionLog interface {
	Statistics() pomomo.Statistics
	Records() []pomomo.SessionRecord
	Reset(context.Context) pomomo.Statistics
}

type Server struct {
	engine   TimerEngine
	sessions SessionLog
	presets  []pomomo.Preset
	router   *gin.Engine
	l        *log.Logger
}

func NewServer(engine TimerEngine, sessions SessionLog, presets []pomomo.Preset, logger *log.Logger) *Server {
	router := gin.New()
	s := &Server{
		engine:   engine,
		sessions: sessions,
		presets:  presets,
		router:   router,
		l:        logger,
	}

	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.GET("/timer", s.handleTimer)
		api.POST("/timer/start", s.handleStart)
		api.POST("/timer/pause", s.handlePause)
		api.POST("/timer/stop", s.handleStop)
		api.POST("/timer/toggle", s.handleToggle)
		api.PUT("/timer/durations", s.handleDurations)
		api.PUT("/timer/task", s.handleTask)

		api.GET("/presets", s.handlePresets)
		api.POST("/presets/:name", s.handleSelectPreset)

		api.GET("/stats", s.handleStats)
		api.GET("/sessions", s.handleSessions)
		api.DELETE("/sessions", s.handleReset)
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.l.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()
		s.l.Debug("http request",
			"id", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
