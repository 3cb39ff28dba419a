package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/benjamonnguyen/pomomo-focus"
	"github.com/benjamonnguyen/pomomo-focus/timer"
)

type durationsRequest struct {
	Work  json.RawMessage `json:"work"`
	Break json.RawMessage `json:"break"`
}

type taskRequest struct {
	Task string `json:"task"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleTimer(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleStart(c *gin.Context) {
	s.engine.Start()
	c.JSON(http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handlePause(c *gin.Context) {
	s.engine.Pause()
	c.JSON(http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleStop(c *gin.Context) {
	s.engine.Stop()
	c.JSON(http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleToggle(c *gin.Context) {
	s.engine.Toggle()
	c.JSON(http.StatusOK, s.engine.Snapshot())
}

// handleDurations accepts numbers or numeric strings; anything else falls
// back to the default for that phase.
func (s *Server) handleDurations(c *gin.Context) {
	var req durationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := s.engine.SetDurations(parseMinutes(req.Work), parseMinutes(req.Break))
	if errors.Is(err, timer.ErrSessionActive) {
		c.JSON(http.StatusConflict, gin.H{"error": "stop the timer before changing durations"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if !s.engine.SetTask(req.Task) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task is required"})
		return
	}
	c.JSON(http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handlePresets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"presets": s.presets})
}

func (s *Server) handleSelectPreset(c *gin.Context) {
	p, err := pomomo.FindPreset(s.presets, c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	s.engine.SelectPreset(p.WorkMinutes, p.BreakMinutes)
	c.JSON(http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.sessions.Statistics())
}

func (s *Server) handleSessions(c *gin.Context) {
	records := s.sessions.Records()
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit > 0 && limit < len(records) {
		records = records[len(records)-limit:]
	}
	c.JSON(http.StatusOK, gin.H{
		"sessions": records,
		"count":    len(records),
	})
}

func (s *Server) handleReset(c *gin.Context) {
	if confirm, _ := strconv.ParseBool(c.Query("confirm")); !confirm {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reset requires confirm=true"})
		return
	}
	stats := s.sessions.Reset(c.Request.Context())
	c.JSON(http.StatusOK, stats)
}

// parseMinutes reads a JSON number, or a string by its leading digits so
// "12abc" is 12. Anything else, and values outside 1..MaxMinutes, yield 0.
func parseMinutes(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n < 1 || n > pomomo.MaxMinutes {
			return 0
		}
		return int(n)
	}
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return 0
	}
	return leadingMinutes(str)
}

func leadingMinutes(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil || !pomomo.ValidMinutes(v) {
		return 0
	}
	return v
}
