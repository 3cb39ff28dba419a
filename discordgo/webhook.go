// Package discordgo provides Discord API adapters using package github.com/bwmarrin/discordgo
package discordgo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/pomomo-focus/timer"
)

const notifyTimeout = 10 * time.Second

type webhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// webhookNotifier posts phase transitions to a Discord channel webhook.
type webhookNotifier struct {
	cl        webhookExecutor
	id, token string
	l         *log.Logger
	username  string
	wg        sync.WaitGroup
}

// NewWebhookNotifier parses a https://discord.com/api/webhooks/{id}/{token} URL.
func NewWebhookNotifier(webhookURL, username string, logger *log.Logger) (*webhookNotifier, error) {
	id, token, err := parseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	cl, err := discordgo.New("")
	if err != nil {
		return nil, err
	}
	cl.Client = &http.Client{Timeout: notifyTimeout}
	cl.ShouldRetryOnRateLimit = false
	return &webhookNotifier{
		cl:       cl,
		id:       id,
		token:    token,
		l:        logger,
		username: username,
	}, nil
}

func parseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid webhook url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("invalid webhook url: expected /api/webhooks/{id}/{token}")
}

// Handle is registered with timer.Engine.OnEvent. Posting happens off the
// engine's goroutine; failures are logged.
func (n *webhookNotifier) Handle(ev timer.Event) {
	content := Content(ev)
	if content == "" {
		return
	}
	n.wg.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := n.Notify(ctx, content); err != nil {
			n.l.Error("failed to post discord notification", "event", ev.Type, "err", err)
		}
	})
}

func (n *webhookNotifier) Notify(ctx context.Context, content string) error {
	_, err := n.cl.WebhookExecute(n.id, n.token, false, &discordgo.WebhookParams{
		Content:  content,
		Username: n.username,
	}, discordgo.WithContext(ctx))
	return err
}

// Close waits for in-flight posts.
func (n *webhookNotifier) Close() {
	n.wg.Wait()
}

// Content renders the message for ev, or "" when ev is not worth posting.
func Content(ev timer.Event) string {
	switch ev.Type {
	case timer.EventPhaseComplete:
		task := ""
		if ev.Task != "" {
			task = fmt.Sprintf(" (%s)", ev.Task)
		}
		return fmt.Sprintf("**%d min %s finished**%s\n%s", ev.DurationMinutes, ev.Previous, task, ev.Message)
	case timer.EventBreakPreviewOver:
		return ev.Message
	default:
		return ""
	}
}
