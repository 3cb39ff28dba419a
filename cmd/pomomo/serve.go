package main

import (
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/benjamonnguyen/pomomo-focus/discordgo"
	"github.com/benjamonnguyen/pomomo-focus/timer"
	"github.com/benjamonnguyen/pomomo-focus/web"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the timer over the HTTP API",
		Long: `Start the HTTP API that browser clients drive.

Examples:
  pomomo serve --addr :8080
  POMOMO_DISCORD_WEBHOOK_URL=https://discord.com/api/webhooks/ID/TOKEN pomomo serve`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			if addr == "" {
				addr = a.cfg.HTTPAddr
			}

			engine := timer.New(ctx, a.sessions, timer.Config{
				Durations: a.cfg.Durations,
				Logger:    a.l.WithPrefix("timer"),
			})
			defer engine.Close()

			if a.cfg.DiscordWebhookURL != "" {
				notifier, err := discordgo.NewWebhookNotifier(a.cfg.DiscordWebhookURL, "Pomomo", a.l.WithPrefix("discord"))
				if err != nil {
					return err
				}
				defer notifier.Close()
				engine.OnEvent(notifier.Handle)
			}

			if a.l.GetLevel() > log.DebugLevel {
				gin.SetMode(gin.ReleaseMode)
			}
			srv := web.NewServer(engine, a.sessions, a.presets, a.l.WithPrefix("http"))
			return srv.Serve(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides POMOMO_HTTP_ADDR)")
	return cmd
}
