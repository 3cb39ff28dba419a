package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/benjamonnguyen/pomomo-focus"
)

type statsReport struct {
	pomomo.Statistics
	LastSaved *time.Time `json:"lastSaved,omitempty"`
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show session statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			report := statsReport{Statistics: a.sessions.Statistics()}
			saved, err := a.sessions.LastSaved(cmd.Context())
			switch {
			case err == nil:
				report.LastSaved = &saved
			case !errors.Is(err, pomomo.ErrNotFound):
				a.l.Warn("failed to read last save time", "err", err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			printStats(cmd.OutOrStdout(), report.Statistics)
			if report.LastSaved != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Last saved:    %s\n", report.LastSaved.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "output as JSON")
	return cmd
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded sessions, newest last",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			records := a.sessions.Records()
			if limit > 0 && limit < len(records) {
				records = records[len(records)-limit:]
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			return printHistory(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum records (0 for all)")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "output as JSON")
	return cmd
}

func newResetCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all recorded sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to delete session history without --yes")
			}
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			printStats(cmd.OutOrStdout(), a.sessions.Reset(cmd.Context()))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")
	return cmd
}

func newPresetsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List duration presets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := pomomo.LoadConfig(opts.isProd)
			if err != nil {
				return err
			}
			presets, err := pomomo.LoadPresets(cfg.PresetsPath)
			if err != nil {
				log.Warn("using default presets", "path", cfg.PresetsPath, "err", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tWORK\tBREAK\tDESCRIPTION")
			for _, p := range presets {
				fmt.Fprintf(w, "%s\t%dm\t%dm\t%s\n", p.Name, p.WorkMinutes, p.BreakMinutes, p.Description)
			}
			return w.Flush()
		},
	}
}

func printStats(out io.Writer, s pomomo.Statistics) {
	fmt.Fprintf(out, "\nWork sessions: %d\n", s.TotalWorkSessions)
	fmt.Fprintf(out, "Focus time:    %.1fh\n", s.TotalWorkHours)
	fmt.Fprintf(out, "Break time:    %.1fh\n", s.TotalBreakHours)
	fmt.Fprintf(out, "Day streak:    %d\n", s.StreakDays)
}

func printHistory(out io.Writer, records []pomomo.SessionRecord) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTIME\tTYPE\tMINUTES\tTASK")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", r.Date, r.Timestamp.Local().Format("15:04"), r.Kind, r.DurationMinutes, r.Task)
	}
	return w.Flush()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
