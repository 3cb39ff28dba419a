package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benjamonnguyen/pomomo-focus"
	"github.com/benjamonnguyen/pomomo-focus/timer"
)

const runHelp = "[enter] start/pause  s stop  t <task> set task  q quit"

func newRunCmd(opts *rootOptions) *cobra.Command {
	var (
		task      string
		preset    string
		work, brk int
		cycles    int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the timer in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			durations := a.cfg.Durations
			if preset != "" {
				p, err := pomomo.FindPreset(a.presets, preset)
				if err != nil {
					return err
				}
				durations = p.Durations
			}
			if work > 0 {
				durations.WorkMinutes = work
			}
			if brk > 0 {
				durations.BreakMinutes = brk
			}

			out := cmd.OutOrStdout()
			engine := timer.New(ctx, a.sessions, timer.Config{
				Durations: durations,
				Chime:     newTerminalBell(os.Stdout),
				Logger:    a.l.WithPrefix("timer"),
			})
			defer engine.Close()
			engine.SetTask(task)

			completed := make(chan timer.Event, 1)
			engine.OnEvent(func(ev timer.Event) {
				switch ev.Type {
				case timer.EventPhaseComplete:
					fmt.Fprintf(out, "\n%s\n", ev.Message)
					select {
					case completed <- ev:
					default:
					}
				case timer.EventBreakPreview, timer.EventBreakPreviewOver:
					fmt.Fprintf(out, "\r%-48s", ev.Status)
				default:
					fmt.Fprintf(out, "\r%s  %-40s", pomomo.FormatClock(ev.Remaining), ev.Status)
				}
			})

			input := make(chan string)
			go readLines(cmd.InOrStdin(), input)

			fmt.Fprintln(out, runHelp)
			engine.Start()

			done := 0
			for {
				select {
				case <-ctx.Done():
					engine.Stop()
					printStats(out, a.sessions.Statistics())
					return nil
				case <-completed:
					done++
					if cycles > 0 && done >= cycles {
						printStats(out, a.sessions.Statistics())
						return nil
					}
					// next phase is already queued
					engine.Start()
				case line, ok := <-input:
					if !ok {
						input = nil
						continue
					}
					switch {
					case line == "":
						engine.Toggle()
					case line == "s":
						engine.Stop()
					case line == "q":
						engine.Stop()
						printStats(out, a.sessions.Statistics())
						return nil
					case strings.HasPrefix(line, "t "):
						engine.SetTask(strings.TrimPrefix(line, "t "))
					default:
						fmt.Fprintf(out, "\n%s\n", runHelp)
					}
				}
			}
		},
	}

	cmd.Flags().StringVarP(&task, "task", "t", "", "task label attached to recorded sessions")
	cmd.Flags().StringVar(&preset, "preset", "", "preset name (see `pomomo presets`)")
	cmd.Flags().IntVar(&work, "work", 0, "work minutes")
	cmd.Flags().IntVar(&brk, "break", 0, "break minutes")
	cmd.Flags().IntVar(&cycles, "cycles", 0, "exit after this many completed phases (0 runs until quit)")
	return cmd
}

func readLines(r io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines <- strings.TrimSpace(scanner.Text())
	}
}
