package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benjamonnguyen/pomomo-focus"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestStatsCmd_EmptyDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "pomomo.db")

	out, err := execute(t, "stats", "--json", "--db", db)
	require.NoError(t, err)
	var report statsReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, pomomo.Statistics{}, report.Statistics)
	require.Nil(t, report.LastSaved)
}

func TestStatsCmd_LastSavedAfterReset(t *testing.T) {
	db := filepath.Join(t.TempDir(), "pomomo.db")

	_, err := execute(t, "reset", "--yes", "--db", db)
	require.NoError(t, err)

	out, err := execute(t, "stats", "--json", "--db", db)
	require.NoError(t, err)
	var report statsReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.NotNil(t, report.LastSaved)

	out, err = execute(t, "stats", "--db", db)
	require.NoError(t, err)
	require.Contains(t, out, "Last saved:")
}

func TestResetCmd_RequiresConfirmation(t *testing.T) {
	db := filepath.Join(t.TempDir(), "pomomo.db")

	_, err := execute(t, "reset", "--db", db)
	require.Error(t, err)

	out, err := execute(t, "reset", "--yes", "--db", db)
	require.NoError(t, err)
	require.Contains(t, out, "Work sessions: 0")
}

func TestHistoryCmd(t *testing.T) {
	db := filepath.Join(t.TempDir(), "pomomo.db")

	out, err := execute(t, "history", "--db", db)
	require.NoError(t, err)
	require.Contains(t, out, "DATE")
}

func TestPresetsCmd(t *testing.T) {
	t.Setenv("POMOMO_PRESETS_PATH", "")

	out, err := execute(t, "presets")
	require.NoError(t, err)
	for _, p := range pomomo.DefaultPresets() {
		require.Contains(t, out, p.Name)
	}
}

func TestPresetsCmd_MalformedFileListsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("presets: [\n"), 0o600))
	t.Setenv("POMOMO_PRESETS_PATH", path)

	out, err := execute(t, "presets")
	require.NoError(t, err)
	for _, p := range pomomo.DefaultPresets() {
		require.Contains(t, out, p.Name)
	}
}

func TestReadLines(t *testing.T) {
	t.Parallel()

	lines := make(chan string)
	go readLines(strings.NewReader("\n s \nt write docs\n"), lines)

	var got []string
	for l := range lines {
		got = append(got, l)
	}
	require.Equal(t, []string{"", "s", "t write docs"}, got)
}

func TestTerminalBell_NotTerminal(t *testing.T) {
	t.Parallel()

	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()

	require.ErrorIs(t, newTerminalBell(f).Play(), errNoTerminal)
}
