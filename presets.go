package pomomo

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrUnknownPreset = errors.New("unknown preset")

type Preset struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Durations   `yaml:",inline"`
}

type presetsFile struct {
	Presets []Preset `yaml:"presets"`
}

func DefaultPresets() []Preset {
	return []Preset{
		{Name: "classic", Description: "Classic Pomodoro", Durations: Durations{WorkMinutes: 25, BreakMinutes: 5}},
		{Name: "short", Description: "Quick sprints", Durations: Durations{WorkMinutes: 15, BreakMinutes: 3}},
		{Name: "deep", Description: "Deep work", Durations: Durations{WorkMinutes: 50, BreakMinutes: 10}},
		{Name: "extended", Description: "Extended focus", Durations: Durations{WorkMinutes: 90, BreakMinutes: 20}},
	}
}

// LoadPresets reads presets from a YAML file. An empty path or a missing file
// yields DefaultPresets. Entries without a name or with durations outside
// 1..MaxMinutes are skipped.
func LoadPresets(path string) ([]Preset, error) {
	if path == "" {
		return DefaultPresets(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultPresets(), nil
		}
		return DefaultPresets(), fmt.Errorf("read presets file: %w", err)
	}

	var f presetsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return DefaultPresets(), fmt.Errorf("parse presets yaml: %w", err)
	}

	var presets []Preset
	for _, p := range f.Presets {
		p.Name = strings.ToLower(strings.TrimSpace(p.Name))
		if p.Name == "" || !ValidMinutes(p.WorkMinutes) || !ValidMinutes(p.BreakMinutes) {
			continue
		}
		presets = append(presets, p)
	}
	if len(presets) == 0 {
		return DefaultPresets(), nil
	}
	return presets, nil
}

func FindPreset(presets []Preset, name string) (Preset, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range presets {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
}
