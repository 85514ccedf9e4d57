package config

import (
	"sort"
	"strings"
)

func shot(angle, force float64, balls ...BallConfig) *Config {
	cfg := DefaultConfig()
	cfg.Rack = false
	cfg.Shot = ShotConfig{Ball: 0, Angle: angle, Force: force}
	cfg.Balls = balls
	return cfg
}

var Presets = map[string]map[string]*Config{
	"single": {
		"straight": shot(90, 300, BallConfig{ID: 0, X: 75, Y: 75}),
		"diagonal": shot(60, 400, BallConfig{ID: 0, X: 40, Y: 60}),
	},
	"cushion": {
		"perpendicular": shot(270, 400, BallConfig{ID: 0, X: 75, Y: 40}),
		"bank":          shot(300, 700, BallConfig{ID: 0, X: 40, Y: 150}),
	},
	"pocket": {
		"corner": shot(225, 300, BallConfig{ID: 0, X: 30, Y: 30}),
		"side":   shot(180, 400, BallConfig{ID: 0, X: 60, Y: 150}),
	},
	"pair": {
		"head_on": shot(90, 500, BallConfig{ID: 0, X: 75, Y: 75}, BallConfig{ID: 1, X: 75, Y: 150}),
		"cut":     shot(90, 500, BallConfig{ID: 0, X: 75, Y: 75}, BallConfig{ID: 1, X: 79, Y: 150}),
	},
	"rack": {
		"break": func() *Config {
			cfg := DefaultConfig()
			cfg.Shot = ShotConfig{Ball: 0, Angle: 90, Force: 800}
			return cfg
		}(),
		"soft": func() *Config {
			cfg := DefaultConfig()
			cfg.Shot = ShotConfig{Ball: 0, Angle: 90, Force: 450}
			return cfg
		}(),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(group, preset string) *Config {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	cfg, ok := groupPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// Lookup resolves a "group/name" preset reference.
func Lookup(ref string) *Config {
	group, name, ok := strings.Cut(ref, "/")
	if !ok {
		return nil
	}
	return GetPreset(group, name)
}

func ListPresets(group string) []string {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(groupPresets))
	for name := range groupPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Groups() []string {
	groups := make([]string, 0, len(Presets))
	for g := range Presets {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}
