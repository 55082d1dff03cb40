//-------------------------------------------------------------------------
//
// pgEdge Sales Analytics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package profiles implements sales traffic profiles used to draw
// realistic sale dates and times for generated data.
package profiles

import (
	"fmt"
	"sort"
	"time"
)

// Profile defines the interface for traffic profiles.
type Profile interface {
	// Name returns the profile name.
	Name() string

	// Description returns a human-readable description.
	Description() string

	// ActivityLevel returns the relative sales activity at store-local time
	// t (0.0 to 1.0+). Values above 1.0 indicate busier than a normal
	// weekday peak (e.g., weekends for stores).
	ActivityLevel(t time.Time) float64
}

// DefaultProfile is used when no profile is configured.
const DefaultProfile = "store-regional"

var registry = make(map[string]func() Profile)

// Register adds a profile constructor to the registry.
func Register(name string, constructor func() Profile) {
	registry[name] = constructor
}

// Get retrieves a profile by name.
func Get(name string) (Profile, error) {
	constructor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile: %s", name)
	}
	return constructor(), nil
}

// List returns all registered profile names in sorted order.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HourWeights returns the activity level of each hour of day.
func HourWeights(p Profile, day time.Time) [24]float64 {
	var weights [24]float64
	base := time.Date(day.Year(), day.Month(), day.Day(), 0, 30, 0, 0, time.UTC)
	for h := range weights {
		weights[h] = p.ActivityLevel(base.Add(time.Duration(h) * time.Hour))
	}
	return weights
}

// Uniform spreads sales evenly over the whole week.
type Uniform struct{}

// NewUniform creates a new Uniform profile.
func NewUniform() Profile {
	return Uniform{}
}

func (Uniform) Name() string {
	return "uniform"
}

func (Uniform) Description() string {
	return "Uniform (every hour and day equally likely)"
}

func (Uniform) ActivityLevel(time.Time) float64 {
	return 1.0
}

func init() {
	Register("high-street", NewHighStreet)
	Register("store-regional", NewStoreRegional)
	Register("store-global", NewStoreGlobal)
	Register("uniform", NewUniform)
}
