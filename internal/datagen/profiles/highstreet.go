//-------------------------------------------------------------------------
//
// pgEdge Sales Analytics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package profiles

import (
	"time"
)

// HighStreet simulates a physical shop.
// Opening hours: 9AM - 8PM
// Lunch rush: 12PM - 2PM (100%)
// Mornings: 9AM - 12PM (50%)
// Afternoons: 2PM - 5PM (70%), after-work rush 5PM - 7PM (90%)
// Closed: 8PM - 9AM (2%, late card settlements)
// Saturday: 130% of weekday, Sunday: 60%
type HighStreet struct{}

// NewHighStreet creates a new HighStreet profile.
func NewHighStreet() Profile {
	return HighStreet{}
}

func (HighStreet) Name() string {
	return "high-street"
}

func (HighStreet) Description() string {
	return "High street shop (9AM-8PM, lunch and after-work rush)"
}

func (HighStreet) ActivityLevel(t time.Time) float64 {
	hour := t.Hour()

	var base float64
	switch {
	case hour < 9 || hour >= 20:
		base = 0.02
	case hour < 12:
		// Ramp from 30% at opening to 70% before lunch
		progress := (float64(hour) + float64(t.Minute())/60.0 - 9.0) / 3.0
		base = 0.30 + 0.40*progress
	case hour < 14:
		base = 1.0
	case hour < 17:
		base = 0.70
	case hour < 19:
		base = 0.90
	default:
		base = 0.40
	}

	switch t.Weekday() {
	case time.Saturday:
		base *= 1.30
	case time.Sunday:
		base *= 0.60
	}

	return base
}
