//-------------------------------------------------------------------------
//
// pgEdge Sales Analytics
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package profiles

import (
	"math"
	"time"
)

// StoreRegional simulates a regional online store.
// Morning: 6AM - 12PM (40% of peak)
// Afternoon: 12PM - 5PM (60% of peak)
// Evening peak: 5PM - 10PM (100%)
// Late night: 10PM - 12AM (70%)
// Night: 12AM - 6AM (15%)
// Weekend: 120% of weekday
type StoreRegional struct{}

// NewStoreRegional creates a new StoreRegional profile.
func NewStoreRegional() Profile {
	return StoreRegional{}
}

func (StoreRegional) Name() string {
	return "store-regional"
}

func (StoreRegional) Description() string {
	return "Online store, regional (evening peak)"
}

func (StoreRegional) ActivityLevel(t time.Time) float64 {
	hour := t.Hour()

	var base float64
	switch {
	case hour < 6:
		base = 0.15
	case hour < 12:
		base = 0.40
	case hour < 17:
		base = 0.60
	case hour < 22:
		base = 1.0
	default:
		base = 0.70
	}

	if weekday := t.Weekday(); weekday == time.Saturday || weekday == time.Sunday {
		base *= 1.20
	}

	return base
}

// StoreGlobal simulates a global online store recording sale times in UTC.
// 24/7 with evening peaks in each major market
// Base activity: 40% minimum
// Weekend: 110% of weekday
type StoreGlobal struct{}

// NewStoreGlobal creates a new StoreGlobal profile.
func NewStoreGlobal() Profile {
	return StoreGlobal{}
}

func (StoreGlobal) Name() string {
	return "store-global"
}

func (StoreGlobal) Description() string {
	return "Online store, global (24/7 multi-region, UTC sale times)"
}

func (StoreGlobal) ActivityLevel(t time.Time) float64 {
	hour := t.Hour()

	// Evening peaks, 5PM-10PM local:
	// Americas (EST) 22:00-03:00 UTC, Europe (CET) 16:00-21:00 UTC,
	// Asia (JST) 08:00-13:00 UTC.
	americas := eveningPeakContribution(hour, 22, 3)
	europe := eveningPeakContribution(hour, 16, 21)
	asia := eveningPeakContribution(hour, 8, 13)

	combined := math.Max(americas, math.Max(europe, asia))
	activity := 0.40 + 0.60*combined

	if weekday := t.Weekday(); weekday == time.Saturday || weekday == time.Sunday {
		activity *= 1.10
	}

	return activity
}

// eveningPeakContribution returns a value between 0 and 1 for an evening
// shopping peak from peakStart to peakEnd, with a two hour ramp either side.
func eveningPeakContribution(hour, peakStart, peakEnd int) float64 {
	inPeak := hour >= peakStart && hour < peakEnd
	if peakStart > peakEnd {
		inPeak = hour >= peakStart || hour < peakEnd
	}
	if inPeak {
		return 1.0
	}

	wrap := func(h int) int { return (h + 24) % 24 }
	switch hour {
	case wrap(peakStart - 1), wrap(peakEnd):
		return 0.6
	case wrap(peakStart - 2), wrap(peakEnd + 1):
		return 0.3
	}
	return 0.0
}
