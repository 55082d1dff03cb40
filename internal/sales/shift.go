package sales

import "github.com/jackc/pgx/v5/pgtype"

// Shift is a coarse time-of-day bucket derived from the sale time.
type Shift string

const (
	Morning   Shift = "Morning"
	Afternoon Shift = "Afternoon"
	Evening   Shift = "Evening"
)

// Shift boundaries: hours before AfternoonStartHour are Morning, hours up to
// and including AfternoonEndHour are Afternoon, later hours are Evening.
const (
	AfternoonStartHour = 12
	AfternoonEndHour   = 17
)

// Shifts lists every shift in reporting order.
var Shifts = []Shift{Morning, Afternoon, Evening}

// ShiftOfHour buckets an hour of day (0-23).
func ShiftOfHour(hour int) Shift {
	switch {
	case hour < AfternoonStartHour:
		return Morning
	case hour <= AfternoonEndHour:
		return Afternoon
	default:
		return Evening
	}
}

// ShiftOf buckets a sale time.
func ShiftOf(t pgtype.Time) Shift {
	return ShiftOfHour(Hour(t))
}

// CompleteShiftCounts returns one entry per shift in reporting order,
// filling shifts absent from counts with zero.
func CompleteShiftCounts(counts []ShiftCount) []ShiftCount {
	byShift := make(map[Shift]int64, len(counts))
	for _, c := range counts {
		byShift[c.Shift] += c.Orders
	}

	out := make([]ShiftCount, 0, len(Shifts))
	for _, s := range Shifts {
		out = append(out, ShiftCount{Shift: s, Orders: byShift[s]})
	}
	return out
}
