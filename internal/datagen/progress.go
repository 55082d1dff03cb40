package datagen

import (
	"github.com/pgEdge/pgedge-sales/internal/logging"
)

// BatchConfig configures batched writes.
type BatchConfig struct {
	// BatchSize is the number of rows per batch.
	BatchSize int

	// ProgressInterval is how often to log progress (in rows).
	ProgressInterval int64
}

// DefaultBatchConfig returns default batch configuration.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		BatchSize:        1000,
		ProgressInterval: 100000,
	}
}

// ProgressReporter tracks and reports row progress. A total of zero means
// the row count is not known in advance.
type ProgressReporter struct {
	action           string
	target           string
	totalRows        int64
	currentRow       int64
	progressInterval int64
}

// NewProgressReporter creates a new progress reporter. The action is the
// log message, e.g. "Loading data".
func NewProgressReporter(action, target string, totalRows, interval int64) *ProgressReporter {
	if interval <= 0 {
		interval = DefaultBatchConfig().ProgressInterval
	}
	return &ProgressReporter{
		action:           action,
		target:           target,
		totalRows:        totalRows,
		progressInterval: interval,
	}
}

// Update adds rows to the progress and logs each time an interval is crossed.
func (p *ProgressReporter) Update(rows int64) {
	oldRow := p.currentRow
	p.currentRow += rows

	if p.currentRow/p.progressInterval > oldRow/p.progressInterval {
		event := logging.Info().
			Str("target", p.target).
			Int64("rows", p.currentRow)
		if p.totalRows > 0 {
			event = event.
				Int64("total", p.totalRows).
				Float64("percent", float64(p.currentRow)/float64(p.totalRows)*100)
		}
		event.Msg(p.action)
	}
}

// Rows returns the rows counted so far.
func (p *ProgressReporter) Rows() int64 {
	return p.currentRow
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	logging.Info().
		Str("target", p.target).
		Int64("rows", p.currentRow).
		Msg(p.action + " complete")
}
