package ingest

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pgEdge/pgedge-sales/internal/logging"
	"github.com/pgEdge/pgedge-sales/internal/store"
)

// Clean deletes every record with at least one missing field and returns
// the number removed.
func Clean(ctx context.Context, s store.Store) (int64, error) {
	start := time.Now()

	removed, err := s.DeleteIncomplete(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete incomplete records: %w", err)
	}

	logging.Info().
		Int64("removed", removed).
		Dur("duration", time.Since(start)).
		Msg("Removed incomplete records")

	err = s.SaveMetadata(ctx, map[string]string{
		store.MetaLastCleanRemoved: strconv.FormatInt(removed, 10),
		store.MetaLastCleanAt:      store.Timestamp(time.Now()),
	})
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to record clean metadata")
	}

	return removed, nil
}
