package store

import "time"

// Metadata keys recorded in the sales_metadata table.
const (
	MetaBackend          = "backend"
	MetaVersion          = "version"
	MetaInitializedAt    = "initialized_at"
	MetaLastLoadID       = "last_load_id"
	MetaLastLoadSource   = "last_load_source"
	MetaLastLoadRows     = "last_load_rows"
	MetaLastLoadAt       = "last_load_at"
	MetaLastCleanRemoved = "last_clean_removed"
	MetaLastCleanAt      = "last_clean_at"
)

// MetadataKeys lists the metadata keys in display order.
var MetadataKeys = []string{
	MetaBackend,
	MetaVersion,
	MetaInitializedAt,
	MetaLastLoadID,
	MetaLastLoadSource,
	MetaLastLoadRows,
	MetaLastLoadAt,
	MetaLastCleanRemoved,
	MetaLastCleanAt,
}

// Timestamp formats t for a metadata value.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
