// Package source loads catalog snapshots from their backing store. Two
// backends exist: flat JSON exports on disk and a PostgreSQL catalog
// database. Both produce the same immutable catalog.Snapshot; the pipeline
// never knows which one it came from.
package source

import (
	"context"

	"github.com/papershelf/papershelf/internal/catalog"
)

// Source loads a complete catalog snapshot. Loading happens once at boot;
// a snapshot is never reloaded in place.
type Source interface {
	Load(ctx context.Context) (*catalog.Snapshot, error)
}
