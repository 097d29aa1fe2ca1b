// Package pipeline implements the browse pipeline: given an immutable
// catalog snapshot and a view state it filters, sorts, groups, and paginates
// records into a render plan. Every stage is a pure function; nothing in
// this package mutates the snapshot or a previous stage's output.
package pipeline

import (
	"strings"

	"github.com/papershelf/papershelf/internal/catalog"
)

// SearchText builds the single lower-cased match surface for a record:
// title, abstract, space-joined tags, and the first-page excerpt, in that
// order. Both free-text search and topic matching consume exactly this
// text so the two predicates can never diverge.
func SearchText(r catalog.Record) string {
	parts := []string{
		r.Title,
		r.Abstract,
		strings.Join(r.Tags, " "),
		r.FirstPage,
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// Item pairs a record with its derived values. Derived values live here,
// never on the record itself.
type Item struct {
	Record catalog.Record
	Text   string
	Locked bool
}

// BuildIndex precomputes search text and lock status for every record in
// the snapshot, applying the blacklist overlay.
func BuildIndex(snap *catalog.Snapshot) []Item {
	items := make([]Item, 0, len(snap.Records))
	for _, r := range snap.Records {
		items = append(items, Item{
			Record: r,
			Text:   SearchText(r),
			Locked: IsLocked(r, snap.Blacklist),
		})
	}
	return items
}
