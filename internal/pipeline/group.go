package pipeline

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/papershelf/papershelf/internal/catalog"
)

// Group is one labeled bucket of the overview partition.
type Group struct {
	Label string
	Items []Item
}

// MiscCategory is the bucket for records without a category.
const MiscCategory = "Misc"

// GroupByCategory partitions the ordered items by category, defaulting a
// missing category to "Misc". Group labels are sorted with locale-aware
// collation; member order inside a group is the upstream order (stable
// partition, never re-sorted).
func GroupByCategory(items []Item) []Group {
	return groupBy(items, func(it Item) string {
		if it.Record.Category == "" {
			return MiscCategory
		}
		return it.Record.Category
	})
}

// GroupBySize partitions the ordered items by size class; records without
// an explicit size fall back to the page-count threshold.
func GroupBySize(items []Item) []Group {
	return groupBy(items, func(it Item) string {
		return it.Record.SizeClass()
	})
}

// GroupByCollection partitions the ordered items by preset collection
// membership: each item lands in the first collection (in catalog order)
// whose filter it satisfies, or in "Misc" when none match. Groups keep the
// catalog's collection order, with "Misc" last.
func GroupByCollection(items []Item, collections []catalog.Collection) []Group {
	buckets := make(map[string][]Item, len(collections)+1)
	for _, it := range items {
		l := MiscCategory
		for _, c := range collections {
			if c.Matches(it.Record) {
				l = c.Label
				break
			}
		}
		buckets[l] = append(buckets[l], it)
	}

	groups := make([]Group, 0, len(buckets))
	for _, c := range collections {
		if members, ok := buckets[c.Label]; ok {
			groups = append(groups, Group{Label: c.Label, Items: members})
			delete(buckets, c.Label)
		}
	}
	if misc, ok := buckets[MiscCategory]; ok {
		groups = append(groups, Group{Label: MiscCategory, Items: misc})
	}
	return groups
}

func groupBy(items []Item, label func(Item) string) []Group {
	buckets := make(map[string][]Item)
	order := make([]string, 0)
	for _, it := range items {
		l := label(it)
		if _, seen := buckets[l]; !seen {
			order = append(order, l)
		}
		buckets[l] = append(buckets[l], it)
	}

	col := collate.New(language.Und, collate.Loose)
	sort.SliceStable(order, func(i, j int) bool {
		return col.CompareString(order[i], order[j]) < 0
	})

	groups := make([]Group, 0, len(order))
	for _, l := range order {
		groups = append(groups, Group{Label: l, Items: buckets[l]})
	}
	return groups
}

// ParseGroupMode maps a config string to a GroupMode, defaulting to category.
func ParseGroupMode(s string) GroupMode {
	switch GroupMode(s) {
	case GroupSize:
		return GroupSize
	case GroupCollection:
		return GroupCollection
	case GroupNone:
		return GroupNone
	default:
		return GroupCategory
	}
}
