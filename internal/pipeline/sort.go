package pipeline

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort orders the items by the given spec and returns a new slice; the
// input is left untouched. Two rules are absolute regardless of direction:
// unlocked records always sort before locked ones, and titles beginning
// with a letter always sort before titles beginning with anything else.
// Within those partitions the key comparison applies, multiplied by the
// direction. The sort is stable, so equal items keep their upstream order.
func Sort(items []Item, spec SortSpec) []Item {
	out := make([]Item, len(items))
	copy(out, items)

	dir := spec.Dir
	if dir == 0 {
		dir = DefaultDirection(spec.Key)
	}

	// Collators are not safe for concurrent use, so each Sort call builds
	// its own.
	col := collate.New(language.Und, collate.Loose)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Locked != b.Locked {
			return !a.Locked
		}
		if spec.Key == SortTitle {
			ra, rb := titleRank(a.Record.Title), titleRank(b.Record.Title)
			if ra != rb {
				return ra < rb
			}
		}
		c := compareKey(col, a, b, spec.Key)
		return c*int(dir) < 0
	})
	return out
}

// titleRank buckets titles beginning with a letter (0) before titles
// beginning with any other character (1).
func titleRank(title string) int {
	r, _ := utf8.DecodeRuneInString(title)
	if unicode.IsLetter(r) {
		return 0
	}
	return 1
}

func compareKey(col *collate.Collator, a, b Item, key SortKey) int {
	switch key {
	case SortTitle:
		return col.CompareString(a.Record.Title, b.Record.Title)
	case SortCategory:
		return col.CompareString(a.Record.Category, b.Record.Category)
	case SortTags:
		return col.CompareString(
			strings.Join(a.Record.Tags, ","),
			strings.Join(b.Record.Tags, ","),
		)
	case SortYear:
		return compareInt(a.Record.Year, b.Record.Year)
	case SortDate:
		return strings.Compare(a.Record.Date, b.Record.Date)
	case SortPages:
		return compareInt(a.Record.Pages, b.Record.Pages)
	case SortWait:
		return compareInt(a.Record.Wait, b.Record.Wait)
	case SortLocked:
		return compareBool(a.Locked, b.Locked)
	default:
		return 0
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	switch {
	case !a && b:
		return -1
	case a && !b:
		return 1
	default:
		return 0
	}
}
