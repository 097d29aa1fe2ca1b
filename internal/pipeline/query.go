package pipeline

import (
	"strings"
	"unicode"

	"github.com/papershelf/papershelf/internal/catalog"
)

// QueryMode selects multi-word free-text semantics. The product decision is
// OR (any term matches, tolerating partial phrasing); AND remains available
// as an explicit configuration choice, never an implicit one.
type QueryMode int

const (
	QueryModeOR QueryMode = iota
	QueryModeAND
)

// ParseQueryMode maps a config string to a QueryMode, defaulting to OR.
func ParseQueryMode(s string) QueryMode {
	if strings.EqualFold(s, "and") {
		return QueryModeAND
	}
	return QueryModeOR
}

// CleanTerms lower-cases the query, splits it on runs of whitespace, and
// strips leading and trailing non-word runes from each term. Empty terms
// are discarded.
func CleanTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
		})
		if f != "" {
			terms = append(terms, f)
		}
	}
	return terms
}

// MatchQuery reports whether the indexed text passes the cleaned term list.
// An empty term list always passes.
func MatchQuery(text string, terms []string, mode QueryMode) bool {
	if len(terms) == 0 {
		return true
	}
	for _, term := range terms {
		found := strings.Contains(text, term)
		if mode == QueryModeOR && found {
			return true
		}
		if mode == QueryModeAND && !found {
			return false
		}
	}
	return mode == QueryModeAND
}

// MatchTopics applies the selected topic labels with AND semantics: every
// label must match. An unknown label fails the record (fail-closed on stale
// selections). Within a topic, synonym terms are OR-ed, each tried verbatim
// and with hyphen/space variants to normalise hyphenation differences.
func MatchTopics(text string, selected []string, topics catalog.TopicSet) bool {
	for _, label := range selected {
		topic, ok := topics.Lookup(label)
		if !ok {
			return false
		}
		if !matchAnyTerm(text, topic.Terms) {
			return false
		}
	}
	return true
}

func matchAnyTerm(text string, terms []string) bool {
	for _, term := range terms {
		if matchTerm(text, term) {
			return true
		}
	}
	return false
}

// matchTerm checks the term verbatim, then with every hyphen replaced by a
// space, then with every space replaced by a hyphen.
func matchTerm(text, term string) bool {
	if strings.Contains(text, term) {
		return true
	}
	if hyphenless := strings.ReplaceAll(term, "-", " "); hyphenless != term &&
		strings.Contains(text, hyphenless) {
		return true
	}
	if hyphenated := strings.ReplaceAll(term, " ", "-"); hyphenated != term &&
		strings.Contains(text, hyphenated) {
		return true
	}
	return false
}

// MatchTags applies the flat-tag selection with AND semantics against the
// record's own chip set: its tags, its category, and its size class when
// Large. This is the chip-based variant used alongside synonym topics.
func MatchTags(r catalog.Record, selected []string) bool {
	for _, tag := range selected {
		if r.HasTag(tag) {
			continue
		}
		if tag == r.Category {
			continue
		}
		if tag == catalog.SizeLarge && r.SizeClass() == catalog.SizeLarge {
			continue
		}
		return false
	}
	return true
}
