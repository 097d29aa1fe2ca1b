package catalog

import "encoding/json"

// Collection is a named preset filter applied as an additional predicate
// alongside free-text query and topic selection.
type Collection struct {
	ID     string           `json:"id"`
	Label  string           `json:"label"`
	Filter CollectionFilter `json:"filter"`
}

// CollectionFilter matches records by tag membership: AnyTags requires at
// least one of the listed tags, AllTags requires every one. Both empty
// matches everything.
type CollectionFilter struct {
	AnyTags []string `json:"anyTags,omitempty"`
	AllTags []string `json:"allTags,omitempty"`
}

// Matches reports whether the record satisfies the collection's filter.
func (c Collection) Matches(r Record) bool {
	if len(c.Filter.AnyTags) > 0 {
		found := false
		for _, tag := range c.Filter.AnyTags {
			if r.HasTag(tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, tag := range c.Filter.AllTags {
		if !r.HasTag(tag) {
			return false
		}
	}
	return true
}

// DecodeCollections parses a collections payload. Malformed payloads yield
// an empty list.
func DecodeCollections(data []byte) []Collection {
	var collections []Collection
	if err := json.Unmarshal(data, &collections); err != nil {
		return nil
	}
	return collections
}
