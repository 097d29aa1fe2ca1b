package catalog

import "encoding/json"

// Blacklist is a set of source locators whose records are force-locked
// regardless of their own locked flag. It is an overlay: membership never
// mutates the record.
type Blacklist map[string]struct{}

// Contains reports whether the locator is blacklisted. Empty locators are
// never considered blacklisted.
func (b Blacklist) Contains(locator string) bool {
	if locator == "" {
		return false
	}
	_, ok := b[locator]
	return ok
}

// Add inserts a locator into the blacklist.
func (b Blacklist) Add(locator string) {
	if locator != "" {
		b[locator] = struct{}{}
	}
}

// DecodeBlacklist parses a blacklist payload (a JSON array of locator
// strings). Malformed payloads yield an empty blacklist.
func DecodeBlacklist(data []byte) Blacklist {
	var ids []string
	b := make(Blacklist)
	if err := json.Unmarshal(data, &ids); err != nil {
		return b
	}
	for _, id := range ids {
		b.Add(id)
	}
	return b
}
