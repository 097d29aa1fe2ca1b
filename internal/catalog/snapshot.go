package catalog

// Snapshot is the immutable catalog state loaded once per process. The
// pipeline never mutates it; every browse request reads the same snapshot.
type Snapshot struct {
	Records     []Record
	Topics      TopicSet
	Collections []Collection
	Blacklist   Blacklist
	// Version identifies the loaded content for cache keying.
	Version string
}

// CollectionByID resolves a collection by its ID.
func (s *Snapshot) CollectionByID(id string) (Collection, bool) {
	for _, c := range s.Collections {
		if c.ID == id {
			return c, true
		}
	}
	return Collection{}, false
}

// RecordByID resolves a record by its canonical ID.
func (s *Snapshot) RecordByID(id string) (Record, bool) {
	if id == "" {
		return Record{}, false
	}
	for _, r := range s.Records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}
