package pipeline

import (
	"fmt"

	"github.com/papershelf/papershelf/internal/catalog"
)

// IsLocked reports whether a record is access-restricted: its own locked
// flag, or a blacklist entry for its source locator. The blacklist is an
// overlay, so growth can only move records from unlocked to locked.
func IsLocked(r catalog.Record, blacklist catalog.Blacklist) bool {
	return r.Locked || blacklist.Contains(r.SourceID)
}

// Targets are the resolved action URLs for a record.
type Targets struct {
	Read     string `json:"read,omitempty"`
	Download string `json:"download,omitempty"`
}

// TargetResolver derives action targets from a record's source locator. For
// locked records the notice target substitutes for both actions; the real
// locator is only revealed when the caller passes unlocked=true after the
// external credential check succeeded.
type TargetResolver struct {
	// ReadURL and DownloadURL are fmt templates with one %s verb for the
	// source locator.
	ReadURL      string
	DownloadURL  string
	NoticeTarget string
}

// Resolve returns the record's action targets. A locked record without a
// configured notice target resolves to empty targets rather than leaking
// the locator.
func (t TargetResolver) Resolve(r catalog.Record, locked, unlocked bool) Targets {
	if locked && !unlocked {
		if t.NoticeTarget == "" {
			return Targets{}
		}
		return Targets{Read: t.NoticeTarget, Download: t.NoticeTarget}
	}
	if r.SourceID == "" {
		return Targets{}
	}
	return Targets{
		Read:     fmt.Sprintf(t.ReadURL, r.SourceID),
		Download: fmt.Sprintf(t.DownloadURL, r.SourceID),
	}
}
