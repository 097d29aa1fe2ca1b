// Package catalog defines the canonical record model for a paper catalog and
// tolerant decoders for the externally supplied JSON payloads (papers,
// topics, collections, blacklist). Decoding normalises every legacy alias
// field once, so downstream code only ever sees canonical fields.
package catalog

import "encoding/json"

// Size classes for records. Records without an explicit size are classed by
// page count.
const (
	SizeLarge  = "Large"
	SizeNormal = "Normal"
)

// LargePageThreshold is the page count at or above which a record without an
// explicit size is classed as Large.
const LargePageThreshold = 100

// Record is one catalog entry. Zero values mean "unknown": the pipeline
// never distinguishes a missing field from its zero value, except that size
// classing falls back to the page count when Size is empty.
type Record struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Abstract  string   `json:"abstract,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Category  string   `json:"category,omitempty"`
	Year      int      `json:"year,omitempty"`
	Date      string   `json:"date,omitempty"`
	Pages     int      `json:"pages,omitempty"`
	Size      string   `json:"size,omitempty"`
	Venue     string   `json:"venue,omitempty"`
	Wait      int      `json:"wait,omitempty"`
	SourceID  string   `json:"sourceId,omitempty"`
	DOI       string   `json:"doi,omitempty"`
	Locked    bool     `json:"locked,omitempty"`
	FirstPage string   `json:"-"`
	EvalText  string   `json:"evalText,omitempty"`
}

// rawRecord mirrors the on-disk JSON shape, including every alias spelling
// observed across catalog exports.
type rawRecord struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Abstract string   `json:"abstract"`
	Tags     []string `json:"tags"`
	Category string   `json:"category"`
	Year     int      `json:"year"`
	Date     string   `json:"date"`
	Pages    int      `json:"pages"`
	Size     string   `json:"size"`
	Venue    string   `json:"venue"`
	Wait     int      `json:"wait"`
	DOI      string   `json:"doi"`
	Locked   bool     `json:"locked"`

	// Source locator aliases, in preference order.
	SourceID string `json:"sourceId"`
	DriveID  string `json:"driveId"`
	FileID   string `json:"fileId"`

	// First-page / full-text excerpt aliases, in preference order.
	FP        string `json:"fp"`
	FirstPage string `json:"firstPage"`
	Full      string `json:"full"`

	// Evaluation text aliases, in preference order.
	Eval     string `json:"eval"`
	EvalText string `json:"evalText"`
}

// canonical resolves each aliased attribute in its documented preference
// order and returns the canonical Record.
func (r rawRecord) canonical() Record {
	rec := Record{
		ID:       r.ID,
		Title:    r.Title,
		Abstract: r.Abstract,
		Tags:     r.Tags,
		Category: r.Category,
		Year:     r.Year,
		Date:     r.Date,
		Pages:    r.Pages,
		Size:     r.Size,
		Venue:    r.Venue,
		Wait:     r.Wait,
		DOI:      r.DOI,
		Locked:   r.Locked,
	}
	rec.SourceID = firstNonEmpty(r.SourceID, r.DriveID, r.FileID)
	rec.FirstPage = firstNonEmpty(r.FP, r.FirstPage, r.Full)
	rec.EvalText = firstNonEmpty(r.Eval, r.EvalText)
	if rec.ID == "" {
		rec.ID = rec.SourceID
	}
	return rec
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// SizeClass returns the record's explicit size, or infers it from the page
// count when absent.
func (r Record) SizeClass() string {
	if r.Size != "" {
		return r.Size
	}
	if r.Pages >= LargePageThreshold {
		return SizeLarge
	}
	return SizeNormal
}

// HasTag reports whether the record carries the given tag verbatim.
func (r Record) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// DecodeRecords parses a papers payload. A malformed or non-array payload
// yields an empty catalog, never an error: the caller renders an empty state
// instead of crashing.
func DecodeRecords(data []byte) []Record {
	var raw []rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	records := make([]Record, 0, len(raw))
	for _, r := range raw {
		records = append(records, r.canonical())
	}
	return records
}
