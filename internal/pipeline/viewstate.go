package pipeline

import "slices"

// SortKey names a sortable record attribute.
type SortKey string

const (
	SortNone     SortKey = ""
	SortTitle    SortKey = "title"
	SortYear     SortKey = "year"
	SortDate     SortKey = "date"
	SortCategory SortKey = "category"
	SortTags     SortKey = "tags"
	SortPages    SortKey = "pages"
	SortWait     SortKey = "wait"
	SortLocked   SortKey = "locked"
)

// Direction is the sort direction multiplier.
type Direction int

const (
	Ascending  Direction = 1
	Descending Direction = -1
)

// SortSpec is a sort key with its direction.
type SortSpec struct {
	Key SortKey
	Dir Direction
}

// DefaultDirection returns the direction a key starts with on first
// activation: ascending for text-like keys, descending for numeric and
// recency keys.
func DefaultDirection(key SortKey) Direction {
	switch key {
	case SortYear, SortDate, SortPages, SortWait:
		return Descending
	default:
		return Ascending
	}
}

// GroupMode selects the overview partitioning.
type GroupMode string

const (
	GroupNone       GroupMode = "none"
	GroupCategory   GroupMode = "category"
	GroupSize       GroupMode = "size"
	GroupCollection GroupMode = "collection"
)

// DensityMode is the display density preference.
type DensityMode string

const (
	DensityNormal  DensityMode = "normal"
	DensityCompact DensityMode = "compact"
)

// ViewState is the complete, explicit query state for one browse call. It
// is passed into the pipeline and never read from globals, so every stage
// is testable in isolation. Mutating helpers implement the discrete user
// actions and their side rules (filter changes reset the page cursor).
type ViewState struct {
	Query      string
	Topics     []string
	Tags       []string
	Collection string
	Sort       SortSpec
	Group      GroupMode
	Page       int
	PageSize   int
	Density    DensityMode
}

// HasFilter reports whether any narrowing filter is active. The grouped
// overview renders only when no filter is active.
func (v *ViewState) HasFilter() bool {
	return len(CleanTerms(v.Query)) > 0 ||
		len(v.Topics) > 0 ||
		len(v.Tags) > 0 ||
		v.Collection != ""
}

// SetQuery replaces the free-text query and resets the page cursor.
func (v *ViewState) SetQuery(q string) {
	v.Query = q
	v.Page = 1
}

// ToggleTopic adds or removes a topic label from the selection and resets
// the page cursor.
func (v *ViewState) ToggleTopic(label string) {
	if i := slices.Index(v.Topics, label); i >= 0 {
		v.Topics = slices.Delete(v.Topics, i, i+1)
	} else {
		v.Topics = append(v.Topics, label)
	}
	v.Page = 1
}

// ToggleTag adds or removes a flat tag chip and resets the page cursor.
func (v *ViewState) ToggleTag(tag string) {
	if i := slices.Index(v.Tags, tag); i >= 0 {
		v.Tags = slices.Delete(v.Tags, i, i+1)
	} else {
		v.Tags = append(v.Tags, tag)
	}
	v.Page = 1
}

// SelectCollection activates a collection preset (empty clears it) and
// resets the page cursor.
func (v *ViewState) SelectCollection(id string) {
	v.Collection = id
	v.Page = 1
}

// ClickSort applies the column-header rules: clicking the active key
// toggles its direction, clicking a new key resets to that key's default
// direction.
func (v *ViewState) ClickSort(key SortKey) {
	if v.Sort.Key == key {
		v.Sort.Dir = -v.Sort.Dir
		return
	}
	v.Sort = SortSpec{Key: key, Dir: DefaultDirection(key)}
}
