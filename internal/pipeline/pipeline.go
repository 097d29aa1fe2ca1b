package pipeline

import (
	"github.com/papershelf/papershelf/internal/catalog"
	pkgerrors "github.com/papershelf/papershelf/pkg/errors"
)

// Options fixes the pipeline's policy knobs for the life of the engine.
type Options struct {
	QueryMode   QueryMode
	GroupBy     GroupMode
	PageSize    int
	MaxPageSize int
	Targets     TargetResolver
}

// Engine binds an immutable snapshot to the pipeline. Derived per-record
// values (search text, lock status) are computed once here; every Run
// re-executes the pure pipeline over the same snapshot.
type Engine struct {
	snap  *catalog.Snapshot
	items []Item
	opts  Options
}

// NewEngine builds the engine and its per-record index.
func NewEngine(snap *catalog.Snapshot, opts Options) *Engine {
	if opts.PageSize < 1 {
		opts.PageSize = 48
	}
	if opts.MaxPageSize < opts.PageSize {
		opts.MaxPageSize = opts.PageSize
	}
	return &Engine{
		snap:  snap,
		items: BuildIndex(snap),
		opts:  opts,
	}
}

// Snapshot returns the bound catalog snapshot.
func (e *Engine) Snapshot() *catalog.Snapshot {
	return e.snap
}

// LockedCount returns how many records are locked under the blacklist
// overlay.
func (e *Engine) LockedCount() int {
	n := 0
	for _, it := range e.items {
		if it.Locked {
			n++
		}
	}
	return n
}

// RenderItem is one record prepared for the rendering layer: the canonical
// record plus its effective lock status and resolved action targets. Locked
// items carry the notice target, never the real locator.
type RenderItem struct {
	catalog.Record
	Locked  bool    `json:"locked"`
	Targets Targets `json:"targets"`
}

// RenderGroup is one labeled overview section.
type RenderGroup struct {
	Label string       `json:"label"`
	Items []RenderItem `json:"items"`
}

// Render modes.
const (
	ModeGrouped = "grouped"
	ModeFlat    = "flat"
)

// RenderPlan is the pipeline's complete output for one view state.
type RenderPlan struct {
	Mode         string        `json:"mode"`
	Groups       []RenderGroup `json:"groups,omitempty"`
	Items        []RenderItem  `json:"items,omitempty"`
	Page         int           `json:"page,omitempty"`
	TotalPages   int           `json:"totalPages,omitempty"`
	ShownCount   int           `json:"shownCount"`
	TotalCount   int           `json:"totalCount"`
	CardMinWidth int           `json:"cardMinWidth"`
	NoMatches    bool          `json:"noMatches"`
}

// Run executes the full pipeline for one view state: filter, sort, then
// either the grouped overview (no active filter) or the flat paginated
// listing. The same view state always produces the same plan.
func (e *Engine) Run(view ViewState) *RenderPlan {
	terms := CleanTerms(view.Query)

	var activeCollection *catalog.Collection
	collectionKnown := true
	if view.Collection != "" {
		if c, ok := e.snap.CollectionByID(view.Collection); ok {
			activeCollection = &c
		} else {
			// Stale collection selection fails closed, like a stale topic.
			collectionKnown = false
		}
	}

	filtered := make([]Item, 0, len(e.items))
	if collectionKnown {
		for _, it := range e.items {
			if !MatchQuery(it.Text, terms, e.opts.QueryMode) {
				continue
			}
			if !MatchTopics(it.Text, view.Topics, e.snap.Topics) {
				continue
			}
			if !MatchTags(it.Record, view.Tags) {
				continue
			}
			if activeCollection != nil && !activeCollection.Matches(it.Record) {
				continue
			}
			filtered = append(filtered, it)
		}
	}

	sorted := Sort(filtered, view.Sort)

	plan := &RenderPlan{
		ShownCount: len(sorted),
		TotalCount: len(e.items),
		NoMatches:  len(sorted) == 0,
	}
	if view.Density == DensityCompact {
		plan.CardMinWidth = compactCardWidth
	} else {
		plan.CardMinWidth = DensityWidth(len(sorted))
	}

	groupMode := view.Group
	if groupMode == "" {
		groupMode = e.opts.GroupBy
	}

	if !view.HasFilter() && groupMode != GroupNone {
		plan.Mode = ModeGrouped
		var groups []Group
		switch groupMode {
		case GroupSize:
			groups = GroupBySize(sorted)
		case GroupCollection:
			groups = GroupByCollection(sorted, e.snap.Collections)
		default:
			groups = GroupByCategory(sorted)
		}
		plan.Groups = make([]RenderGroup, 0, len(groups))
		for _, g := range groups {
			plan.Groups = append(plan.Groups, RenderGroup{
				Label: g.Label,
				Items: e.renderItems(g.Items),
			})
		}
		return plan
	}

	pageSize := view.PageSize
	if pageSize < 1 {
		pageSize = e.opts.PageSize
	}
	if pageSize > e.opts.MaxPageSize {
		pageSize = e.opts.MaxPageSize
	}
	page := Paginate(sorted, pageSize, view.Page)

	plan.Mode = ModeFlat
	plan.Items = e.renderItems(page.Items)
	plan.Page = page.Number
	plan.TotalPages = page.TotalPages
	return plan
}

func (e *Engine) renderItems(items []Item) []RenderItem {
	out := make([]RenderItem, 0, len(items))
	for _, it := range items {
		out = append(out, RenderItem{
			Record:  it.Record,
			Locked:  it.Locked,
			Targets: e.opts.Targets.Resolve(it.Record, it.Locked, false),
		})
	}
	return out
}

// RecordTargets resolves the action targets for a single record, honouring
// the unlocked-this-click flag the external credential check produces.
func (e *Engine) RecordTargets(id string, unlocked bool) (Targets, error) {
	r, ok := e.snap.RecordByID(id)
	if !ok {
		return Targets{}, pkgerrors.ErrRecordNotFound
	}
	locked := IsLocked(r, e.snap.Blacklist)
	return e.opts.Targets.Resolve(r, locked, unlocked), nil
}
