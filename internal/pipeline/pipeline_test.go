package pipeline

import (
	"errors"
	"testing"

	"github.com/papershelf/papershelf/internal/catalog"
	pkgerrors "github.com/papershelf/papershelf/pkg/errors"
)

func testSnapshot() *catalog.Snapshot {
	return &catalog.Snapshot{
		Records: []catalog.Record{
			{ID: "p-1", Title: "Neural Nets in Practice", Abstract: "deep learning survey", Tags: []string{"ml", "survey"}, Category: "AI", Year: 2023, SourceID: "d-1"},
			{ID: "p-2", Title: "Query Planning at Scale", Tags: []string{"databases"}, Category: "Systems", Year: 2021, SourceID: "d-2"},
			{ID: "p-3", Title: "Self-Attention Revisited", Tags: []string{"ml"}, Category: "AI", Year: 2024, SourceID: "d-3"},
			{ID: "p-4", Title: "A Restricted Report", Category: "AI", Year: 2020, SourceID: "d-4", Locked: true},
			{ID: "p-5", Title: "Uncategorised Notes", Year: 2019, SourceID: "d-5"},
		},
		Topics: catalog.NewTopicSet([]catalog.Topic{
			catalog.NewTopic("ML", []string{"neural net", "deep learning", "self attention"}),
			catalog.NewTopic("Systems", []string{"query planning"}),
		}),
		Collections: []catalog.Collection{
			{ID: "ml-only", Label: "Machine Learning", Filter: catalog.CollectionFilter{AnyTags: []string{"ml"}}},
		},
		Blacklist: catalog.Blacklist{},
		Version:   "v-test",
	}
}

func testEngine() *Engine {
	return NewEngine(testSnapshot(), Options{
		QueryMode: QueryModeOR,
		GroupBy:   GroupCategory,
		PageSize:  48,
		Targets: TargetResolver{
			ReadURL:      "https://files.test/read/%s",
			DownloadURL:  "https://files.test/dl/%s",
			NoticeTarget: "https://files.test/notice",
		},
	})
}

func TestRunGroupedOverview(t *testing.T) {
	plan := testEngine().Run(ViewState{})

	if plan.Mode != ModeGrouped {
		t.Fatalf("Mode = %q, want %q", plan.Mode, ModeGrouped)
	}
	if plan.ShownCount != 5 || plan.TotalCount != 5 {
		t.Errorf("counts = %d/%d, want 5/5", plan.ShownCount, plan.TotalCount)
	}
	if plan.NoMatches {
		t.Error("NoMatches set on a full overview")
	}

	wantLabels := []string{"AI", "Misc", "Systems"}
	if len(plan.Groups) != len(wantLabels) {
		t.Fatalf("got %d groups, want %d", len(plan.Groups), len(wantLabels))
	}
	for i, g := range plan.Groups {
		if g.Label != wantLabels[i] {
			t.Errorf("group %d = %q, want %q", i, g.Label, wantLabels[i])
		}
	}
}

func TestRunAnyFilterSwitchesToFlat(t *testing.T) {
	views := []ViewState{
		{Query: "neural"},
		{Topics: []string{"ML"}},
		{Tags: []string{"ml"}},
		{Collection: "ml-only"},
	}
	for _, view := range views {
		plan := testEngine().Run(view)
		if plan.Mode != ModeFlat {
			t.Errorf("view %+v rendered mode %q, want flat", view, plan.Mode)
		}
		if plan.Groups != nil {
			t.Errorf("view %+v produced groups in flat mode", view)
		}
	}
}

func TestRunQueryFilter(t *testing.T) {
	plan := testEngine().Run(ViewState{Query: "neural"})
	if plan.ShownCount != 1 || plan.Items[0].ID != "p-1" {
		t.Errorf("query neural matched %v", renderIDs(plan.Items))
	}

	plan = testEngine().Run(ViewState{Query: "quantum"})
	if plan.ShownCount != 0 || !plan.NoMatches {
		t.Errorf("query quantum: shown=%d noMatches=%v", plan.ShownCount, plan.NoMatches)
	}
	if plan.TotalCount != 5 {
		t.Errorf("TotalCount = %d, want 5", plan.TotalCount)
	}
}

func TestRunTopicHyphenNormalization(t *testing.T) {
	// "Self-Attention Revisited" must match the topic term "self attention".
	plan := testEngine().Run(ViewState{Topics: []string{"ML"}})
	ids := renderIDs(plan.Items)
	if !containsID(ids, "p-3") {
		t.Errorf("ML topic selection missed the hyphenated record: %v", ids)
	}
	if !containsID(ids, "p-1") {
		t.Errorf("ML topic selection missed the synonym match: %v", ids)
	}
	if containsID(ids, "p-2") {
		t.Errorf("ML topic selection leaked a systems record: %v", ids)
	}
}

func TestRunTwoTopicsAND(t *testing.T) {
	plan := testEngine().Run(ViewState{Topics: []string{"ML", "Systems"}})
	if plan.ShownCount != 0 {
		t.Errorf("two disjoint topics matched %v", renderIDs(plan.Items))
	}
}

func TestRunStaleTopicFailsClosed(t *testing.T) {
	plan := testEngine().Run(ViewState{Topics: []string{"Retired"}})
	if plan.ShownCount != 0 || !plan.NoMatches {
		t.Errorf("stale topic: shown=%d noMatches=%v", plan.ShownCount, plan.NoMatches)
	}
}

func TestRunStaleCollectionFailsClosed(t *testing.T) {
	plan := testEngine().Run(ViewState{Collection: "deleted"})
	if plan.ShownCount != 0 || !plan.NoMatches {
		t.Errorf("stale collection: shown=%d noMatches=%v", plan.ShownCount, plan.NoMatches)
	}
}

func TestRunCollectionFilter(t *testing.T) {
	plan := testEngine().Run(ViewState{Collection: "ml-only"})
	ids := renderIDs(plan.Items)
	if len(ids) != 2 || !containsID(ids, "p-1") || !containsID(ids, "p-3") {
		t.Errorf("ml-only collection matched %v", ids)
	}
}

func TestRunLockedRecordsCarryNoticeTarget(t *testing.T) {
	plan := testEngine().Run(ViewState{Query: "restricted"})
	if plan.ShownCount != 1 {
		t.Fatalf("shown = %d, want 1", plan.ShownCount)
	}
	it := plan.Items[0]
	if !it.Locked {
		t.Fatal("restricted record not marked locked")
	}
	if it.Targets.Read != "https://files.test/notice" || it.Targets.Download != "https://files.test/notice" {
		t.Errorf("locked targets leaked: %+v", it.Targets)
	}
}

func TestRunBlacklistedRecordIsLocked(t *testing.T) {
	snap := testSnapshot()
	snap.Blacklist.Add("d-1")
	engine := NewEngine(snap, Options{GroupBy: GroupNone, Targets: TargetResolver{
		ReadURL: "r/%s", DownloadURL: "d/%s",
	}})

	plan := engine.Run(ViewState{Query: "neural"})
	if plan.ShownCount != 1 || !plan.Items[0].Locked {
		t.Fatalf("blacklisted record not locked in plan: %+v", plan.Items)
	}
	if plan.Items[0].Targets != (Targets{}) {
		t.Errorf("blacklisted record leaked targets without a notice: %+v", plan.Items[0].Targets)
	}
}

func TestRunLockedSortLast(t *testing.T) {
	plan := testEngine().Run(ViewState{Tags: []string{"AI"}, Sort: SortSpec{Key: SortYear}})
	ids := renderIDs(plan.Items)
	if len(ids) != 3 {
		t.Fatalf("AI tag matched %v", ids)
	}
	if ids[len(ids)-1] != "p-4" {
		t.Errorf("locked record not last: %v", ids)
	}
}

func TestRunDensity(t *testing.T) {
	plan := testEngine().Run(ViewState{Query: "neural"})
	if plan.CardMinWidth != 360 {
		t.Errorf("small result width = %d, want 360", plan.CardMinWidth)
	}

	plan = testEngine().Run(ViewState{Query: "neural", Density: DensityCompact})
	if plan.CardMinWidth != 180 {
		t.Errorf("compact width = %d, want 180", plan.CardMinWidth)
	}
}

func TestRunDensityScalesWithResultCount(t *testing.T) {
	records := make([]catalog.Record, 500)
	for i := range records {
		records[i] = catalog.Record{ID: string(rune('a' + i%26)), Title: "Paper"}
	}
	engine := NewEngine(&catalog.Snapshot{Records: records}, Options{GroupBy: GroupNone})

	plan := engine.Run(ViewState{})
	if plan.CardMinWidth != 180 {
		t.Errorf("500 results width = %d, want 180", plan.CardMinWidth)
	}
}

func TestRunGroupedByCollection(t *testing.T) {
	plan := testEngine().Run(ViewState{Group: GroupCollection})
	if plan.Mode != ModeGrouped {
		t.Fatalf("Mode = %q, want grouped", plan.Mode)
	}
	if len(plan.Groups) != 2 {
		t.Fatalf("got %d groups: %+v", len(plan.Groups), plan.Groups)
	}
	if plan.Groups[0].Label != "Machine Learning" || plan.Groups[1].Label != MiscCategory {
		t.Errorf("labels = %q, %q", plan.Groups[0].Label, plan.Groups[1].Label)
	}
	if len(plan.Groups[0].Items) != 2 {
		t.Errorf("Machine Learning group has %d items, want 2", len(plan.Groups[0].Items))
	}
}

func TestRunGroupNoneOverviewIsFlat(t *testing.T) {
	plan := testEngine().Run(ViewState{Group: GroupNone})
	if plan.Mode != ModeFlat {
		t.Errorf("Mode = %q, want flat when grouping disabled", plan.Mode)
	}
	if plan.Page != 1 {
		t.Errorf("Page = %d, want 1", plan.Page)
	}
}

func TestRunPageSizeClampedToMax(t *testing.T) {
	engine := NewEngine(testSnapshot(), Options{
		GroupBy: GroupNone, PageSize: 2, MaxPageSize: 3,
	})
	plan := engine.Run(ViewState{PageSize: 100})
	if len(plan.Items) != 3 {
		t.Errorf("oversized page size returned %d items, want 3", len(plan.Items))
	}
}

func TestRunDeterministic(t *testing.T) {
	engine := testEngine()
	view := ViewState{Query: "neural nets", Sort: SortSpec{Key: SortYear}}
	first := engine.Run(view)
	second := engine.Run(view)
	if first.ShownCount != second.ShownCount || first.Mode != second.Mode {
		t.Errorf("same view produced different plans: %+v vs %+v", first, second)
	}
}

func TestRecordTargets(t *testing.T) {
	engine := testEngine()

	targets, err := engine.RecordTargets("p-1", false)
	if err != nil {
		t.Fatalf("RecordTargets(p-1) error: %v", err)
	}
	if targets.Read != "https://files.test/read/d-1" {
		t.Errorf("read target = %q", targets.Read)
	}

	locked, err := engine.RecordTargets("p-4", false)
	if err != nil {
		t.Fatalf("RecordTargets(p-4) error: %v", err)
	}
	if locked.Read != "https://files.test/notice" {
		t.Errorf("locked read target = %q", locked.Read)
	}

	unlocked, err := engine.RecordTargets("p-4", true)
	if err != nil {
		t.Fatalf("RecordTargets(p-4, unlocked) error: %v", err)
	}
	if unlocked.Read != "https://files.test/read/d-4" {
		t.Errorf("unlocked read target = %q", unlocked.Read)
	}

	if _, err := engine.RecordTargets("missing", false); !errors.Is(err, pkgerrors.ErrRecordNotFound) {
		t.Errorf("unknown id error = %v, want ErrRecordNotFound", err)
	}
}

func TestLockedCount(t *testing.T) {
	if got := testEngine().LockedCount(); got != 1 {
		t.Errorf("LockedCount() = %d, want 1", got)
	}
}

func renderIDs(items []RenderItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
