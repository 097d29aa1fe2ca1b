package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeTopicsObjectShape(t *testing.T) {
	payload := `[{"label":"ML","any":["Machine Learning","neural net"]},{"label":"Systems","any":["operating system"]}]`
	set := DecodeTopics([]byte(payload))

	want := []Topic{
		{Label: "ML", Terms: []string{"machine learning", "neural net"}},
		{Label: "Systems", Terms: []string{"operating system"}},
	}
	if diff := cmp.Diff(want, set.Topics); diff != "" {
		t.Errorf("topics mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeTopicsFlatShape(t *testing.T) {
	set := DecodeTopics([]byte(`["Robotics","NLP"]`))

	want := []Topic{
		{Label: "Robotics", Terms: []string{"robotics"}},
		{Label: "NLP", Terms: []string{"nlp"}},
	}
	if diff := cmp.Diff(want, set.Topics); diff != "" {
		t.Errorf("topics mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeTopicsMixedShape(t *testing.T) {
	set := DecodeTopics([]byte(`["Flat",{"label":"Deep","any":["deep learning"]}]`))
	if set.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", set.Len())
	}
	flat, ok := set.Lookup("Flat")
	if !ok || len(flat.Terms) != 1 || flat.Terms[0] != "flat" {
		t.Errorf("flat topic = %+v, ok=%v", flat, ok)
	}
}

func TestTopicSetDuplicateLabelsDropped(t *testing.T) {
	set := DecodeTopics([]byte(`[{"label":"ML","any":["first"]},{"label":"ML","any":["second"]}]`))
	if set.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", set.Len())
	}
	got, _ := set.Lookup("ML")
	if got.Terms[0] != "first" {
		t.Errorf("duplicate label kept the later definition: %+v", got)
	}
}

func TestTopicSetLookupUnknownLabel(t *testing.T) {
	set := DecodeTopics([]byte(`["ML"]`))
	if _, ok := set.Lookup("Gone"); ok {
		t.Error("Lookup of unknown label reported ok")
	}
}

func TestDecodeTopicsMalformed(t *testing.T) {
	if set := DecodeTopics([]byte(`{"label":"ML"}`)); set.Len() != 0 {
		t.Errorf("non-array payload produced %d topics, want 0", set.Len())
	}
	if set := DecodeTopics(nil); set.Len() != 0 {
		t.Errorf("nil payload produced %d topics, want 0", set.Len())
	}
}

func TestCollectionMatches(t *testing.T) {
	rec := Record{Tags: []string{"ml", "benchmark"}}

	tests := []struct {
		name   string
		filter CollectionFilter
		want   bool
	}{
		{"empty filter matches all", CollectionFilter{}, true},
		{"anyTags one present", CollectionFilter{AnyTags: []string{"ml", "vision"}}, true},
		{"anyTags none present", CollectionFilter{AnyTags: []string{"vision"}}, false},
		{"allTags all present", CollectionFilter{AllTags: []string{"ml", "benchmark"}}, true},
		{"allTags one missing", CollectionFilter{AllTags: []string{"ml", "vision"}}, false},
		{"both clauses must hold", CollectionFilter{AnyTags: []string{"ml"}, AllTags: []string{"vision"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Collection{ID: "c", Filter: tt.filter}
			if got := c.Matches(rec); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeBlacklist(t *testing.T) {
	b := DecodeBlacklist([]byte(`["d-1","d-2"]`))
	if !b.Contains("d-1") || !b.Contains("d-2") {
		t.Error("decoded blacklist missing entries")
	}
	if b.Contains("d-3") {
		t.Error("Contains reported an absent locator")
	}
	if b.Contains("") {
		t.Error("empty locator must never be blacklisted")
	}

	if got := DecodeBlacklist([]byte(`{"bad":true}`)); len(got) != 0 {
		t.Errorf("malformed payload produced %d entries, want 0", len(got))
	}
}
