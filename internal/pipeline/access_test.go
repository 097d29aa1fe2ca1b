package pipeline

import (
	"testing"

	"github.com/papershelf/papershelf/internal/catalog"
)

func TestIsLocked(t *testing.T) {
	blacklist := catalog.Blacklist{"d-bad": {}}

	tests := []struct {
		name string
		rec  catalog.Record
		want bool
	}{
		{"unlocked clean record", catalog.Record{SourceID: "d-ok"}, false},
		{"own locked flag", catalog.Record{SourceID: "d-ok", Locked: true}, true},
		{"blacklisted locator", catalog.Record{SourceID: "d-bad"}, true},
		{"both flag and blacklist", catalog.Record{SourceID: "d-bad", Locked: true}, true},
		{"empty locator never blacklisted", catalog.Record{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLocked(tt.rec, blacklist); got != tt.want {
				t.Errorf("IsLocked() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBlacklistGrowthIsMonotonic(t *testing.T) {
	rec := catalog.Record{SourceID: "d-1"}
	blacklist := catalog.Blacklist{}

	if IsLocked(rec, blacklist) {
		t.Fatal("record locked before any blacklist entry")
	}
	blacklist.Add("d-1")
	if !IsLocked(rec, blacklist) {
		t.Fatal("record not locked after blacklist entry added")
	}
	blacklist.Add("d-2")
	if !IsLocked(rec, blacklist) {
		t.Error("adding an unrelated entry unlocked the record")
	}
}

func TestTargetResolver(t *testing.T) {
	resolver := TargetResolver{
		ReadURL:      "https://example.test/read/%s",
		DownloadURL:  "https://example.test/dl/%s",
		NoticeTarget: "https://example.test/notice",
	}
	rec := catalog.Record{SourceID: "d-1"}

	tests := []struct {
		name             string
		resolver         TargetResolver
		rec              catalog.Record
		locked, unlocked bool
		want             Targets
	}{
		{
			name: "unlocked record resolves both templates",
			resolver: resolver, rec: rec,
			want: Targets{Read: "https://example.test/read/d-1", Download: "https://example.test/dl/d-1"},
		},
		{
			name: "locked record yields the notice target only",
			resolver: resolver, rec: rec, locked: true,
			want: Targets{Read: "https://example.test/notice", Download: "https://example.test/notice"},
		},
		{
			name: "locked without notice target yields empty",
			resolver: TargetResolver{ReadURL: "r/%s", DownloadURL: "d/%s"}, rec: rec, locked: true,
			want: Targets{},
		},
		{
			name: "unlock flag reveals the real targets",
			resolver: resolver, rec: rec, locked: true, unlocked: true,
			want: Targets{Read: "https://example.test/read/d-1", Download: "https://example.test/dl/d-1"},
		},
		{
			name: "missing locator yields empty targets",
			resolver: resolver, rec: catalog.Record{},
			want: Targets{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.resolver.Resolve(tt.rec, tt.locked, tt.unlocked)
			if got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
