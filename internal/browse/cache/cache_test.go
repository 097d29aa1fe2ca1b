package cache

import (
	"testing"

	"github.com/papershelf/papershelf/internal/pipeline"
	"github.com/papershelf/papershelf/pkg/config"
)

func newKeyCache(version string) *PlanCache {
	return New(nil, config.RedisConfig{}, version)
}

func TestBuildKeySelectionOrderIndependent(t *testing.T) {
	c := newKeyCache("v1")

	a := c.buildKey(pipeline.ViewState{Topics: []string{"ML", "Systems"}, Tags: []string{"x", "y"}})
	b := c.buildKey(pipeline.ViewState{Topics: []string{"Systems", "ML"}, Tags: []string{"y", "x"}})
	if a != b {
		t.Error("selection order changed the cache key")
	}
}

func TestBuildKeyQueryNormalization(t *testing.T) {
	c := newKeyCache("v1")

	a := c.buildKey(pipeline.ViewState{Query: "  Neural "})
	b := c.buildKey(pipeline.ViewState{Query: "neural"})
	if a != b {
		t.Error("query whitespace or case changed the cache key")
	}
}

func TestBuildKeyDistinguishesViewStates(t *testing.T) {
	c := newKeyCache("v1")
	base := pipeline.ViewState{Query: "neural"}

	variants := []pipeline.ViewState{
		{Query: "nets"},
		{Query: "neural", Page: 2},
		{Query: "neural", Sort: pipeline.SortSpec{Key: pipeline.SortYear, Dir: pipeline.Descending}},
		{Query: "neural", Collection: "ml-only"},
		{Query: "neural", Density: pipeline.DensityCompact},
	}

	baseKey := c.buildKey(base)
	for i, v := range variants {
		if c.buildKey(v) == baseKey {
			t.Errorf("variant %d collided with the base key", i)
		}
	}
}

func TestBuildKeyChangesWithSnapshotVersion(t *testing.T) {
	view := pipeline.ViewState{Query: "neural"}
	if newKeyCache("v1").buildKey(view) == newKeyCache("v2").buildKey(view) {
		t.Error("a new snapshot version must produce new cache keys")
	}
}
