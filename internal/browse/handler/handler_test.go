package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/papershelf/papershelf/internal/catalog"
	"github.com/papershelf/papershelf/internal/pipeline"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	snap := &catalog.Snapshot{
		Records: []catalog.Record{
			{ID: "p-1", Title: "Neural Nets", Tags: []string{"ml"}, Category: "AI", Year: 2023, SourceID: "d-1"},
			{ID: "p-2", Title: "Query Planning", Category: "Systems", Year: 2021, SourceID: "d-2"},
			{ID: "p-3", Title: "Restricted", Category: "AI", Year: 2020, SourceID: "d-3", Locked: true},
		},
		Topics: catalog.NewTopicSet([]catalog.Topic{
			catalog.NewTopic("ML", []string{"neural"}),
		}),
		Collections: []catalog.Collection{
			{ID: "ml-only", Label: "ML", Filter: catalog.CollectionFilter{AnyTags: []string{"ml"}}},
		},
		Blacklist: catalog.Blacklist{},
		Version:   "v-test",
	}
	engine := pipeline.NewEngine(snap, pipeline.Options{
		GroupBy:  pipeline.GroupCategory,
		PageSize: 48,
		Targets: pipeline.TargetResolver{
			ReadURL:      "https://files.test/read/%s",
			DownloadURL:  "https://files.test/dl/%s",
			NoticeTarget: "https://files.test/notice",
		},
	})
	return New(engine, nil, nil, nil, nil)
}

func newMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/browse", h.Browse)
	mux.HandleFunc("GET /api/v1/topics", h.Topics)
	mux.HandleFunc("GET /api/v1/collections", h.Collections)
	mux.HandleFunc("GET /api/v1/records/{id}/targets", h.RecordTargets)
	mux.HandleFunc("GET /api/v1/preferences/view", h.ViewPref)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	return mux
}

func doGet(t *testing.T, mux *http.ServeMux, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func TestBrowseOverview(t *testing.T) {
	mux := newMux(newTestHandler(t))
	rec := doGet(t, mux, "/api/v1/browse")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var plan pipeline.RenderPlan
	decodeBody(t, rec, &plan)
	if plan.Mode != pipeline.ModeGrouped {
		t.Errorf("Mode = %q, want grouped", plan.Mode)
	}
	if plan.TotalCount != 3 {
		t.Errorf("TotalCount = %d, want 3", plan.TotalCount)
	}
}

func TestBrowseQuery(t *testing.T) {
	mux := newMux(newTestHandler(t))
	rec := doGet(t, mux, "/api/v1/browse?q=neural")

	var plan pipeline.RenderPlan
	decodeBody(t, rec, &plan)
	if plan.Mode != pipeline.ModeFlat || plan.ShownCount != 1 {
		t.Errorf("plan = mode %q shown %d, want flat/1", plan.Mode, plan.ShownCount)
	}
	if plan.Items[0].ID != "p-1" {
		t.Errorf("matched %q, want p-1", plan.Items[0].ID)
	}
}

func TestBrowseInvalidParams(t *testing.T) {
	mux := newMux(newTestHandler(t))

	targets := []string{
		"/api/v1/browse?sort=bogus",
		"/api/v1/browse?dir=sideways",
		"/api/v1/browse?group=venue",
		"/api/v1/browse?page=0",
		"/api/v1/browse?page=abc",
		"/api/v1/browse?size=-1",
		"/api/v1/browse?density=dense",
	}
	for _, target := range targets {
		rec := doGet(t, mux, target)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
		var body map[string]string
		decodeBody(t, rec, &body)
		if !strings.Contains(body["error"], "invalid value") {
			t.Errorf("%s: error = %q", target, body["error"])
		}
	}
}

func TestBrowseSortAndDirection(t *testing.T) {
	mux := newMux(newTestHandler(t))
	rec := doGet(t, mux, "/api/v1/browse?q=planning&sort=year&dir=asc")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestTopics(t *testing.T) {
	mux := newMux(newTestHandler(t))
	rec := doGet(t, mux, "/api/v1/topics")

	var body struct {
		Topics []catalog.Topic `json:"topics"`
	}
	decodeBody(t, rec, &body)
	if len(body.Topics) != 1 || body.Topics[0].Label != "ML" {
		t.Errorf("topics = %+v", body.Topics)
	}
}

func TestCollections(t *testing.T) {
	mux := newMux(newTestHandler(t))
	rec := doGet(t, mux, "/api/v1/collections")

	var body struct {
		Collections []catalog.Collection `json:"collections"`
	}
	decodeBody(t, rec, &body)
	if len(body.Collections) != 1 || body.Collections[0].ID != "ml-only" {
		t.Errorf("collections = %+v", body.Collections)
	}
}

func TestRecordTargets(t *testing.T) {
	mux := newMux(newTestHandler(t))

	rec := doGet(t, mux, "/api/v1/records/p-1/targets")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var targets pipeline.Targets
	decodeBody(t, rec, &targets)
	if targets.Read != "https://files.test/read/d-1" {
		t.Errorf("read target = %q", targets.Read)
	}
}

func TestRecordTargetsLocked(t *testing.T) {
	mux := newMux(newTestHandler(t))

	rec := doGet(t, mux, "/api/v1/records/p-3/targets")
	var targets pipeline.Targets
	decodeBody(t, rec, &targets)
	if targets.Read != "https://files.test/notice" {
		t.Errorf("locked read target = %q", targets.Read)
	}

	rec = doGet(t, mux, "/api/v1/records/p-3/targets?unlocked=true")
	decodeBody(t, rec, &targets)
	if targets.Read != "https://files.test/read/d-3" {
		t.Errorf("unlocked read target = %q", targets.Read)
	}
}

func TestRecordTargetsNotFound(t *testing.T) {
	mux := newMux(newTestHandler(t))
	rec := doGet(t, mux, "/api/v1/records/missing/targets")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestViewPrefWithoutStore(t *testing.T) {
	mux := newMux(newTestHandler(t))
	rec := doGet(t, mux, "/api/v1/preferences/view")

	var body map[string]string
	decodeBody(t, rec, &body)
	if body["mode"] != "card" {
		t.Errorf("default view mode = %q, want card", body["mode"])
	}
}

func TestCacheStatsDisabled(t *testing.T) {
	mux := newMux(newTestHandler(t))
	rec := doGet(t, mux, "/api/v1/cache/stats")

	var body map[string]string
	decodeBody(t, rec, &body)
	if body["status"] != "disabled" {
		t.Errorf("cache stats without redis = %+v", body)
	}
}
