// Package handler exposes the browse pipeline over HTTP. It translates
// query parameters into an explicit pipeline.ViewState, runs the engine
// (through the plan cache when available), and writes the render plan as
// JSON for the static front-end.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/papershelf/papershelf/internal/analytics"
	"github.com/papershelf/papershelf/internal/browse/cache"
	"github.com/papershelf/papershelf/internal/browse/prefs"
	"github.com/papershelf/papershelf/internal/pipeline"
	pkgerrors "github.com/papershelf/papershelf/pkg/errors"
	"github.com/papershelf/papershelf/pkg/logger"
	"github.com/papershelf/papershelf/pkg/metrics"
	"github.com/papershelf/papershelf/pkg/middleware"
)

var validSortKeys = map[pipeline.SortKey]bool{
	pipeline.SortNone:     true,
	pipeline.SortTitle:    true,
	pipeline.SortYear:     true,
	pipeline.SortDate:     true,
	pipeline.SortCategory: true,
	pipeline.SortTags:     true,
	pipeline.SortPages:    true,
	pipeline.SortWait:     true,
	pipeline.SortLocked:   true,
}

type Handler struct {
	engine    *pipeline.Engine
	cache     *cache.PlanCache
	prefs     *prefs.Store
	collector *analytics.Collector
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func New(
	engine *pipeline.Engine,
	planCache *cache.PlanCache,
	prefStore *prefs.Store,
	collector *analytics.Collector,
	m *metrics.Metrics,
) *Handler {
	return &Handler{
		engine:    engine,
		cache:     planCache,
		prefs:     prefStore,
		collector: collector,
		metrics:   m,
		logger:    slog.Default().With("component", "browse-handler"),
	}
}

// Browse runs the full pipeline for the view state encoded in the query
// string and returns the render plan.
func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	view, err := parseViewState(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var plan *pipeline.RenderPlan
	cacheHit := false
	if h.cache != nil {
		plan, cacheHit = h.cache.GetOrCompute(ctx, view, func() *pipeline.RenderPlan {
			return h.engine.Run(view)
		})
	} else {
		plan = h.engine.Run(view)
	}

	latency := time.Since(start)
	log.Info("browse completed",
		"query", view.Query,
		"topics", len(view.Topics),
		"mode", plan.Mode,
		"shown", plan.ShownCount,
		"total", plan.TotalCount,
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)

	if h.metrics != nil {
		resultType := plan.Mode
		if plan.NoMatches {
			resultType = "zero_result"
		}
		h.metrics.BrowseRequestsTotal.WithLabelValues(resultType).Inc()
		cacheStatus := "miss"
		if cacheHit {
			cacheStatus = "hit"
		}
		h.metrics.BrowseLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
		h.metrics.BrowseResultsCount.Observe(float64(plan.ShownCount))
		if h.cache != nil {
			if cacheHit {
				h.metrics.CacheHitsTotal.Inc()
			} else {
				h.metrics.CacheMissesTotal.Inc()
			}
		}
	}

	if h.collector != nil {
		eventType := analytics.EventCacheMiss
		if cacheHit {
			eventType = analytics.EventCacheHit
		}
		h.collector.Track(analytics.BrowseEvent{
			Type:       eventType,
			Query:      view.Query,
			Topics:     view.Topics,
			Tags:       view.Tags,
			Collection: view.Collection,
			Mode:       plan.Mode,
			ShownCount: plan.ShownCount,
			TotalCount: plan.TotalCount,
			LatencyMs:  latency.Milliseconds(),
			CacheHit:   cacheHit,
			Timestamp:  time.Now().UTC(),
			RequestID:  middleware.GetRequestID(ctx),
		})
	}

	h.writeJSON(w, http.StatusOK, plan)
}

// Topics lists the selectable topic chips.
func (h *Handler) Topics(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"topics": snap.Topics.Topics,
	})
}

// Collections lists the preset collection filters.
func (h *Handler) Collections(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"collections": snap.Collections,
	})
}

// RecordTargets resolves the action targets for one record. The unlocked
// parameter is only honoured when set by the credential-check collaborator
// in front of this service.
func (h *Handler) RecordTargets(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	unlocked := r.URL.Query().Get("unlocked") == "true"

	targets, err := h.engine.RecordTargets(id, unlocked)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrRecordNotFound) {
			h.writeError(w, http.StatusNotFound, "record not found")
			return
		}
		h.logger.Error("target resolution failed", "id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "target resolution failed")
		return
	}
	h.writeJSON(w, http.StatusOK, targets)
}

// ViewPref returns the caller's persisted view mode.
func (h *Handler) ViewPref(w http.ResponseWriter, r *http.Request) {
	if h.prefs == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"mode": prefs.ViewCard})
		return
	}
	mode, err := h.prefs.ViewMode(r.Context(), r.URL.Query().Get("client"))
	if err != nil {
		h.logger.Warn("view preference read failed", "error", err)
		mode = prefs.ViewCard
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"mode": mode})
}

// SetViewPref persists the caller's view mode.
func (h *Handler) SetViewPref(w http.ResponseWriter, r *http.Request) {
	if h.prefs == nil {
		h.writeError(w, http.StatusServiceUnavailable, "preferences are disabled")
		return
	}
	var body struct {
		Client string `json:"client"`
		Mode   string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.prefs.SetViewMode(r.Context(), body.Client, body.Mode); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"mode": body.Mode})
}

// CacheStats reports plan-cache hit rates.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": strconv.FormatFloat(hitRate, 'f', 1, 64) + "%",
	})
}

// CacheInvalidate drops all cached render plans.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func parseViewState(r *http.Request) (pipeline.ViewState, error) {
	q := r.URL.Query()
	view := pipeline.ViewState{
		Query:      q.Get("q"),
		Topics:     q["topic"],
		Tags:       q["tag"],
		Collection: q.Get("collection"),
	}

	key := pipeline.SortKey(q.Get("sort"))
	if !validSortKeys[key] {
		return view, errInvalidParam("sort", q.Get("sort"))
	}
	dir := pipeline.DefaultDirection(key)
	switch q.Get("dir") {
	case "":
	case "asc":
		dir = pipeline.Ascending
	case "desc":
		dir = pipeline.Descending
	default:
		return view, errInvalidParam("dir", q.Get("dir"))
	}
	view.Sort = pipeline.SortSpec{Key: key, Dir: dir}

	switch mode := pipeline.GroupMode(q.Get("group")); mode {
	case "", pipeline.GroupCategory, pipeline.GroupSize, pipeline.GroupCollection, pipeline.GroupNone:
		view.Group = mode
	default:
		return view, errInvalidParam("group", q.Get("group"))
	}

	if pageStr := q.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return view, errInvalidParam("page", pageStr)
		}
		view.Page = page
	}
	if sizeStr := q.Get("size"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil || size < 1 {
			return view, errInvalidParam("size", sizeStr)
		}
		view.PageSize = size
	}

	switch mode := pipeline.DensityMode(q.Get("density")); mode {
	case "", pipeline.DensityNormal, pipeline.DensityCompact:
		view.Density = mode
	default:
		return view, errInvalidParam("density", q.Get("density"))
	}
	return view, nil
}

type paramError struct {
	name, value string
}

func (e paramError) Error() string {
	return "invalid value " + strconv.Quote(e.value) + " for parameter " + strconv.Quote(e.name)
}

func errInvalidParam(name, value string) error {
	return paramError{name: name, value: value}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
