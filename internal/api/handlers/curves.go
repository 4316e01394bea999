package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/brain"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/config"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/logger"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/redis"
)

// BuildRunner runs one curve build
type BuildRunner interface {
	Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error)
}

// CurveHandler handles curve API endpoints
// ⭐ SSOT: 커브 API 핸들러는 이 구조체에서만
type CurveHandler struct {
	curves   contracts.CurveReader
	pipeline BuildRunner
	cache    *redis.Cache
	limiter  *redis.RateLimiter
	config   *config.Config
	logger   *logger.Logger
}

// NewCurveHandler creates a new curve handler
func NewCurveHandler(
	curves contracts.CurveReader,
	pipeline BuildRunner,
	cache *redis.Cache,
	limiter *redis.RateLimiter,
	cfg *config.Config,
	log *logger.Logger,
) *CurveHandler {
	return &CurveHandler{
		curves:   curves,
		pipeline: pipeline,
		cache:    cache,
		limiter:  limiter,
		config:   cfg,
		logger:   log,
	}
}

// ListCurves returns stored curve rows
// GET /api/curves?curve_type=mixed&commodity=power&market=de&exchange=eex&series=month&from=2019-01-01&to=2019-12-31
func (h *CurveHandler) ListCurves(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := contracts.CurveFilter{
		CurveType: contracts.CurveType(strings.ToLower(q.Get("curve_type"))),
		Commodity: strings.ToLower(q.Get("commodity")),
		Market:    strings.ToLower(q.Get("market")),
		Exchange:  strings.ToLower(q.Get("exchange")),
		Series:    strings.ToLower(q.Get("series")),
	}
	if filter.CurveType != "" && !filter.CurveType.Valid() {
		respondError(w, http.StatusBadRequest, "Invalid curve_type (valid: mixed, single)")
		return
	}

	var err error
	if filter.From, err = parseDate(q.Get("from")); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'from' date format (expected YYYY-MM-DD)")
		return
	}
	if filter.To, err = parseDate(q.Get("to")); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'to' date format (expected YYYY-MM-DD)")
		return
	}

	key := redis.CurveKey(string(filter.CurveType), filter.Commodity, filter.Market, filter.Exchange,
		q.Get("from"), q.Get("to"))
	if filter.Series != "" {
		key += ":" + filter.Series
	}

	var rows []contracts.CurveRow
	err = h.cache.GetOrSet(ctx, key, &rows, h.config.Curve.ReadCacheTTL, func() (interface{}, error) {
		return h.curves.ListCurves(ctx, filter)
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to list curves")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve curves")
		return
	}
	if rows == nil {
		rows = []contracts.CurveRow{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(rows),
		"rows":  rows,
	})
}

// ListGroups returns the stored contract groups
// GET /api/curves/groups?curve_type=mixed
func (h *CurveHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	curveType := contracts.CurveType(strings.ToLower(r.URL.Query().Get("curve_type")))
	if curveType == "" {
		curveType = contracts.CurveMixed
	}
	if !curveType.Valid() {
		respondError(w, http.StatusBadRequest, "Invalid curve_type (valid: mixed, single)")
		return
	}

	groups, err := h.curves.ListGroups(r.Context(), curveType)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list curve groups")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve curve groups")
		return
	}
	if groups == nil {
		groups = []contracts.GroupKey{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"curve_type": curveType,
		"groups":     groups,
	})
}

// BuildRequest represents a manual curve build request
type BuildRequest struct {
	TradeDate string `json:"trade_date"` // Optional: YYYY-MM-DD, default last business day
	DryRun    bool   `json:"dry_run"`
	Export    bool   `json:"export"`
}

// Build triggers a curve build
// POST /api/curves/build
func (h *CurveHandler) Build(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tradeDate, err := parseDate(req.TradeDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'trade_date' format (expected YYYY-MM-DD)")
		return
	}

	allowed, _, err := h.limiter.Allow(ctx, redis.BuildTriggerRateLimit)
	if err != nil {
		h.logger.WithError(err).Warn("Rate limiter unavailable, allowing build")
	} else if !allowed {
		respondError(w, http.StatusTooManyRequests, "Too many build requests, try again later")
		return
	}

	now := time.Now().UTC()
	result, err := h.pipeline.Run(ctx, brain.RunConfig{
		Now:       now,
		TradeDate: tradeDate,
		RefYear:   h.config.TargetYear(now),
		DryRun:    req.DryRun,
		Export:    req.Export,
	})
	if errors.Is(err, brain.ErrBuildRunning) {
		respondError(w, http.StatusConflict, "A curve build is already running")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Curve build failed")
		respondError(w, http.StatusInternalServerError, "Curve build failed: "+err.Error())
		return
	}

	if !req.DryRun {
		if _, err := h.cache.DeletePrefix(ctx, "curve:"); err != nil {
			h.logger.WithError(err).Warn("Failed to invalidate curve cache")
		}
	}

	respondJSON(w, http.StatusOK, result)
}
