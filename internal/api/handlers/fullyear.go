package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/config"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/logger"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/redis"
)

// FullYearHandler serves merged full-year curves
type FullYearHandler struct {
	reader contracts.FullYearReader
	cache  *redis.Cache
	config *config.Config
	logger *logger.Logger
}

// NewFullYearHandler creates a new full-year handler
func NewFullYearHandler(reader contracts.FullYearReader, cache *redis.Cache, cfg *config.Config, log *logger.Logger) *FullYearHandler {
	return &FullYearHandler{
		reader: reader,
		cache:  cache,
		config: cfg,
		logger: log,
	}
}

// GetFullYear returns one merged curve
// GET /api/fullyear?commodity=coal&market=api2&year=2019
func (h *FullYearHandler) GetFullYear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	commodity := strings.ToLower(q.Get("commodity"))
	market := strings.ToLower(q.Get("market"))
	if commodity == "" || market == "" {
		respondError(w, http.StatusBadRequest, "commodity and market are required")
		return
	}

	year := h.config.TargetYear(time.Now().UTC())
	if v := q.Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1900 || parsed > 9999 {
			respondError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = parsed
	}

	var rows []contracts.FullYearRow
	err := h.cache.GetOrSet(ctx, redis.FullYearKey(commodity, market, year), &rows, h.config.Curve.ReadCacheTTL, func() (interface{}, error) {
		return h.reader.ListFullYear(ctx, commodity, market, year)
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to get full-year curve")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve full-year curve")
		return
	}
	if len(rows) == 0 {
		respondError(w, http.StatusNotFound, "No full-year curve for "+commodity+"/"+market)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"commodity": commodity,
		"market":    market,
		"year":      year,
		"rows":      rows,
	})
}
