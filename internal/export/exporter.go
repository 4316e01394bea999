package export

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/logger"
)

// Exporter writes curve snapshots as parquet to every configured store
// ⭐ SSOT: parquet 내보내기는 여기서만
type Exporter struct {
	stores      []ObjectStore
	prefix      string
	compression string
	logger      *logger.Logger
}

// NewExporter creates an exporter; stores are written in order
func NewExporter(prefix, compression string, log *logger.Logger, stores ...ObjectStore) *Exporter {
	return &Exporter{
		stores:      stores,
		prefix:      prefix,
		compression: compression,
		logger:      log.WithField("module", "export"),
	}
}

// CurveKey returns <prefix>/<curve_type>/<date>/<run_id>.parquet
func CurveKey(prefix string, curveType contracts.CurveType, date time.Time, runID uuid.UUID) string {
	return path.Join(prefix, string(curveType), date.Format(contracts.DateLayout), runID.String()+".parquet")
}

// FullYearKey returns <prefix>/fullyear/<year>/<commodity>_<market>.parquet
func FullYearKey(prefix string, year int, commodity, market string) string {
	return path.Join(prefix, "fullyear", fmt.Sprint(year), commodity+"_"+market+".parquet")
}

// RunIDOf returns the run id shared by all rows, or a fresh id when rows come from several runs
func RunIDOf(rows []contracts.CurveRow) uuid.UUID {
	if len(rows) == 0 {
		return uuid.New()
	}
	id := rows[0].RunID
	for _, r := range rows[1:] {
		if r.RunID != id {
			return uuid.New()
		}
	}
	return id
}

// ExportCurves encodes rows of one curve type and writes them to every store
func (e *Exporter) ExportCurves(ctx context.Context, curveType contracts.CurveType, date time.Time, runID uuid.UUID, rows []contracts.CurveRow) ([]string, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	data, err := EncodeCurves(rows, e.compression)
	if err != nil {
		return nil, fmt.Errorf("encode %s curves: %w", curveType, err)
	}
	return e.put(ctx, CurveKey(e.prefix, curveType, date, runID), data, len(rows))
}

// ExportFullYear encodes one merged full-year curve and writes it to every store
func (e *Exporter) ExportFullYear(ctx context.Context, year int, commodity, market string, rows []contracts.FullYearRow) ([]string, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	data, err := EncodeFullYear(rows, e.compression)
	if err != nil {
		return nil, fmt.Errorf("encode full-year %s/%s: %w", commodity, market, err)
	}
	return e.put(ctx, FullYearKey(e.prefix, year, commodity, market), data, len(rows))
}

func (e *Exporter) put(ctx context.Context, key string, data []byte, rows int) ([]string, error) {
	var locations []string
	var errs []error
	for _, store := range e.stores {
		loc, err := store.Put(ctx, key, data)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		locations = append(locations, loc)
		e.logger.WithFields(map[string]interface{}{
			"location": loc,
			"rows":     rows,
			"bytes":    len(data),
		}).Info("Exported parquet")
	}
	return locations, errors.Join(errs...)
}
