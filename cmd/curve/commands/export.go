package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/export"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "저장된 커브 parquet 내보내기",
	Long: `저장된 최신 커브를 parquet 파일로 내보냅니다.
EXPORT_DIR에 쓰고, EXPORT_S3_BUCKET이 설정되면 S3에도 업로드합니다.

경로: <prefix>/<curve_type>/<date>/<run_id>.parquet

Example:
  go run ./cmd/curve export
  go run ./cmd/curve export --curve-type mixed --commodity power`,
	RunE: runExport,
}

var (
	exportCurveType string
	exportCommodity string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportCurveType, "curve-type", "all", "mixed, single, all")
	exportCmd.Flags().StringVar(&exportCommodity, "commodity", "", "상품 필터 (기본: 전체)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	curveTypes := []contracts.CurveType{contracts.CurveMixed, contracts.CurveSingle}
	if exportCurveType != "all" {
		curveType := contracts.CurveType(strings.ToLower(exportCurveType))
		if !curveType.Valid() {
			return fmt.Errorf("invalid curve type %q (valid: mixed, single, all)", exportCurveType)
		}
		curveTypes = []contracts.CurveType{curveType}
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	start := time.Now()
	for _, curveType := range curveTypes {
		rows, err := a.curves.ListCurves(ctx, contracts.CurveFilter{
			CurveType: curveType,
			Commodity: strings.ToLower(exportCommodity),
		})
		if err != nil {
			return fmt.Errorf("read %s curves: %w", curveType, err)
		}
		if len(rows) == 0 {
			PrintWarning(fmt.Sprintf("no %s curves stored", curveType))
			continue
		}

		locations, err := a.exporter.ExportCurves(ctx, curveType, latestTradeDate(rows), export.RunIDOf(rows), rows)
		if err != nil {
			return fmt.Errorf("export %s curves: %w", curveType, err)
		}
		PrintSuccess(fmt.Sprintf("%s: %d rows", curveType, len(rows)))
		PrintList(locations)
	}

	PrintJobCompletion("Export", time.Since(start).Seconds())
	return nil
}

// latestTradeDate returns the newest observation date among rows, or today when none is set
func latestTradeDate(rows []contracts.CurveRow) time.Time {
	var latest time.Time
	for i := range rows {
		if t := rows[i].TradeDate; t != nil && t.After(latest) {
			latest = *t
		}
	}
	if latest.IsZero() {
		latest = time.Now().UTC()
	}
	return latest
}
