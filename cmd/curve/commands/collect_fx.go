package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/s0_data/collector"
)

// collectFxCmd represents the collect-fx command
var collectFxCmd = &cobra.Command{
	Use:   "collect-fx",
	Short: "환율 수집",
	Long: `설정된 통화쌍의 일별 환율을 월 단위로 나눠 수집하고 저장합니다.

통화쌍: FX_FROM_CURRENCY → FX_TO_CURRENCY (기본 USD → EUR)
연도: --year (기본: 목표 연도), 오늘 이후 구간은 수집하지 않음

Example:
  go run ./cmd/curve collect-fx
  go run ./cmd/curve collect-fx --year 2019 --from USD --to EUR`,
	RunE: runCollectFx,
}

var (
	collectFxYear int
	collectFxFrom string
	collectFxTo   string
)

func init() {
	rootCmd.AddCommand(collectFxCmd)

	collectFxCmd.Flags().IntVar(&collectFxYear, "year", 0, "수집 연도 (기본: 목표 연도)")
	collectFxCmd.Flags().StringVar(&collectFxFrom, "from", "", "기준 통화 (기본: FX_FROM_CURRENCY)")
	collectFxCmd.Flags().StringVar(&collectFxTo, "to", "", "대상 통화 (기본: FX_TO_CURRENCY)")
}

func runCollectFx(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	now := time.Now().UTC()
	year := collectFxYear
	if year == 0 {
		year = a.cfg.TargetYear(now)
	}
	from := strings.ToUpper(firstNonEmpty(collectFxFrom, a.cfg.FX.FromCurrency))
	to := strings.ToUpper(firstNonEmpty(collectFxTo, a.cfg.FX.ToCurrency))

	PrintJobHeader(JobMetadata{
		JobType:   "FX Collection",
		Tag:       "FX",
		Timestamp: now.Format(time.RFC3339),
		Details: map[string]string{
			"Pair": from + "/" + to,
			"Year": fmt.Sprintf("%d", year),
		},
	})

	results, err := a.newCollector().CollectYear(ctx, from, to, year, now, collector.Config{Workers: 2})
	for _, r := range results {
		if r.Error != nil {
			PrintError(fmt.Sprintf("%s: %v", r.Chunk, r.Error))
			continue
		}
		PrintKeyValue(r.Chunk, fmt.Sprintf("%d rates", r.RateCount), 8)
	}
	if err != nil {
		return fmt.Errorf("fx collection failed: %w", err)
	}

	PrintJobCompletion("FX collection", time.Since(now).Seconds())
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
