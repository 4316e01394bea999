package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// fullyearCmd represents the fullyear command
var fullyearCmd = &cobra.Command{
	Use:   "fullyear",
	Short: "목표 연도 전체 커브 병합",
	Long: `피드별로 과거 가격과 mixed 포워드 커브를 병합하고
단위/통화를 변환해 목표 연도의 일별 전체 커브를 저장합니다.

피드 정의: FEEDS_PATH (기본 configs/feeds.yaml, 없으면 내장 기본값)

Example:
  go run ./cmd/curve fullyear
  go run ./cmd/curve fullyear --dry-run
  go run ./cmd/curve fullyear --export`,
	RunE: runFullYear,
}

var (
	fullyearDryRun bool
	fullyearExport bool
)

func init() {
	rootCmd.AddCommand(fullyearCmd)

	fullyearCmd.Flags().BoolVar(&fullyearDryRun, "dry-run", false, "병합만 (저장 X)")
	fullyearCmd.Flags().BoolVar(&fullyearExport, "export", false, "저장 후 피드별 parquet 내보내기")
}

func runFullYear(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	now := time.Now().UTC()
	year := a.cfg.TargetYear(now)

	PrintJobHeader(JobMetadata{
		JobType:   "Full-Year Merge",
		Tag:       "FullYear",
		Timestamp: now.Format(time.RFC3339),
		Details: map[string]string{
			"Year":     fmt.Sprintf("%d", year),
			"Feeds":    fmt.Sprintf("%d", len(a.feeds.Feeds)),
			"Currency": a.cfg.Curve.TargetCurrency,
		},
	})

	result, err := a.orchestrator.RunFullYear(ctx, fullyearDryRun)
	if err != nil {
		return fmt.Errorf("full-year merge failed: %w", err)
	}
	PrintKeyValue("Rows Saved", fmt.Sprintf("%d", result.RowsSaved), 12)

	if fullyearExport && !fullyearDryRun {
		for i := range a.feeds.Feeds {
			feed := &a.feeds.Feeds[i]
			rows, err := a.fullYear.ListFullYear(ctx, feed.Commodity, feed.Market, year)
			if err != nil {
				return fmt.Errorf("read %s/%s: %w", feed.Commodity, feed.Market, err)
			}
			if len(rows) == 0 {
				PrintWarning(fmt.Sprintf("%s/%s: no rows to export", feed.Commodity, feed.Market))
				continue
			}
			locations, err := a.exporter.ExportFullYear(ctx, year, feed.Commodity, feed.Market, rows)
			if err != nil {
				return fmt.Errorf("export %s/%s: %w", feed.Commodity, feed.Market, err)
			}
			PrintList(locations)
		}
	}

	PrintJobCompletion("Full-year merge", result.Duration.Seconds())
	return nil
}
