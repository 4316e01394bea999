package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/brain"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "포워드 커브 생성 (mixed + single)",
	Long: `최근 영업일 호가로 mixed/single 커브를 만들고 저장합니다.

단계:
- S0:Load     호가 조회 + 정제
- S1:Curves   커브 조립
- S0:Quality  품질 검증 (기준 미달 시 경고)
- Persist     커브 + 품질 스냅샷 저장
- Export      parquet 내보내기 (--export)

Example:
  go run ./cmd/curve build
  go run ./cmd/curve build --trade-date 2019-01-04
  go run ./cmd/curve build --dry-run
  go run ./cmd/curve build --export`,
	RunE: runBuild,
}

var (
	buildTradeDate string
	buildDryRun    bool
	buildExport    bool
)

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&buildTradeDate, "trade-date", "", "호가 관측일 (YYYY-MM-DD, 기본: 직전 영업일)")
	buildCmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "생성 + 검증만 (저장 X)")
	buildCmd.Flags().BoolVar(&buildExport, "export", false, "저장 후 parquet 내보내기")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	runConfig := brain.RunConfig{
		DryRun: buildDryRun,
		Export: buildExport,
	}
	if buildTradeDate != "" {
		tradeDate, err := time.Parse(contracts.DateLayout, buildTradeDate)
		if err != nil {
			return fmt.Errorf("invalid trade date: %w", err)
		}
		runConfig.TradeDate = &tradeDate
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	runConfig.Now = time.Now().UTC()
	runConfig.RefYear = a.cfg.TargetYear(runConfig.Now)

	PrintJobHeader(JobMetadata{
		JobType:   "Curve Build",
		Tag:       "Build",
		Timestamp: runConfig.Now.Format(time.RFC3339),
		Details: map[string]string{
			"Ref Year": fmt.Sprintf("%d", runConfig.RefYear),
			"Dry Run":  fmt.Sprintf("%v", runConfig.DryRun),
		},
	})

	result, err := a.orchestrator.Run(ctx, runConfig)
	if result != nil {
		printRunResult(result)
	}
	if err != nil {
		return fmt.Errorf("curve build failed: %w", err)
	}

	PrintJobCompletion("Curve build", result.Duration.Seconds())
	return nil
}

func printRunResult(result *brain.RunResult) {
	PrintSeparator()
	PrintKeyValue("Run ID", result.RunID, 14)
	if !result.TradeDate.IsZero() {
		PrintKeyValue("Trade Date", result.TradeDate.Format(contracts.DateLayout), 14)
	}
	PrintKeyValue("Stages", strings.Join(result.CompletedStages, " → "), 14)
	PrintKeyValue("Quotes", fmt.Sprintf("%d in, %d kept", result.Clean.Input, result.Clean.Kept), 14)
	for reason, n := range result.Clean.Dropped {
		PrintKeyValue("  dropped", fmt.Sprintf("%s: %d", reason, n), 14)
	}
	PrintKeyValue("Mixed", fmt.Sprintf("%d series", result.MixedSeries), 14)
	PrintKeyValue("Single", fmt.Sprintf("%d series", result.SingleSeries), 14)

	if q := result.Quality; q != nil {
		PrintKeyValue("Quality", fmt.Sprintf("%.3f (passed: %v)", q.QualityScore, q.Passed), 14)
		for _, issue := range q.Issues {
			PrintWarning(issue)
		}
	}

	PrintKeyValue("Rows Saved", fmt.Sprintf("%d", result.RowsSaved), 14)
	if len(result.Exported) > 0 {
		PrintList(result.Exported)
	}
}
