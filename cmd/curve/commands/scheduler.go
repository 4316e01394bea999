package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/scheduler"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행
  status  - 작업 스케줄 + 다음 실행 시각

Example:
  go run ./cmd/curve scheduler start
  go run ./cmd/curve scheduler list
  go run ./cmd/curve scheduler run curve_build`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업 (평일):
- fx_collection:  06:30 (목표 연도 환율 수집)
- curve_build:    07:00 (커브 생성, CURVE_BUILD_SCHEDULE)
- fullyear_merge: 07:30 (전체 연도 커브 병합)

실패한 작업은 최대 3회 시도합니다.
METRICS_ENABLED=true면 METRICS_PORT에서 /metrics를 제공합니다.
스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행 (완료까지 대기)",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "작업 스케줄 + 다음 실행 시각",
		RunE:  showStatus,
	}

	schedulerExport bool
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)

	schedulerCmd.PersistentFlags().BoolVar(&schedulerExport, "export", false, "curve_build 후 parquet 내보내기")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Forward Curve Scheduler ===")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	serveMetrics(ctx, a)
	sched.Start()

	PrintSuccess("Scheduler started")
	printJobTable(sched)
	fmt.Println("\nPress Ctrl+C to stop")

	<-ctx.Done()

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	printStats(sched)
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Println("Registered jobs:")
	PrintList(sched.GetAllJobs())
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]
	fmt.Printf("Running job: %s\n", jobName)

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	result, err := sched.RunNow(cmd.Context(), jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("job %s failed after %d attempts: %s", jobName, result.Attempts, result.Error)
	}

	PrintJobCompletion(jobName, result.Duration.Seconds())
	return nil
}

func showStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	// cron computes next runs only after Start
	sched.Start()
	defer sched.Stop()

	printJobTable(sched)
	return nil
}

func printJobTable(sched *scheduler.Scheduler) {
	widths := []int{16, 18, 20}
	fmt.Println()
	PrintTableHeader([]string{"JOB", "SCHEDULE", "NEXT RUN"}, widths)

	stats := sched.GetJobStats()
	for _, name := range sched.GetAllJobs() {
		next := "-"
		if t, err := sched.NextRun(name); err == nil && !t.IsZero() {
			next = t.Format("2006-01-02 15:04")
		}
		PrintTableRow([]string{name, stats[name].Schedule, next}, widths)
	}
}

func printStats(sched *scheduler.Scheduler) {
	for _, name := range sched.GetAllJobs() {
		stat := sched.GetJobStats()[name]
		if stat.TotalRuns == 0 {
			continue
		}
		fmt.Printf("📊 %s\n", name)
		PrintKeyValue("Total Runs", fmt.Sprintf("%d", stat.TotalRuns), 12)
		PrintKeyValue("Success", fmt.Sprintf("%d (%.1f%%)", stat.SuccessCount, stat.SuccessRate*100), 12)
		PrintKeyValue("Failures", fmt.Sprintf("%d", stat.FailureCount), 12)
		if stat.LastRun != nil {
			PrintKeyValue("Last Run", stat.LastRun.Format(time.DateTime), 12)
		}
	}
}

// initScheduler registers the curve jobs
func initScheduler(a *app) (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.log, scheduler.Options{})

	for _, job := range []scheduler.Job{
		jobs.NewFxCollectionJob(a.newCollector(), a.cfg, a.log),
		jobs.NewCurveBuildJob(a.orchestrator, a.cfg, schedulerExport, a.log),
		jobs.NewFullYearJob(a.orchestrator, a.log),
	} {
		if err := sched.AddJob(job); err != nil {
			return nil, fmt.Errorf("add job %s: %w", job.Name(), err)
		}
	}

	return sched, nil
}
