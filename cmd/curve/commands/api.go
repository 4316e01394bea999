package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/api"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/api/handlers"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health               - Health check
  GET  /metrics              - Prometheus metrics
  GET  /api/curves           - 저장된 커브 조회
  GET  /api/curves/groups    - 커브 그룹 목록
  POST /api/curves/build     - 커브 생성 트리거
  GET  /api/fullyear         - 전체 연도 커브 조회

Example:
  go run ./cmd/curve api
  go run ./cmd/curve api --port 8090`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	server, closeRedis, err := newAPIServer(a)
	if err != nil {
		return err
	}
	defer closeRedis()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Run(ctx); err != nil {
		return err
	}
	a.log.Info("Server stopped")
	return nil
}

// newAPIServer wires the handlers over the app's repositories and pipeline
func newAPIServer(a *app) (*api.Server, func(), error) {
	redisClient, err := redis.New(a.cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	if !redisClient.Enabled() {
		a.log.Info("Redis disabled, curve reads are not cached")
	}

	cache := redis.NewCache(redisClient, "fwdcurve")
	limiter := redis.NewRateLimiter(redisClient, "fwdcurve")

	curveHandler := handlers.NewCurveHandler(a.curves, a.orchestrator, cache, limiter, a.cfg, a.log)
	fullYearHandler := handlers.NewFullYearHandler(a.fullYear, cache, a.cfg, a.log)

	router := api.NewRouter(curveHandler, fullYearHandler, a.log)
	closeRedis := func() {
		if err := redisClient.Close(); err != nil {
			a.log.WithError(err).Warn("Failed to close redis")
		}
	}
	return api.New(a.cfg, a.log, router), closeRedis, nil
}

// serveMetrics exposes /metrics on the metrics port until ctx is done
func serveMetrics(ctx context.Context, a *app) {
	if !a.cfg.MetricsEnabled {
		return
	}
	go func() {
		if err := api.ServeMetrics(ctx, a.cfg.MetricsPort, a.log); err != nil {
			a.log.WithError(err).Error("Metrics server failed")
		}
	}()
}
