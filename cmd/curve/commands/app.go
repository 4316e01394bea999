package commands

import (
	"context"
	"fmt"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/brain"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/export"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/external/fxrate"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/feedconfig"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/s0_data"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/s0_data/collector"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/s0_data/quality"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/s1_curve"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/s2_fullyear"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/config"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/database"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/httputil"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/logger"
)

// app holds the wired components shared by all commands
type app struct {
	cfg *config.Config
	log *logger.Logger
	db  *database.DB

	quotes    *s0_data.Repository
	curves    *s0_data.CurveRepository
	fullYear  *s0_data.FullYearRepository
	fx        *s0_data.FxRepository
	snapshots *quality.Repository

	feeds        *feedconfig.Config
	exporter     *export.Exporter
	orchestrator *brain.Orchestrator
}

// loadConfig loads configuration and applies global flags
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, logger.New(cfg), nil
}

// newApp connects to the database and wires the pipeline
// ⭐ SSOT: 의존성 조립은 이 함수에서만
func newApp(ctx context.Context) (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	feeds, err := feedconfig.LoadOrDefault(cfg.FeedsPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load feeds: %w", err)
	}

	exporter, err := newExporter(ctx, cfg, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		log:       log,
		db:        db,
		quotes:    s0_data.NewRepository(db.Pool),
		curves:    s0_data.NewCurveRepository(db.Pool),
		fullYear:  s0_data.NewFullYearRepository(db.Pool),
		fx:        s0_data.NewFxRepository(db.Pool, "fx-feed"),
		snapshots: quality.NewRepository(db.Pool),
		feeds:     feeds,
		exporter:  exporter,
	}

	assembler := s1_curve.NewAssembler(s1_curve.Config{
		Precedence: s1_curve.PrecedenceConfig{
			YearSupersedesActive: cfg.Curve.YearSupersedesActive,
		},
		Workers: cfg.Curve.Workers,
	}, log)

	gateConfig := quality.DefaultConfig()
	gateConfig.MinScore = cfg.Curve.MinGateScore

	merger := s2_fullyear.NewBuilder(
		s0_data.NewHistoricalRepository(db.Pool),
		a.curves,
		a.fx,
		s2_fullyear.Config{
			TargetYear:     cfg.Curve.TargetYear,
			TargetCurrency: cfg.Curve.TargetCurrency,
		},
		log,
	)

	a.orchestrator = brain.NewOrchestrator(brain.Deps{
		Quotes:       a.quotes,
		Builder:      assembler,
		Gate:         quality.NewCurveGate(gateConfig),
		Snapshots:    a.snapshots,
		Curves:       a.curves,
		Exporter:     exporter,
		FullYear:     merger,
		FullYearSink: a.fullYear,
		Feeds:        feeds.Feeds,
	}, log)

	return a, nil
}

// newExporter writes to the export directory and, when a bucket is configured, to S3
func newExporter(ctx context.Context, cfg *config.Config, log *logger.Logger) (*export.Exporter, error) {
	stores := []export.ObjectStore{export.NewLocalStore(cfg.Export.Dir)}
	if cfg.Export.S3Bucket != "" {
		s3Store, err := export.NewS3StoreFromEnv(ctx, cfg.Export.S3Bucket, cfg.Export.S3Region, cfg.Export.Compression)
		if err != nil {
			return nil, fmt.Errorf("init s3 store: %w", err)
		}
		stores = append(stores, s3Store)
	}
	return export.NewExporter(cfg.Export.S3Prefix, cfg.Export.Compression, log, stores...), nil
}

// newCollector wires the fx feed client into the rate collector
func (a *app) newCollector() *collector.Collector {
	httpClient := httputil.New(a.log).WithRateLimit(a.cfg.FX.RatePerSec)
	client := fxrate.NewClient(httpClient, a.cfg.FX.BaseURL, a.cfg.FX.APIKey, a.log)
	return collector.NewCollector(client, a.fx, a.log)
}

func (a *app) close() {
	a.db.Close()
}
