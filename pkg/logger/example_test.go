package logger_test

import (
	"errors"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/config"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/logger"
)

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	buildLog := log.WithFields(map[string]interface{}{
		"run_id":     "0b6b1c4e-5d0a-4b8e-9a57-4d7c1f1c2a11",
		"trade_date": "2019-01-04",
		"rows":       2190,
	})
	buildLog.Info("Curve build completed")
	// {"level":"info","env":"production","run_id":"0b6b...","trade_date":"2019-01-04","rows":2190,"message":"Curve build completed",...}
}

// Example_withError demonstrates error logging
func Example_withError() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "error",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	err := errors.New("no exchange rate")
	log.WithError(err).
		WithField("feed", "coal-api2").
		Error("Full-year merge failed")
}

// Example_rotatingFile writes JSON lines to stdout and a rotated file
func Example_rotatingFile() {
	cfg := &config.Config{
		Env:          "production",
		LogLevel:     "info",
		LogFormat:    "json",
		LogFile:      "/var/log/fwdcurve/curve.log",
		LogMaxSizeMB: 100,
		LogMaxAgeDay: 14,
	}

	logger.New(cfg).Info("Scheduler started")
}
