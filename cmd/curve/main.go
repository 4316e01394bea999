package main

import (
	"os"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/cmd/curve/commands"
)

// main is the entry point for the forward curve CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/curve [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
