package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "curve",
	Short: "Commodity forward curve engine",
	Long: `Commodity Forward Curve Engine CLI

거래소 선물 호가로 일별 포워드 커브(mixed, single)를 만들고
과거 가격과 병합해 목표 연도의 전체 커브를 생성합니다.

Usage:
  go run ./cmd/curve [command]

Examples:
  go run ./cmd/curve build
  go run ./cmd/curve build --trade-date 2019-01-04 --dry-run
  go run ./cmd/curve fullyear
  go run ./cmd/curve collect-fx --year 2019
  go run ./cmd/curve api
  go run ./cmd/curve scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug log level)")
}
