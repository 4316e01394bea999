package commands

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/feedconfig"
)

// feedsCmd represents the feeds command
var feedsCmd = &cobra.Command{
	Use:   "feeds [path]",
	Short: "전체 연도 피드 정의 검증 + 출력",
	Long: `피드 YAML을 읽어 검증하고 정규화된 정의와 해시를 출력합니다.
파일이 없으면 내장 기본값을 출력합니다.

Example:
  go run ./cmd/curve feeds
  go run ./cmd/curve feeds configs/feeds.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFeeds,
}

func init() {
	rootCmd.AddCommand(feedsCmd)
}

func runFeeds(cmd *cobra.Command, args []string) error {
	path := "configs/feeds.yaml"
	if len(args) == 1 {
		path = args[0]
	}

	cfg, _, err := feedconfig.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		PrintInfo(fmt.Sprintf("%s not found, using built-in defaults", path))
		cfg = feedconfig.Default()
	case err != nil:
		var verr feedconfig.ValidationError
		if errors.As(err, &verr) {
			PrintError(verr.Error())
		}
		return fmt.Errorf("load feeds %s: %w", path, err)
	default:
		PrintSuccess(fmt.Sprintf("%s is valid", path))
	}

	hash, err := feedconfig.Hash(cfg)
	if err != nil {
		return fmt.Errorf("hash feeds: %w", err)
	}
	PrintKeyValue("Version", cfg.Version, 8)
	PrintKeyValue("Feeds", fmt.Sprintf("%d", len(cfg.Feeds)), 8)
	PrintKeyValue("Hash", hash[:16], 8)
	PrintSeparator()

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode feeds: %w", err)
	}
	fmt.Print(string(out))
	return nil
}
