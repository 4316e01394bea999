package feedconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads the feed YAML file and returns Config with raw bytes
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, data, err
	}
	return cfg, data, nil
}

// LoadOrDefault falls back to Default when path does not exist
func LoadOrDefault(path string) (*Config, error) {
	cfg, _, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load feeds %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates feed YAML
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}

	normalize(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Hash generates SHA256 hash from Config (canonical JSON)
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// normalize lowercases keys to match cleaned quotes and uppercases currencies
func normalize(cfg *Config) {
	for i := range cfg.Feeds {
		f := &cfg.Feeds[i]
		f.Commodity = strings.ToLower(strings.TrimSpace(f.Commodity))
		f.Market = strings.ToLower(strings.TrimSpace(f.Market))
		f.Historical.Mode = strings.ToLower(f.Historical.Mode)
		f.Historical.ContractName = strings.ToLower(f.Historical.ContractName)
		if f.Conversion != nil {
			f.Conversion.FromCurrency = strings.ToUpper(f.Conversion.FromCurrency)
			f.Conversion.ToCurrency = strings.ToUpper(f.Conversion.ToCurrency)
		}
	}
}
