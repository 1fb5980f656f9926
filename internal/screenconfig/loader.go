package screenconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"github.com/wonny/supersignal/internal/merge"
)

// Default returns the built-in screening config
func Default() *Config {
	var cfg Config
	// struct tags are constants, Set cannot fail here
	_ = defaults.Set(&cfg)
	return &cfg
}

// Load reads a YAML file and returns Config with raw bytes.
// An empty path yields the defaults.
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Config, []byte, error) {
	if path == "" {
		return Default(), nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read screening config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, data, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, data, nil
}

// Parse decodes and validates YAML bytes
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks thresholds and the source priority
func Validate(cfg *Config) error {
	if err := cfg.Thresholds.Validate(); err != nil {
		return err
	}
	if _, err := cfg.Policy(); err != nil {
		return err
	}
	return nil
}

// Policy builds the merge policy described by the file
func (c *Config) Policy() (merge.Policy, error) {
	if err := validate.Struct(c.SourcePriority); err != nil {
		return merge.Policy{}, fmt.Errorf("source_priority: %w", err)
	}
	return merge.PolicyFromConfig(c.SourcePriority.Default, c.SourcePriority.Fields)
}

// Hash generates SHA256 hash from Config (canonical JSON).
// Map keys are sorted by encoding/json, so equal configs hash equally.
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
