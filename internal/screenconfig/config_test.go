package screenconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/supersignal/internal/contracts"
	"github.com/wonny/supersignal/internal/merge"
	"github.com/wonny/supersignal/internal/risk"
)

func TestLoad_ExampleFile(t *testing.T) {
	path := "../../config/screen.example.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("config file not found")
	}

	cfg, data, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	assert.Equal(t, []string{"Cayman", "BVI", "Bermuda"}, cfg.Thresholds.TaxHavenKeywords)

	p, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, []contracts.Source{contracts.SourceFinviz, contracts.SourceYahoo},
		p.Fields[contracts.FieldFloatShares])

	hash, err := Hash(cfg)
	require.NoError(t, err)
	assert.Len(t, hash, 64)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, data, err := Load("")
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Equal(t, risk.DefaultThresholds(), cfg.Thresholds)

	p, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, merge.DefaultPolicy(), p)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "empty document keeps defaults",
			yaml: "",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, int64(3_000_000), cfg.Thresholds.MinFreeFloat)
			},
		},
		{
			name: "partial thresholds keep other defaults",
			yaml: "thresholds:\n  min_free_float: 500000\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, int64(500_000), cfg.Thresholds.MinFreeFloat)
				assert.Equal(t, []string{"RU", "CN", "IR"}, cfg.Thresholds.RiskyCountries)
			},
		},
		{
			name: "empty sets are allowed",
			yaml: "thresholds:\n  risky_countries: []\n  tax_haven_keywords: []\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Empty(t, cfg.Thresholds.RiskyCountries)
				assert.Empty(t, cfg.Thresholds.TaxHavenKeywords)
			},
		},
		{
			name: "field overrides merge over built-in ones",
			yaml: "source_priority:\n  fields:\n    price: [finviz]\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"finviz"}, cfg.SourcePriority.Fields["price"])
				assert.Equal(t, []string{"finviz", "yahoo"}, cfg.SourcePriority.Fields["is_adr"])
			},
		},
		{name: "unknown key", yaml: "thresholds:\n  min_float: 1\n", wantErr: true},
		{name: "negative float", yaml: "thresholds:\n  min_free_float: -1\n", wantErr: true},
		{name: "unknown field in priority", yaml: "source_priority:\n  fields:\n    colour: [yahoo]\n", wantErr: true},
		{name: "duplicate source", yaml: "source_priority:\n  default: [yahoo, yahoo]\n", wantErr: true},
		{name: "empty default order", yaml: "source_priority:\n  default: []\n", wantErr: true},
		{name: "malformed yaml", yaml: "thresholds: [", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestParse_ThresholdErrorIsConfigError(t *testing.T) {
	_, err := Parse([]byte("thresholds:\n  min_free_float: -5\n"))
	var ce *risk.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "min_free_float", ce.Field)
}

func TestHash_Deterministic(t *testing.T) {
	a, err := Hash(Default())
	require.NoError(t, err)
	b, err := Hash(Default())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	changed := Default()
	changed.Thresholds.MinFreeFloat = 1
	c, err := Hash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
