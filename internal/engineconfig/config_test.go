package engineconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradestats/internal/projection"
)

func TestLoad(t *testing.T) {
	path := "../../config/engine/default.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("config file not found")
	}

	cfg, yamlData, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, yamlData)

	assert.Equal(t, "default", cfg.Meta.ProfileID)
	assert.Equal(t, []int{7, 30, 90}, cfg.Projection.HorizonsDays)
	assert.Equal(t, int64(42), cfg.MonteCarlo.Seed)

	hash, err := Hash(cfg)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	// 동일 설정 → 동일 해시
	hash2, _ := Hash(cfg)
	assert.Equal(t, hash, hash2)
}

func TestDefaultMatchesEngineDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	ec := cfg.EngineConfig()
	want := projection.DefaultConfig()

	assert.Equal(t, want.Horizons, ec.Horizons)
	assert.Equal(t, want.MinTrades, ec.MinTrades)
	assert.Equal(t, want.ConfidenceZ, ec.ConfidenceZ)
	assert.Equal(t, want.TrendThreshold, ec.TrendThreshold)
	assert.Equal(t, want.MAWindows, ec.MAWindows)
	assert.Equal(t, want.Simulations, ec.Simulations)
	assert.Equal(t, want.MCFloors, ec.MCFloors)
	assert.Equal(t, want.DefaultMCFloor, ec.DefaultMCFloor)
	assert.Equal(t, want.MonteCarlo, ec.MonteCarlo)
}

func TestParse_PartialOverride(t *testing.T) {
	cfg, err := Parse([]byte(`
projection:
  horizons_days: [14]
  min_trades: 20
  confidence: 0.99
  trend_threshold: 0.5
  project_periods: 10
monte_carlo:
  simulations: 2000
  seed: 7
  workers: 2
  min_samples: 5
  floors:
    - { horizon_days: 14, min_trades: 8 }
  default_floor: 3
`))
	require.NoError(t, err)

	ec := cfg.EngineConfig()
	assert.Equal(t, []int{14}, ec.Horizons)
	assert.Equal(t, 2.576, ec.ConfidenceZ)
	assert.Equal(t, map[int]int{14: 8}, ec.MCFloors)
	assert.Equal(t, int64(7), ec.MonteCarlo.Seed)
	assert.Equal(t, 2, ec.MonteCarlo.Workers)

	// 지정하지 않은 섹션은 기본값
	assert.Equal(t, []int{5, 10, 20}, cfg.MovingAverages.Windows)
	assert.Equal(t, 30, cfg.Performance.DefaultPeriodDays)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte(`
projection:
  horizon_days: [7]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "horizon_days")
}

func TestLoad_Errors(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("monte_carlo:\n  simulations: 0\n"), 0o644))

	_, data, err := Load(path)
	require.Error(t, err)
	assert.NotEmpty(t, data)

	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "monte_carlo.simulations", verr.Field)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"no horizons", func(c *Config) { c.Projection.HorizonsDays = nil }, "projection.horizons_days"},
		{"negative horizon", func(c *Config) { c.Projection.HorizonsDays = []int{-7} }, "projection.horizons_days"},
		{"duplicate horizon", func(c *Config) { c.Projection.HorizonsDays = []int{7, 7} }, "projection.horizons_days"},
		{"min trades", func(c *Config) { c.Projection.MinTrades = 0 }, "projection.min_trades"},
		{"confidence", func(c *Config) { c.Projection.Confidence = 1 }, "projection.confidence"},
		{"trend threshold", func(c *Config) { c.Projection.TrendThreshold = -0.1 }, "projection.trend_threshold"},
		{"ma window", func(c *Config) { c.MovingAverages.Windows = []int{5, 0} }, "moving_averages.windows"},
		{"workers", func(c *Config) { c.MonteCarlo.Workers = 0 }, "monte_carlo.workers"},
		{"floor", func(c *Config) { c.MonteCarlo.Floors = []Floor{{HorizonDays: 7, MinTrades: -1}} }, "monte_carlo.floors"},
		{"period", func(c *Config) { c.Performance.DefaultPeriodDays = -1 }, "performance.default_period_days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			var verr ValidationError
			require.ErrorAs(t, Validate(cfg), &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestHash_ChangesWithSettings(t *testing.T) {
	a, err := Hash(Default())
	require.NoError(t, err)

	cfg := Default()
	cfg.MonteCarlo.Seed = 99
	b, err := Hash(cfg)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestWarn(t *testing.T) {
	cfg := Default()
	cfg.MonteCarlo.Simulations = 100
	cfg.Projection.HorizonsDays = append(cfg.Projection.HorizonsDays, 180)

	codes := make([]string, 0)
	for _, w := range Warn(cfg) {
		codes = append(codes, w.Code)
	}

	assert.ElementsMatch(t, []string{"MC_SEED_UNSET", "MC_FEW_SIMULATIONS", "MC_FLOOR_DEFAULTED"}, codes)
}
