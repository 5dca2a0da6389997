package engineconfig

import (
	"fmt"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Projection ===
	if len(cfg.Projection.HorizonsDays) == 0 {
		return ValidationError{"projection.horizons_days", "at least one horizon required"}
	}
	seen := make(map[int]bool, len(cfg.Projection.HorizonsDays))
	for _, h := range cfg.Projection.HorizonsDays {
		if h <= 0 {
			return ValidationError{"projection.horizons_days", fmt.Sprintf("must be > 0, got %d", h)}
		}
		if seen[h] {
			return ValidationError{"projection.horizons_days", fmt.Sprintf("duplicate horizon %d", h)}
		}
		seen[h] = true
	}
	if cfg.Projection.MinTrades < 1 {
		return ValidationError{"projection.min_trades", "must be >= 1"}
	}
	if cfg.Projection.Confidence <= 0 || cfg.Projection.Confidence >= 1 {
		return ValidationError{"projection.confidence", "must be in (0, 1)"}
	}
	if cfg.Projection.TrendThreshold < 0 || cfg.Projection.TrendThreshold > 1 {
		return ValidationError{"projection.trend_threshold", "must be in [0, 1]"}
	}
	if cfg.Projection.ProjectPeriods < 0 {
		return ValidationError{"projection.project_periods", "must be >= 0"}
	}

	// === Moving averages ===
	for _, w := range cfg.MovingAverages.Windows {
		if w <= 0 {
			return ValidationError{"moving_averages.windows", fmt.Sprintf("must be > 0, got %d", w)}
		}
	}

	// === Monte Carlo ===
	if cfg.MonteCarlo.Simulations <= 0 {
		return ValidationError{"monte_carlo.simulations", "must be > 0"}
	}
	if cfg.MonteCarlo.Workers < 1 {
		return ValidationError{"monte_carlo.workers", "must be >= 1"}
	}
	if cfg.MonteCarlo.MinSamples < 1 {
		return ValidationError{"monte_carlo.min_samples", "must be >= 1"}
	}
	if cfg.MonteCarlo.DefaultFloor < 0 {
		return ValidationError{"monte_carlo.default_floor", "must be >= 0"}
	}
	floorSeen := make(map[int]bool, len(cfg.MonteCarlo.Floors))
	for _, f := range cfg.MonteCarlo.Floors {
		if f.MinTrades < 0 {
			return ValidationError{"monte_carlo.floors", fmt.Sprintf("min_trades for %dd must be >= 0", f.HorizonDays)}
		}
		if floorSeen[f.HorizonDays] {
			return ValidationError{"monte_carlo.floors", fmt.Sprintf("duplicate horizon %d", f.HorizonDays)}
		}
		floorSeen[f.HorizonDays] = true
	}

	// === Performance ===
	if cfg.Performance.DefaultPeriodDays < 0 {
		return ValidationError{"performance.default_period_days", "must be >= 0"}
	}

	// 변환 결과도 엔진 검증 통과해야 함
	if err := cfg.EngineConfig().Validate(); err != nil {
		return ValidationError{"engine", err.Error()}
	}

	return nil
}

// Warn checks recommended constraints
// 경고만 반환 (실행은 계속)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.MonteCarlo.Seed == 0 {
		warnings = append(warnings, Warning{
			Code:    "MC_SEED_UNSET",
			Message: "monte_carlo.seed is 0: simulations are not reproducible",
		})
	}

	if cfg.MonteCarlo.Simulations < 1000 {
		warnings = append(warnings, Warning{
			Code:    "MC_FEW_SIMULATIONS",
			Message: fmt.Sprintf("monte_carlo.simulations=%d: percentiles will be noisy (recommended >= 1000)", cfg.MonteCarlo.Simulations),
		})
	}

	if cfg.Projection.MinTrades < 10 {
		warnings = append(warnings, Warning{
			Code:    "LOW_MIN_TRADES",
			Message: fmt.Sprintf("projection.min_trades=%d: projections from fewer than 10 trades are unreliable", cfg.Projection.MinTrades),
		})
	}

	for _, h := range cfg.Projection.HorizonsDays {
		found := false
		for _, f := range cfg.MonteCarlo.Floors {
			if f.HorizonDays == h {
				found = true
				break
			}
		}
		if !found {
			warnings = append(warnings, Warning{
				Code:    "MC_FLOOR_DEFAULTED",
				Message: fmt.Sprintf("no monte_carlo floor for %dd, default_floor=%d applies", h, cfg.MonteCarlo.DefaultFloor),
			})
		}
	}

	return warnings
}
