package projection

import (
	"fmt"

	"github.com/wonny/tradestats/internal/risk"
)

// Config 종합 전망 설정
type Config struct {
	Horizons       []int       `json:"horizons"`        // 일 단위 (기본: 7, 30, 90)
	MinTrades      int         `json:"min_trades"`      // 종합 전망 최소 거래 수 (기본: 10)
	ConfidenceZ    float64     `json:"confidence_z"`    // 기본: 1.96
	TrendThreshold float64     `json:"trend_threshold"` // 추세 블렌딩 R² 기준 (기본: 0.3)
	ProjectPeriods int         `json:"project_periods"` // 추세 외삽 기간
	MAWindows      []int       `json:"ma_windows"`
	Simulations    int         `json:"simulations"` // 호라이즌별 경로 수 (기본: 5000)
	MCFloors       map[int]int `json:"mc_floors"`   // 호라이즌별 경로당 최소 거래 수
	DefaultMCFloor int         `json:"default_mc_floor"`

	MonteCarlo risk.MonteCarloConfig `json:"monte_carlo"`
}

// DefaultConfig 기본 설정
func DefaultConfig() Config {
	return Config{
		Horizons:       []int{7, 30, 90},
		MinTrades:      10,
		ConfidenceZ:    DefaultConfidenceZ,
		TrendThreshold: 0.3,
		ProjectPeriods: risk.DefaultProjectPeriods,
		MAWindows:      []int{5, 10, 20},
		Simulations:    5000,
		MCFloors:       map[int]int{7: 5, 30: 10, 90: 20},
		DefaultMCFloor: 5,
		MonteCarlo:     risk.DefaultMonteCarloConfig(),
	}
}

// Validate 설정 유효성 검사
func (c Config) Validate() error {
	if len(c.Horizons) == 0 {
		return fmt.Errorf("%w: at least one horizon required", risk.ErrInvalidConfig)
	}
	seen := make(map[int]bool, len(c.Horizons))
	for _, h := range c.Horizons {
		if h <= 0 {
			return fmt.Errorf("%w: horizon must be > 0, got %d", risk.ErrInvalidConfig, h)
		}
		if seen[h] {
			return fmt.Errorf("%w: duplicate horizon %d", risk.ErrInvalidConfig, h)
		}
		seen[h] = true
	}
	if c.MinTrades < 1 {
		return fmt.Errorf("%w: min_trades must be >= 1", risk.ErrInvalidConfig)
	}
	if c.ConfidenceZ < 0 {
		return fmt.Errorf("%w: confidence_z must be >= 0", risk.ErrInvalidConfig)
	}
	if c.TrendThreshold < 0 || c.TrendThreshold > 1 {
		return fmt.Errorf("%w: trend_threshold must be within [0, 1]", risk.ErrInvalidConfig)
	}
	if c.Simulations <= 0 {
		return fmt.Errorf("%w: simulations must be > 0", risk.ErrInvalidConfig)
	}
	for h, floor := range c.MCFloors {
		if floor < 0 {
			return fmt.Errorf("%w: mc floor for %dd must be >= 0", risk.ErrInvalidConfig, h)
		}
	}
	for _, w := range c.MAWindows {
		if w <= 0 {
			return fmt.Errorf("%w: moving average window must be > 0", risk.ErrInvalidConfig)
		}
	}
	return risk.ValidateConfig(c.MonteCarlo)
}

// mcFloor 호라이즌의 경로당 최소 거래 수
func (c Config) mcFloor(days int) int {
	if floor, ok := c.MCFloors[days]; ok {
		return floor
	}
	return c.DefaultMCFloor
}

// TradesPerPath int(trades/day × days), 호라이즌별 하한 적용
func (c Config) TradesPerPath(tradesPerDay float64, days int) int {
	return max(int(tradesPerDay*float64(days)), c.mcFloor(days))
}

// HorizonKey "7d" 형식 키
func HorizonKey(days int) string {
	return fmt.Sprintf("%dd", days)
}
