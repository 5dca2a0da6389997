package engineconfig

import (
	"github.com/wonny/tradestats/internal/projection"
	"github.com/wonny/tradestats/internal/risk"
)

// Config 통계/전망 엔진 설정 (YAML)
type Config struct {
	Meta           Meta           `yaml:"meta" json:"meta"`
	Projection     Projection     `yaml:"projection" json:"projection"`
	MovingAverages MovingAverages `yaml:"moving_averages" json:"moving_averages"`
	MonteCarlo     MonteCarlo     `yaml:"monte_carlo" json:"monte_carlo"`
	Performance    Performance    `yaml:"performance" json:"performance"`
}

// Meta 메타 정보
type Meta struct {
	ProfileID string `yaml:"profile_id" json:"profile_id"`
	Version   string `yaml:"version" json:"version"`
}

// Projection 복리 전망 + 추세 블렌딩
type Projection struct {
	HorizonsDays   []int   `yaml:"horizons_days" json:"horizons_days"`
	MinTrades      int     `yaml:"min_trades" json:"min_trades"`
	Confidence     float64 `yaml:"confidence" json:"confidence"` // 양측 신뢰수준 (0.95 → z=1.96)
	TrendThreshold float64 `yaml:"trend_threshold" json:"trend_threshold"`
	ProjectPeriods int     `yaml:"project_periods" json:"project_periods"`
}

type MovingAverages struct {
	Windows []int `yaml:"windows" json:"windows"`
}

// MonteCarlo 부트스트랩 시뮬레이션
type MonteCarlo struct {
	Simulations  int     `yaml:"simulations" json:"simulations"`
	Seed         int64   `yaml:"seed" json:"seed"` // 0 = 시간 기반
	Workers      int     `yaml:"workers" json:"workers"`
	MinSamples   int     `yaml:"min_samples" json:"min_samples"`
	Floors       []Floor `yaml:"floors" json:"floors"`
	DefaultFloor int     `yaml:"default_floor" json:"default_floor"`
}

// Floor 호라이즌별 경로당 최소 거래 수
// 주의: map 대신 slice 사용으로 YAML 순서 유지
type Floor struct {
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`
	MinTrades   int `yaml:"min_trades" json:"min_trades"`
}

// Performance 기간 성과 지표
type Performance struct {
	DefaultPeriodDays int `yaml:"default_period_days" json:"default_period_days"`
}

// Default 기본 설정 (YAML 없이 실행할 때)
func Default() *Config {
	pc := projection.DefaultConfig()

	floors := make([]Floor, 0, len(pc.Horizons))
	for _, h := range pc.Horizons {
		floors = append(floors, Floor{HorizonDays: h, MinTrades: pc.MCFloors[h]})
	}

	return &Config{
		Meta: Meta{ProfileID: "default", Version: "1"},
		Projection: Projection{
			HorizonsDays:   append([]int(nil), pc.Horizons...),
			MinTrades:      pc.MinTrades,
			Confidence:     0.95,
			TrendThreshold: pc.TrendThreshold,
			ProjectPeriods: pc.ProjectPeriods,
		},
		MovingAverages: MovingAverages{Windows: append([]int(nil), pc.MAWindows...)},
		MonteCarlo: MonteCarlo{
			Simulations:  pc.Simulations,
			Seed:         pc.MonteCarlo.Seed,
			Workers:      pc.MonteCarlo.Workers,
			MinSamples:   pc.MonteCarlo.MinSamples,
			Floors:       floors,
			DefaultFloor: pc.DefaultMCFloor,
		},
		Performance: Performance{DefaultPeriodDays: 30},
	}
}

// EngineConfig YAML 설정 → projection.Config
// ⭐ SSOT: 엔진은 이 변환 결과만 사용
func (c *Config) EngineConfig() projection.Config {
	floors := make(map[int]int, len(c.MonteCarlo.Floors))
	for _, f := range c.MonteCarlo.Floors {
		floors[f.HorizonDays] = f.MinTrades
	}

	mc := risk.DefaultMonteCarloConfig()
	mc.Seed = c.MonteCarlo.Seed
	mc.Workers = c.MonteCarlo.Workers
	mc.MinSamples = c.MonteCarlo.MinSamples

	return projection.Config{
		Horizons:       append([]int(nil), c.Projection.HorizonsDays...),
		MinTrades:      c.Projection.MinTrades,
		ConfidenceZ:    risk.ZScore(c.Projection.Confidence),
		TrendThreshold: c.Projection.TrendThreshold,
		ProjectPeriods: c.Projection.ProjectPeriods,
		MAWindows:      append([]int(nil), c.MovingAverages.Windows...),
		Simulations:    c.MonteCarlo.Simulations,
		MCFloors:       floors,
		DefaultMCFloor: c.MonteCarlo.DefaultFloor,
		MonteCarlo:     mc,
	}
}
