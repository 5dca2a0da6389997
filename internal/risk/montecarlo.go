package risk

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// MinBalance 경로 중간 잔고 하한 (0/음수 잔고 방지)
const MinBalance = 0.01

// MonteCarloSimulator 과거 pnl bootstrap 기반 잔고 시뮬레이터
type MonteCarloSimulator struct {
	config MonteCarloConfig
}

// NewMonteCarloSimulator 새 시뮬레이터 생성
func NewMonteCarloSimulator(config MonteCarloConfig) *MonteCarloSimulator {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.MinSamples < 1 {
		config.MinSamples = DefaultMonteCarloConfig().MinSamples
	}
	return &MonteCarloSimulator{config: config}
}

// Config returns the effective configuration
func (mc *MonteCarloSimulator) Config() MonteCarloConfig {
	return mc.config
}

// Simulate nSimulations 개 경로의 최종 잔고 분포
// 각 경로: startingBalance 에서 시작해 pnlHistory 에서 복원추출한 nTradesPerPath 개를 순차 합산,
// 매 스텝 잔고를 MinBalance 로 하한 처리. 최종 잔고만 보관
// pnlHistory 가 MinSamples 미만이면 (nil, nil) - 데이터 부족은 에러가 아님
func (mc *MonteCarloSimulator) Simulate(
	ctx context.Context,
	pnlHistory []float64,
	startingBalance float64,
	nSimulations int,
	nTradesPerPath int,
) (*BalanceDistribution, error) {
	if nSimulations <= 0 {
		return nil, fmt.Errorf("%w: nSimulations must be > 0, got %d", ErrInvalidConfig, nSimulations)
	}
	if nTradesPerPath < 0 {
		return nil, fmt.Errorf("%w: nTradesPerPath must be >= 0, got %d", ErrInvalidConfig, nTradesPerPath)
	}
	if len(pnlHistory) < mc.config.MinSamples {
		return nil, nil
	}

	history := make([]float64, len(pnlHistory))
	copy(history, pnlHistory)

	finals := make([]float64, nSimulations)
	workers := min(mc.config.Workers, nSimulations)
	chunk := (nSimulations + workers - 1) / workers
	base := mc.baseSeed()

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		from := w * chunk
		to := min(from+chunk, nSimulations)
		if from >= to {
			break
		}

		// 워커마다 독립 스트림 (공유 RNG 없음)
		rng := rand.New(rand.NewSource(StreamSeed(base, uint64(w))))
		out := finals[from:to]

		g.Go(func() error {
			for i := range out {
				if i%256 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				out[i] = simulatePath(rng, history, startingBalance, nTradesPerPath)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("monte carlo cancelled: %w", err)
	}

	return summarize(finals, startingBalance, nTradesPerPath), nil
}

// simulatePath 경로 하나의 최종 잔고
func simulatePath(rng *rand.Rand, history []float64, balance float64, nTrades int) float64 {
	for t := 0; t < nTrades; t++ {
		balance += history[rng.Intn(len(history))]
		if balance < MinBalance {
			balance = MinBalance
		}
	}
	return balance
}

// summarize 최종 잔고 분포의 백분위수/임계값 확률
func summarize(finals []float64, starting float64, nTrades int) *BalanceDistribution {
	sort.Float64s(finals)

	var profit, gain10, loss10, loss25 int
	for _, f := range finals {
		if f > starting {
			profit++
		}
		if f > starting*1.10 {
			gain10++
		}
		if f < starting*0.90 {
			loss10++
		}
		if f < starting*0.75 {
			loss25++
		}
	}

	pct := func(count int) float64 {
		return float64(count) / float64(len(finals)) * 100
	}

	return &BalanceDistribution{
		P5:              Percentile(finals, 5),
		P25:             Percentile(finals, 25),
		P50:             Percentile(finals, 50),
		P75:             Percentile(finals, 75),
		P95:             Percentile(finals, 95),
		ProbProfit:      pct(profit),
		Prob10PctGain:   pct(gain10),
		Prob10PctLoss:   pct(loss10),
		Prob25PctLoss:   pct(loss25),
		Simulations:     len(finals),
		TradesPerPath:   nTrades,
		StartingBalance: starting,
		MinFinalBalance: finals[0],
	}
}

func (mc *MonteCarloSimulator) baseSeed() int64 {
	if mc.config.Seed != 0 {
		return mc.config.Seed
	}
	return time.Now().UnixNano()
}

// StreamSeed seed 와 스트림 번호로 독립 시드 파생 (splitmix64)
// 같은 (seed, stream) 이면 항상 같은 값
func StreamSeed(seed int64, stream uint64) int64 {
	z := uint64(seed) + (stream+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}
