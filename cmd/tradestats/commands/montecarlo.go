package commands

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/wonny/tradestats/internal/projection"
	"github.com/wonny/tradestats/internal/risk"
	"github.com/wonny/tradestats/internal/stats"
)

var mcHorizon int

var montecarloCmd = &cobra.Command{
	Use:   "montecarlo",
	Short: "Monte Carlo 잔고 분포",
	Long: `과거 거래 손익을 복원추출(bootstrap)해 호라이즌별 최종 잔고 분포를 시뮬레이션합니다.

경로당 거래 수 = int(일평균 거래 수 × 일수), 호라이즌별 하한 적용 (7d:5, 30d:10, 90d:20)
같은 --seed 면 같은 분포가 나옵니다.

Example:
  go run ./cmd/tradestats montecarlo --seed 42
  go run ./cmd/tradestats montecarlo --horizon 30 --simulations 10000`,
	RunE: runMonteCarlo,
}

func init() {
	montecarloCmd.Flags().IntVar(&mcHorizon, "horizon", 0, "호라이즌 일수 (0=설정된 전체)")
	rootCmd.AddCommand(montecarloCmd)
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if mcHorizon < 0 {
		return fmt.Errorf("--horizon must be >= 0")
	}

	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	book, err := rt.loadBook(ctx)
	if err != nil {
		return err
	}

	cfg := rt.engine.EngineConfig()
	horizons := slices.Clone(cfg.Horizons)
	slices.Sort(horizons)
	if mcHorizon > 0 {
		horizons = []int{mcHorizon}
	}

	ts := stats.ComputeTradeStatistics(book.Trades)
	daily := stats.ComputeDailyReturns(book.Trades, book.Balance.Starting)
	if ts == nil || daily == nil {
		printWarning(cmd.OutOrStdout(), "No trades with a parsable exit time")
		return nil
	}

	engine := risk.NewEngine(cfg.MonteCarlo, cfg.MAWindows)
	dists := make(map[string]*risk.BalanceDistribution, len(horizons))
	for _, days := range horizons {
		n := cfg.TradesPerPath(daily.AvgTradesPerDay, days)
		dist, err := engine.MonteCarlo(ctx, uint64(days), ts.PnLValues, book.Balance.Current, cfg.Simulations, n)
		if err != nil {
			return fmt.Errorf("monte carlo %s: %w", projection.HorizonKey(days), err)
		}
		dists[projection.HorizonKey(days)] = dist
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		return writeJSON(out, map[string]interface{}{
			"seed":        cfg.MonteCarlo.Seed,
			"simulations": cfg.Simulations,
			"monte_carlo": dists,
		})
	}

	seedLabel := "time-based"
	if cfg.MonteCarlo.Seed != 0 {
		seedLabel = fmt.Sprintf("%d", cfg.MonteCarlo.Seed)
	}
	printHeader(out, "Monte Carlo Simulation", append(sourceLines(book),
		fmt.Sprintf("Simulations: %s per horizon (seed %s)", groupThousands(int64(cfg.Simulations)), seedLabel),
	)...)
	printKV(out, "Starting (current)", formatMoney(book.Balance.Current))
	printKV(out, "Avg Trades/Day", fmt.Sprintf("%.2f", daily.AvgTradesPerDay))

	printMonteCarloTable(out, horizons, dists)

	for _, days := range horizons {
		d := dists[projection.HorizonKey(days)]
		if d == nil {
			continue
		}
		printSection(out, fmt.Sprintf("📊 %s probabilities", projection.HorizonKey(days)))
		printKV(out, "Profit", formatPct(d.ProbProfit))
		printKV(out, "+10% or better", formatPct(d.Prob10PctGain))
		printKV(out, "-10% or worse", formatPct(d.Prob10PctLoss))
		printKV(out, "-25% or worse", formatPct(d.Prob25PctLoss))
	}
	return nil
}
