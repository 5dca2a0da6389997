package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wonny/tradestats/internal/projection"
	"github.com/wonny/tradestats/internal/risk"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "종합 잔고 전망",
	Long: `거래 통계, 일별 수익률, 추세/변동성, 호라이즌별 복리 전망과
Monte Carlo 분포를 한 번에 계산합니다.

최소 거래 수(엔진 설정 min_trades, 기본 10) 미만이면 헤드라인 수치만 출력합니다.

Example:
  go run ./cmd/tradestats project --state dashboard.json --seed 42
  go run ./cmd/tradestats project --engine-config config/engine/default.yaml -o json`,
	RunE: runProject,
}

func init() {
	rootCmd.AddCommand(projectCmd)
}

func runProject(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	book, err := rt.loadBook(ctx)
	if err != nil {
		return err
	}

	engine, err := projection.NewEngine(rt.engine.EngineConfig())
	if err != nil {
		return fmt.Errorf("create projection engine: %w", err)
	}

	current, starting := book.Balance.Current, book.Balance.Starting
	result, err := engine.ComputeComprehensive(ctx, book.Trades, current, starting)
	if err != nil {
		return fmt.Errorf("compute projection: %w", err)
	}
	headline := engine.ComputeHeadline(result, book.Trades, current, starting)

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		return writeJSON(out, map[string]interface{}{
			"balance":    book.Balance,
			"headline":   headline,
			"projection": result,
		})
	}

	printHeader(out, "Balance Projection", sourceLines(book)...)
	printBalance(out, book.Balance)

	printSection(out, "🎯 Headline")
	printKV(out, "Expected Daily", formatSignedMoney(headline.ExpectedDaily.Value)+"  ["+headline.ExpectedDaily.Label+"]")
	printKV(out, "Expected Monthly", formatSignedMoney(headline.ExpectedMonthly.Value)+"  ["+headline.ExpectedMonthly.Label+"]")

	if result == nil {
		printWarning(out, fmt.Sprintf("Need at least %d trades for a full projection (have %d)",
			engine.Config().MinTrades, len(book.Trades)))
		return nil
	}

	printTradeStatistics(out, result.TradeStats)
	printRisk(out, result.VolatilityMetrics, result.TrendAnalysis)
	printMovingAverages(out, result.MovingAverages)

	printSection(out, "🔮 Compound Projections")
	widths := []int{6, 14, 14, 14, 10, 14}
	printTableHeader(out, []string{"Days", "Lower 95", "Projected", "Upper 95", "Return", "Trend-Adj"}, widths)
	for _, days := range engine.Config().Horizons {
		p := result.MathProjections[projection.HorizonKey(days)]
		trend := "-"
		if p.TrendAdjusted != nil {
			trend = formatMoney(*p.TrendAdjusted)
		}
		printTableRow(out, []string{
			projection.HorizonKey(days),
			formatMoney(p.Lower95),
			formatMoney(p.Projected),
			formatMoney(p.Upper95),
			formatPct(p.ReturnPct),
			trend,
		}, widths)
	}

	printSection(out, "💵 Expectancy")
	printKV(out, "Daily", formatSignedMoney(result.Expectancy.ExpectedDaily))
	printKV(out, "Weekly", formatSignedMoney(result.Expectancy.ExpectedWeekly))
	printKV(out, "Monthly", formatSignedMoney(result.Expectancy.ExpectedMonthly))

	printMonteCarloTable(out, engine.Config().Horizons, result.MonteCarlo)

	printSection(out, "📝 Methods")
	keys := make([]string, 0, len(result.Methods))
	for k := range result.Methods {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		printKV(out, k, result.Methods[k])
	}

	fmt.Fprintf(out, "\n  run_id: %s\n", result.RunID)
	return nil
}

func printRisk(w io.Writer, vol *risk.VolatilityMetrics, trend *risk.TrendModel) {
	printSection(w, "⚠️  Risk")
	if vol == nil {
		fmt.Fprintln(w, "  (not enough trades)")
	} else {
		printKV(w, "Volatility (per trade)", formatMoney(vol.Volatility))
		printKV(w, "VaR 95 / VaR 99", formatSignedMoney(vol.VaR95)+" / "+formatSignedMoney(vol.VaR99))
		printKV(w, "Expected Shortfall 95", formatSignedMoney(vol.ExpectedShortfall95))
		printKV(w, "Max Drawdown", formatMoney(vol.MaxDrawdown))
		printKV(w, "Sharpe / Sortino", fmt.Sprintf("%.3f / %.3f", vol.PerTradeSharpe, vol.SortinoRatio))
	}

	printSection(w, "📐 Trend")
	if trend == nil {
		fmt.Fprintln(w, "  (not enough trades)")
		return
	}
	printKV(w, "Direction", string(trend.TrendDirection))
	printKV(w, "Slope / Trade", formatSignedMoney(trend.Slope))
	printKV(w, "R²", fmt.Sprintf("%.3f", trend.RSquared))
}

func printMovingAverages(w io.Writer, ma risk.MovingAverages) {
	windows := ma.Windows()
	if len(windows) == 0 {
		return
	}
	printSection(w, "〰️  Moving Averages")
	for _, win := range windows {
		sma, _ := ma.CurrentSMA(win)
		ema, _ := ma.CurrentEMA(win)
		printKV(w, fmt.Sprintf("SMA/EMA %d", win), formatSignedMoney(sma)+" / "+formatSignedMoney(ema))
	}
}

func printMonteCarloTable(w io.Writer, horizons []int, dists map[string]*risk.BalanceDistribution) {
	printSection(w, "🎲 Monte Carlo")
	widths := []int{6, 8, 13, 13, 13, 13, 13, 9, 9}
	printTableHeader(w, []string{"Days", "Trades", "P5", "P25", "P50", "P75", "P95", "Profit", "-25%"}, widths)
	for _, days := range horizons {
		key := projection.HorizonKey(days)
		d := dists[key]
		if d == nil {
			printTableRow(w, []string{key, "-", "insufficient data"}, widths[:3])
			continue
		}
		printTableRow(w, []string{
			key,
			fmt.Sprintf("%d", d.TradesPerPath),
			formatMoney(d.P5),
			formatMoney(d.P25),
			formatMoney(d.P50),
			formatMoney(d.P75),
			formatMoney(d.P95),
			formatPct(d.ProbProfit),
			formatPct(d.Prob25PctLoss),
		}, widths)
	}
}
