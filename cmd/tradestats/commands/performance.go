package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tradestats/internal/stats"
)

var perfPeriod int

var performanceCmd = &cobra.Command{
	Use:   "performance",
	Short: "기간 성과 지표",
	Long: `최근 N일 동안 청산된 거래의 성과 지표를 계산합니다.

지표:
- 자산 곡선 기반 최대 낙폭 ($, %)
- 연율화 Sharpe (mean/σ × √252), Calmar
- 총 수익률, 평균 이익/손실 %

--period 0 이면 전체 기간. 지정하지 않으면 엔진 설정의 default_period_days.

Example:
  go run ./cmd/tradestats performance --period 7
  go run ./cmd/tradestats performance --period 0 -o json`,
	RunE: runPerformance,
}

func init() {
	performanceCmd.Flags().IntVar(&perfPeriod, "period", 0, "기간 (일, 0=전체)")
	rootCmd.AddCommand(performanceCmd)
}

func runPerformance(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if perfPeriod < 0 {
		return fmt.Errorf("--period must be >= 0")
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

	period := rt.engine.Performance.DefaultPeriodDays
	if cmd.Flags().Changed("period") {
		period = perfPeriod
	}

	m := stats.ComputePerformanceMetrics(book.Trades, book.Balance.Starting, period, time.Now())

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		return writeJSON(out, m)
	}

	title := "Performance (all time)"
	if period > 0 {
		title = fmt.Sprintf("Performance (last %d days)", period)
	}
	printHeader(out, title, sourceLines(book)...)
	if m == nil {
		printWarning(out, "No trades closed in this period")
		return nil
	}

	printSection(out, "📊 Results")
	printKV(out, "Trades", fmt.Sprintf("%d (%dW / %dL)", m.TotalTrades, m.WinCount, m.LossCount))
	printKV(out, "Win Rate", formatPct(m.WinRate))
	printKV(out, "Net P&L", formatSignedMoney(m.NetPnL))
	printKV(out, "Total Return", formatPct(m.TotalReturnPct))
	printKV(out, "Avg Win % / Avg Loss %", formatPct(m.AvgWinPct)+" / "+formatPct(m.AvgLossPct))
	printKV(out, "Profit Factor", formatRatio(m.ProfitFactor))
	printKV(out, "Expectancy", formatSignedMoney(m.Expectancy))

	printSection(out, "⚠️  Risk")
	printKV(out, "Max Drawdown", formatMoney(m.MaxDrawdown)+" ("+formatPct(m.MaxDrawdownPct)+")")
	printKV(out, "Sharpe (annualized)", fmt.Sprintf("%.3f", m.SharpeRatio))
	printKV(out, "Calmar", formatRatio(m.CalmarRatio))
	printKV(out, "Std Dev", formatMoney(m.StdDev))
	printKV(out, "Max Win / Loss Streak", fmt.Sprintf("%d / %d", m.MaxWin, m.MaxLoss))
	return nil
}
