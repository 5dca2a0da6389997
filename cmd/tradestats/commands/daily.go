package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/tradestats/internal/stats"
)

var dailyLimit int

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "일별 수익률",
	Long: `청산일 기준으로 거래를 묶어 일별 수익률 시계열을 계산합니다.

각 일자의 수익률 = 그날 손익 / 그날 시작 잔고 (시작 잔고 ≤ 0 이면 0)

Example:
  go run ./cmd/tradestats daily --trades trades.jsonl --limit 14`,
	RunE: runDaily,
}

func init() {
	dailyCmd.Flags().IntVar(&dailyLimit, "limit", 30, "표시할 최근 일수 (0=전체)")
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(cmd *cobra.Command, args []string) error {
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

	series := stats.ComputeDailyReturns(book.Trades, book.Balance.Starting)
	out := cmd.OutOrStdout()

	if outputFormat == "json" {
		return writeJSON(out, series)
	}

	printHeader(out, "Daily Returns", sourceLines(book)...)
	if series == nil {
		printWarning(out, "No trades with a parsable exit time")
		return nil
	}

	printSection(out, "📅 Summary")
	printKV(out, "Avg Daily Return", formatFraction(series.AvgDailyReturn))
	printKV(out, "Volatility", formatFraction(series.Volatility))
	span := fmt.Sprintf("%.0f", series.TotalDays)
	if series.EstimatedSpan {
		span += " (estimated)"
	}
	printKV(out, "Total Days", span)
	printKV(out, "Trading Days", strconv.Itoa(series.TradingDays))
	printKV(out, "Avg Trades/Day", fmt.Sprintf("%.2f", series.AvgTradesPerDay))
	if series.ExcludedTrades > 0 {
		printWarning(out, fmt.Sprintf("%d trades excluded (unparsable exit time)", series.ExcludedTrades))
	}

	days := series.Days
	if dailyLimit > 0 && len(days) > dailyLimit {
		days = days[len(days)-dailyLimit:]
	}

	printSection(out, "📈 Days")
	widths := []int{12, 8, 14, 14, 10}
	printTableHeader(out, []string{"Date", "Trades", "Start", "P&L", "Return"}, widths)
	for _, d := range days {
		printTableRow(out, []string{
			d.Date,
			strconv.Itoa(d.Trades),
			formatMoney(d.StartBalance),
			formatSignedMoney(d.PnL),
			formatFraction(d.Return),
		}, widths)
	}
	return nil
}
