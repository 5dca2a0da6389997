package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wonny/tradestats/internal/ledger"
	"github.com/wonny/tradestats/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "거래 통계",
	Long: `원장의 모든 청산 거래로 통계를 계산합니다.

출력:
- 승/패 수, 승률, 총이익/총손실, 순손익
- 평균 이익/손실, Profit Factor, Risk/Reward, 기대값
- 최고/최저 거래, 최대 연승/연패, 현재 연속 기록

Example:
  go run ./cmd/tradestats stats --trades trades.jsonl
  go run ./cmd/tradestats stats --csv export.csv --output json`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
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

	ts := stats.ComputeTradeStatistics(book.Trades)
	out := cmd.OutOrStdout()

	if outputFormat == "json" {
		return writeJSON(out, map[string]interface{}{
			"balance":    book.Balance,
			"sources":    book.Sources,
			"rejected":   len(book.Rejected),
			"statistics": ts,
		})
	}

	printHeader(out, "Trade Statistics", sourceLines(book)...)
	if ts == nil {
		printWarning(out, "No trades in ledger")
		return nil
	}
	printBalance(out, book.Balance)
	printTradeStatistics(out, ts)
	return nil
}

// sourceLines 헤더용 원장 요약
func sourceLines(book *ledger.Book) []string {
	lines := make([]string, 0, len(book.Sources)+1)
	for _, s := range book.Sources {
		lines = append(lines, "Source    : "+s)
	}
	lines = append(lines, fmt.Sprintf("Trades    : %d (rejected %d)", len(book.Trades), len(book.Rejected)))
	return lines
}

func printBalance(w io.Writer, b ledger.BalanceSnapshot) {
	printSection(w, "💰 Balance")
	printKV(w, "Starting", formatMoney(b.Starting))
	printKV(w, "Current", formatMoney(b.Current))
	printKV(w, "Total P&L", formatSignedMoney(b.TotalPnL))
}

func printTradeStatistics(w io.Writer, ts *stats.TradeStatistics) {
	printSection(w, "📊 Trade Statistics")
	printKV(w, "Total Trades", fmt.Sprintf("%d (%dW / %dL)", ts.TotalTrades, ts.WinCount, ts.LossCount))
	printKV(w, "Win Rate", formatPct(ts.WinRate))
	printKV(w, "Gross Profit", formatMoney(ts.GrossProfit))
	printKV(w, "Gross Loss", formatMoney(ts.GrossLoss))
	printKV(w, "Net P&L", formatSignedMoney(ts.NetPnL))
	printKV(w, "Avg Win / Avg Loss", formatMoney(ts.AvgWin)+" / "+formatMoney(ts.AvgLoss))
	printKV(w, "Profit Factor", formatRatio(ts.ProfitFactor))
	printKV(w, "Risk/Reward", formatRatio(ts.RiskRewardRatio))
	printKV(w, "Expectancy", formatSignedMoney(ts.Expectancy))
	printKV(w, "Best / Worst", formatSignedMoney(ts.BestTrade)+" / "+formatSignedMoney(ts.WorstTrade))

	printSection(w, "🔥 Streaks")
	printKV(w, "Max Win Streak", fmt.Sprintf("%d", ts.MaxWin))
	printKV(w, "Max Loss Streak", fmt.Sprintf("%d", ts.MaxLoss))
	if ts.CurrentType != stats.StreakNone {
		printKV(w, "Current", fmt.Sprintf("%d %s", ts.Current, ts.CurrentType))
	}
}
