package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/tradestats/internal/positions"
)

var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "미청산 포지션 평가",
	Long: `상태 파일(trading_state.positions)의 미청산 포지션을 실시간 시세로 평가합니다.

출력:
- 포지션별 미실현 손익, 손절/목표가까지 거리, R:R, 보유 시간, 위험 등급
- 포트폴리오 노출/집중도, 파라메트릭 VaR(1.65σ), 전량 손절 시 손실, 위험 점수
- 가격 변동/손절 근접/목표 근접/고변동성/장기 보유 알림

포트폴리오 가치는 원장의 현재 잔고(account.total_usd 또는 --current)를 사용합니다.

Example:
  go run ./cmd/tradestats positions --state dashboard.json
  go run ./cmd/tradestats positions --state dashboard.json --output json`,
	RunE: runPositions,
}

func init() {
	rootCmd.AddCommand(positionsCmd)
}

func runPositions(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	// --current 덮어쓰기가 적용된 원장을 고정 소스로 사용
	book, err := rt.loadBook(ctx)
	if err != nil {
		return err
	}
	service := positions.NewService(staticBook{book}, rt.quoteFetcher(nil), rt.log)

	snap, err := service.Snapshot(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		return writeJSON(out, snap)
	}

	printHeader(out, "Open Positions", sourceLines(book)...)
	if len(snap.Positions) == 0 && len(snap.Unpriced) == 0 {
		printWarning(out, "No open positions in the state file")
		return nil
	}

	printSection(out, "📌 Positions")
	widths := []int{12, 12, 12, 14, 9, 9, 9, 10}
	printTableHeader(out, []string{"Symbol", "Entry", "Price", "Unrealized", "P&L %", "To Stop", "Held", "Risk"}, widths)
	for _, m := range snap.Positions {
		printTableRow(out, []string{
			m.Symbol,
			formatPrice(m.Entry),
			formatPrice(m.CurrentPrice),
			formatSignedMoney(m.UnrealizedPnL),
			formatPct(m.UnrealizedPnLPct),
			formatPct(m.DistToStopPct),
			m.HeldFor,
			string(m.RiskLevel),
		}, widths)
	}
	if len(snap.Unpriced) > 0 {
		printWarning(out, fmt.Sprintf("No quote for: %v", snap.Unpriced))
	}

	printPortfolioRisk(out, snap)
	printAlerts(out, snap.Alerts)
	return nil
}

func printPortfolioRisk(out io.Writer, snap *positions.Snapshot) {
	r := snap.Risk
	printSection(out, "⚠️  Portfolio Risk")
	printKV(out, "Portfolio Value", formatMoney(snap.PortfolioValue))
	printKV(out, "Unrealized P&L", formatSignedMoney(snap.TotalUnrealizedPnL))
	printKV(out, "Positions", strconv.Itoa(r.PositionCount))
	printKV(out, "Market Exposure", formatPct(r.TotalExposurePct))
	printKV(out, "Concentration", formatPct(r.ConcentrationPct))
	printKV(out, "VaR (95%)", formatMoney(r.VaR95))
	printKV(out, "All-Stops Loss", formatMoney(r.MaxDrawdownRisk))
	printKV(out, "Correlation Risk", string(r.CorrelationRisk))
	printKV(out, "Leverage", fmt.Sprintf("%.2fx", r.LeverageRatio))
	printKV(out, "Risk Score", fmt.Sprintf("%.0f/100", r.RiskScore))
}

func printAlerts(out io.Writer, alerts []positions.Alert) {
	printSection(out, "🔔 Alerts")
	if len(alerts) == 0 {
		fmt.Fprintln(out, "  none")
		return
	}
	for _, a := range alerts {
		marker := " "
		if a.ActionRequired {
			marker = "!"
		}
		fmt.Fprintf(out, "  %s [%-11s] %s (%s)\n", marker, a.Severity, a.Message, a.Details)
	}
}

// formatPrice 소수점 이하 자릿수가 많은 코인 가격용
func formatPrice(v float64) string {
	if v >= 1 {
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%.6f", v)
}
