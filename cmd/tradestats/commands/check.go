package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tradestats/pkg/redis"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "원장 소스/인프라 연결 점검",
	Long: `설정된 원장 소스와 인프라 연결 상태를 점검합니다.

점검 항목:
- JSONL / CSV / 상태 파일 존재 여부
- Postgres 연결 (DATABASE_URL 설정 시)
- Redis 연결 (REDIS_ENABLED 설정 시)
- 원장 로드 결과 (거래 수, 거부된 행)

Example:
  go run ./cmd/tradestats check --trades trades.jsonl`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	rt, err := setup(ctx)
	if err != nil {
		printError(out, err.Error())
		return err
	}
	defer rt.Close()

	printHeader(out, "Ledger Check", fmt.Sprintf("ENV: %s", rt.cfg.Env))

	printSection(out, "📁 Files")
	checkFile(cmd, "Trades (JSONL)", rt.cfg.Ledger.TradesPath)
	checkFile(cmd, "Trades (CSV)", rt.cfg.Ledger.CSVPath)
	checkFile(cmd, "State", rt.cfg.Ledger.StatePath)

	printSection(out, "🔌 Connections")
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if rt.db == nil {
		printKV(out, "Postgres", "not configured")
	} else {
		status := rt.db.HealthCheck(pingCtx)
		if status.Healthy {
			printKV(out, "Postgres", fmt.Sprintf("✅ %v (conns %d/%d idle)", status.ResponseTime, status.TotalConns, status.IdleConns))
		} else {
			printKV(out, "Postgres", "❌ "+status.Error)
		}
	}

	if !rt.cfg.Redis.Enabled {
		printKV(out, "Redis", "not configured")
	} else if rdb, err := redis.New(pingCtx, rt.cfg); err != nil {
		printKV(out, "Redis", "❌ "+err.Error())
	} else {
		printKV(out, "Redis", "✅ connected")
		_ = rdb.Close()
	}

	printSection(out, "📒 Ledger")
	book, err := rt.loadBook(ctx)
	if err != nil {
		printError(out, err.Error())
		return err
	}
	for _, line := range sourceLines(book) {
		fmt.Fprintf(out, "  %s\n", line)
	}
	printBalance(out, book.Balance)
	if book.Balance.Starting <= 0 {
		printWarning(out, zeroStartingWarning)
	}

	fmt.Fprintln(out)
	printSuccess(out, "Ledger is readable")
	return nil
}

// zeroStartingWarning 출발 잔고 0 이면 일 수익률이 첫날 0 으로 처리되고 이후 값이 폭주
const zeroStartingWarning = "Starting balance is 0: daily returns and projections are unreliable. Set --starting or trading_state.starting_balance"

func checkFile(cmd *cobra.Command, label, path string) {
	out := cmd.OutOrStdout()
	if path == "" {
		printKV(out, label, "not configured")
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		printKV(out, label, "⚠️  "+path+" (missing)")
		return
	}
	printKV(out, label, fmt.Sprintf("✅ %s (%d bytes)", path, info.Size()))
}
