package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Ledger source flags (비어 있으면 환경변수 설정 사용)
	tradesPath  string
	csvPath     string
	statePath   string
	databaseURL string

	// Balance overrides
	startingBalance float64
	currentBalance  float64

	// Engine overrides
	engineConfigPath string
	seed             int64
	simulations      int

	outputFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tradestats",
	Short: "Trade ledger statistics and balance projections",
	Long: `tradestats - 거래 원장 통계 및 잔고 전망

청산된 거래 원장(JSONL, CSV, 대시보드 상태 파일, Postgres)을 읽어
거래 통계, 일별 수익률, 변동성/추세, 복리 전망, Monte Carlo 분포를 계산합니다.

Usage:
  go run ./cmd/tradestats [command]

Examples:
  go run ./cmd/tradestats stats --trades trades.jsonl
  go run ./cmd/tradestats project --state dashboard.json --seed 42
  go run ./cmd/tradestats montecarlo --horizon 30 --simulations 10000
  go run ./cmd/tradestats performance --period 7 --output json
  go run ./cmd/tradestats serve --port 8089`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if outputFormat != "text" && outputFormat != "json" {
			return fmt.Errorf("--output must be text or json, got %q", outputFormat)
		}
		if startingBalance < 0 || currentBalance < 0 {
			return fmt.Errorf("balances must be >= 0")
		}
		if simulations < 0 {
			return fmt.Errorf("--simulations must be >= 0")
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with a cancellable context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.StringVar(&tradesPath, "trades", "", "JSONL 거래 원장 경로 (기본: LEDGER_TRADES_PATH)")
	pf.StringVar(&csvPath, "csv", "", "CSV 거래 원장 경로 (기본: LEDGER_CSV_PATH)")
	pf.StringVar(&statePath, "state", "", "대시보드 상태 파일 경로 (기본: LEDGER_STATE_PATH)")
	pf.StringVar(&databaseURL, "db", "", "Postgres 원장 DSN (기본: DATABASE_URL)")

	pf.Float64Var(&startingBalance, "starting", 0, "시작 잔고 (상태 파일에 없을 때)")
	pf.Float64Var(&currentBalance, "current", 0, "현재 잔고 강제 지정 (0=원장에서 계산)")

	pf.StringVar(&engineConfigPath, "engine-config", "", "엔진 설정 YAML (기본: ENGINE_CONFIG_PATH)")
	pf.Int64Var(&seed, "seed", 0, "Monte Carlo 시드 (0=설정값)")
	pf.IntVar(&simulations, "simulations", 0, "호라이즌별 시뮬레이션 횟수 (0=설정값)")

	pf.StringVarP(&outputFormat, "output", "o", "text", "출력 형식 (text, json)")
}
