package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// State 봇이 기록하는 대시보드 상태 파일
type State struct {
	Account struct {
		TotalUSD *float64 `json:"total_usd"`
	} `json:"account"`
	TradingState struct {
		StartingBalance *float64                `json:"starting_balance"`
		Positions       map[string]OpenPosition `json:"positions"` // 키: "BTC/USDT"
	} `json:"trading_state"`
	RecentTrades []RawTrade `json:"recent_trades"`
}

// OpenPosition 봇이 보유 중인 미청산 포지션
// stop/target 0 = 미설정, time 은 파싱 실패해도 로드는 성공
type OpenPosition struct {
	Entry  float64 `json:"entry"`
	Amount float64 `json:"amount"`
	Stop   float64 `json:"stop"`
	Target float64 `json:"target"`
	Time   string  `json:"time"`
	Reason string  `json:"reason,omitempty"`
}

// OpenedAt 진입 시각 (ParseTimestamp 규칙)
func (p OpenPosition) OpenedAt() (time.Time, bool) {
	return ParseTimestamp(p.Time)
}

// LoadState 상태 파일 로드
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state %s: %w", path, err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state %s: %w", path, err)
	}
	return &state, nil
}

// BalanceSnapshot 현재/시작 잔고
type BalanceSnapshot struct {
	Starting float64 `json:"starting_balance"`
	Current  float64 `json:"current_balance"`
	TotalPnL float64 `json:"total_pnl"`
	// CurrentFromAccount 계좌 잔고를 그대로 사용했는지 (false = starting + Σpnl)
	CurrentFromAccount bool `json:"current_from_account"`
}

// Snapshot 상태 파일과 거래 내역으로 잔고 계산
// state 가 nil 이거나 값이 없으면 defaultStarting 과 Σpnl 로 보정
func Snapshot(state *State, trades []Trade, defaultStarting float64) BalanceSnapshot {
	starting := decimal.NewFromFloat(defaultStarting)
	if state != nil && state.TradingState.StartingBalance != nil {
		starting = decimal.NewFromFloat(*state.TradingState.StartingBalance)
	}

	total := TotalPnL(trades)
	snap := BalanceSnapshot{
		Starting: starting.InexactFloat64(),
		TotalPnL: total.InexactFloat64(),
		Current:  starting.Add(total).InexactFloat64(),
	}

	if state != nil && state.Account.TotalUSD != nil {
		snap.Current = *state.Account.TotalUSD
		snap.CurrentFromAccount = true
	}

	return snap
}
