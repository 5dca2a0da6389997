package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrMissingPnL pnl 필드 없음
	ErrMissingPnL = errors.New("trade has no pnl")
	// ErrInvalidPnL pnl 이 숫자가 아님
	ErrInvalidPnL = errors.New("trade pnl is not numeric")
	// ErrNoLedger 설정된 원장 소스가 없음
	ErrNoLedger = errors.New("no trade ledger source configured")
)

// RawTrade 외부 원장에서 읽은 정규화 이전 레코드
// pnl/pnl_pct 는 JSON 숫자 또는 숫자 문자열을 모두 허용 (빈 문자열 = 없음)
type RawTrade struct {
	Symbol    string `json:"symbol" csv:"symbol"`
	Reason    string `json:"reason" csv:"reason"`
	PnL       string `json:"pnl" csv:"pnl"`
	PnLPct    string `json:"pnl_pct" csv:"pnl_pct"`
	EntryTime string `json:"entry_time" csv:"entry_time"`
	ExitTime  string `json:"exit_time" csv:"exit_time"`
}

// UnmarshalJSON 숫자/문자열/null 혼용 필드 처리
func (r *RawTrade) UnmarshalJSON(data []byte) error {
	var aux struct {
		Symbol    string          `json:"symbol"`
		Reason    string          `json:"reason"`
		PnL       json.RawMessage `json:"pnl"`
		PnLPct    json.RawMessage `json:"pnl_pct"`
		EntryTime string          `json:"entry_time"`
		ExitTime  string          `json:"exit_time"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*r = RawTrade{
		Symbol:    aux.Symbol,
		Reason:    aux.Reason,
		PnL:       scalarText(aux.PnL),
		PnLPct:    scalarText(aux.PnLPct),
		EntryTime: aux.EntryTime,
		ExitTime:  aux.ExitTime,
	}
	return nil
}

func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// Trade 청산 완료된 거래 (불변 값 타입)
// ⭐ SSOT: 엔진은 이 타입만 입력으로 받음. 검증은 Normalize 에서 한 번만
type Trade struct {
	Symbol    string          `json:"symbol"`
	Reason    string          `json:"reason,omitempty"`
	PnL       float64         `json:"pnl"`
	PnLPct    *float64        `json:"pnl_pct,omitempty"`
	EntryTime Timestamp       `json:"entry_time"`
	ExitTime  Timestamp       `json:"exit_time"`
	Amount    decimal.Decimal `json:"-"` // pnl 원본 정밀도
}

// Normalize RawTrade 검증 및 변환
func Normalize(raw RawTrade) (Trade, error) {
	pnlText := strings.TrimSpace(raw.PnL)
	if pnlText == "" {
		return Trade{}, ErrMissingPnL
	}

	amount, err := decimal.NewFromString(pnlText)
	if err != nil {
		return Trade{}, fmt.Errorf("%w: %q", ErrInvalidPnL, raw.PnL)
	}

	trade := Trade{
		Symbol:    raw.Symbol,
		Reason:    raw.Reason,
		PnL:       amount.InexactFloat64(),
		EntryTime: NewTimestamp(raw.EntryTime),
		ExitTime:  NewTimestamp(raw.ExitTime),
		Amount:    amount,
	}

	// pnl_pct 는 선택 필드: 숫자가 아니면 없는 것으로 취급
	if pctText := strings.TrimSpace(raw.PnLPct); pctText != "" {
		if pct, err := decimal.NewFromString(pctText); err == nil {
			v := pct.InexactFloat64()
			trade.PnLPct = &v
		}
	}

	return trade, nil
}

// Rejection 정규화 실패 레코드
type Rejection struct {
	Index int
	Err   error
}

// NormalizeAll 전체 레코드 정규화. 실패 레코드는 제외하고 사유를 반환
func NormalizeAll(raws []RawTrade) ([]Trade, []Rejection) {
	trades := make([]Trade, 0, len(raws))
	var rejected []Rejection

	for i, raw := range raws {
		trade, err := Normalize(raw)
		if err != nil {
			rejected = append(rejected, Rejection{Index: i, Err: err})
			continue
		}
		trades = append(trades, trade)
	}

	return trades, rejected
}

// New 파싱된 값으로 Trade 생성 (테스트/내부 호출용)
func New(symbol string, pnl float64, entryTime, exitTime string) Trade {
	return Trade{
		Symbol:    symbol,
		PnL:       pnl,
		EntryTime: NewTimestamp(entryTime),
		ExitTime:  NewTimestamp(exitTime),
		Amount:    decimal.NewFromFloat(pnl),
	}
}

// IsWin pnl > 0 인 경우만 승리 (0 은 패배)
func (t Trade) IsWin() bool {
	return t.PnL > 0
}

// SortByExit 청산 시각 기준 정렬된 복사본 반환 (입력은 변경하지 않음)
func SortByExit(trades []Trade) []Trade {
	sorted := make([]Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ExitTime.SortKey() < sorted[j].ExitTime.SortKey()
	})
	return sorted
}

// PnLSeries 주어진 순서 그대로의 pnl 배열
func PnLSeries(trades []Trade) []float64 {
	values := make([]float64, len(trades))
	for i, t := range trades {
		values[i] = t.PnL
	}
	return values
}

// TotalPnL decimal 정밀도로 합산한 순손익
func TotalPnL(trades []Trade) decimal.Decimal {
	total := decimal.Zero
	for _, t := range trades {
		amount := t.Amount
		if amount.IsZero() && t.PnL != 0 {
			amount = decimal.NewFromFloat(t.PnL)
		}
		total = total.Add(amount)
	}
	return total
}
