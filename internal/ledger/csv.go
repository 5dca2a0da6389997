package ledger

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

// ReadCSV 헤더가 있는 CSV 원장 파싱 (symbol,reason,pnl,pnl_pct,entry_time,exit_time)
func ReadCSV(r io.Reader) ([]RawTrade, error) {
	var rows []*RawTrade
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	trades := make([]RawTrade, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			trades = append(trades, *row)
		}
	}
	return trades, nil
}

// LoadCSV 파일에서 CSV 원장 로드
func LoadCSV(path string) ([]RawTrade, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	trades, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return trades, nil
}

// WriteCSV 거래 목록을 CSV 로 내보내기
func WriteCSV(w io.Writer, trades []Trade) error {
	rows := make([]*RawTrade, 0, len(trades))
	for _, t := range trades {
		row := &RawTrade{
			Symbol:    t.Symbol,
			Reason:    t.Reason,
			PnL:       t.Amount.String(),
			EntryTime: t.EntryTime.Raw,
			ExitTime:  t.ExitTime.Raw,
		}
		if t.PnLPct != nil {
			row.PnLPct = fmt.Sprintf("%g", *t.PnLPct)
		}
		rows = append(rows, row)
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
