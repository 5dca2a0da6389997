package ledger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// Book 원장 로드 결과
type Book struct {
	Trades   []Trade         `json:"-"`
	Balance  BalanceSnapshot `json:"balance"`
	Rejected []Rejection     `json:"-"`
	Sources  []string        `json:"sources"`

	// Positions 상태 파일의 미청산 포지션 (없으면 nil)
	Positions map[string]OpenPosition `json:"-"`
}

// Loader 설정된 원장 소스를 모두 읽어 병합
// 소스 순서: JSONL → CSV → 상태 파일 recent_trades → Postgres
type Loader struct {
	TradesPath      string
	CSVPath         string
	StatePath       string
	DefaultStarting float64
	Repo            *Repository
}

// Load 모든 소스 로드
// 경로가 설정되었지만 파일이 없으면 건너뜀. 어떤 소스도 설정되지 않으면 ErrNoLedger
func (l *Loader) Load(ctx context.Context) (*Book, error) {
	if l.TradesPath == "" && l.CSVPath == "" && l.StatePath == "" && l.Repo == nil {
		return nil, ErrNoLedger
	}

	book := &Book{}
	var groups [][]Trade

	add := func(name string, raws []RawTrade) {
		trades, rejected := NormalizeAll(raws)
		groups = append(groups, trades)
		book.Rejected = append(book.Rejected, rejected...)
		book.Sources = append(book.Sources, name)
	}

	if l.TradesPath != "" {
		raws, err := LoadJSONL(l.TradesPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			add(l.TradesPath, raws)
		}
	}

	if l.CSVPath != "" {
		raws, err := LoadCSV(l.CSVPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			add(l.CSVPath, raws)
		}
	}

	var state *State
	if l.StatePath != "" {
		s, err := LoadState(l.StatePath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			state = s
			book.Positions = s.TradingState.Positions
			add(l.StatePath, s.RecentTrades)
		}
	}

	if l.Repo != nil {
		raws, err := l.Repo.ListClosedTrades(ctx, time.Time{})
		if err != nil {
			return nil, fmt.Errorf("ledger repository: %w", err)
		}
		add("postgres", raws)
	}

	book.Trades = Merge(groups...)
	book.Balance = Snapshot(state, book.Trades, l.DefaultStarting)
	return book, nil
}
