package positions

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/wonny/tradestats/internal/ledger"
	"github.com/wonny/tradestats/internal/pricefeed"
	"github.com/wonny/tradestats/pkg/logger"
)

// LedgerSource 원장 로더 (*ledger.Loader)
type LedgerSource interface {
	Load(ctx context.Context) (*ledger.Book, error)
}

// QuoteFetcher 시세 조회 (*pricefeed.Fetcher)
type QuoteFetcher interface {
	Fetch(ctx context.Context, symbols []string) (map[string]pricefeed.Quote, error)
}

// Service 상태 파일 포지션 → 시세 → 평가/위험/알림
type Service struct {
	source LedgerSource
	quotes QuoteFetcher
	logger *logger.Logger
	now    func() time.Time
}

// NewService creates a new positions service
func NewService(source LedgerSource, quotes QuoteFetcher, log *logger.Logger) *Service {
	return &Service{
		source: source,
		quotes: quotes,
		logger: log.Component("positions"),
		now:    time.Now,
	}
}

// SetClock 테스트용 시계 교체
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Snapshot 현재 포지션 평가
// 포트폴리오 가치 = 원장 현재 잔고. 시세가 없거나 0 인 심볼은 Unpriced
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	book, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	snap := &Snapshot{
		GeneratedAt:    now,
		PortfolioValue: book.Balance.Current,
		Positions:      []Metrics{},
		Unpriced:       []string{},
		Alerts:         []Alert{},
	}

	symbols := make([]string, 0, len(book.Positions))
	for sym := range book.Positions {
		symbols = append(symbols, sym)
	}
	slices.Sort(symbols)

	if len(symbols) == 0 {
		snap.Risk = ComputePortfolioRisk(nil, snap.PortfolioValue)
		return snap, nil
	}

	quotes, err := s.quotes.Fetch(ctx, symbols)
	switch {
	case errors.Is(err, pricefeed.ErrNoQuotes):
		s.logger.WithField("symbols", symbols).Warn("No quotes for open positions")
	case err != nil:
		return nil, fmt.Errorf("fetch position quotes: %w", err)
	}

	for _, sym := range symbols {
		pos := book.Positions[sym]
		q, ok := quotes[sym]
		if !ok {
			snap.Unpriced = append(snap.Unpriced, sym)
			continue
		}
		m, ok := ComputeMetrics(sym, pos, q, snap.PortfolioValue, now)
		if !ok {
			snap.Unpriced = append(snap.Unpriced, sym)
			continue
		}
		snap.Positions = append(snap.Positions, *m)
		snap.TotalUnrealizedPnL += m.UnrealizedPnL
		snap.Alerts = append(snap.Alerts, GenerateAlerts(sym, pos, q, now)...)
	}

	snap.Risk = ComputePortfolioRisk(snap.Positions, snap.PortfolioValue)

	s.logger.WithFields(map[string]interface{}{
		"positions": len(snap.Positions),
		"unpriced":  len(snap.Unpriced),
		"alerts":    len(snap.Alerts),
	}).Debug("Positions evaluated")

	return snap, nil
}
