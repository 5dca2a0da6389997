package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Querier pgxpool.Pool 및 pgxmock 공용 인터페이스
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository Postgres 청산 거래 테이블 조회
// ⭐ SSOT: 원장 DB 조회는 여기서만
type Repository struct {
	db Querier
}

// NewRepository creates a new ledger repository
func NewRepository(db Querier) *Repository {
	return &Repository{db: db}
}

const closedTradesQuery = `
	SELECT symbol, reason, pnl::text, COALESCE(pnl_pct::text, ''), entry_time, exit_time
	FROM ledger.closed_trades
	WHERE exit_time >= $1
	ORDER BY exit_time, id
`

// ListClosedTrades since 이후 청산된 거래 조회 (zero 이면 전체)
func (r *Repository) ListClosedTrades(ctx context.Context, since time.Time) ([]RawTrade, error) {
	rows, err := r.db.Query(ctx, closedTradesQuery, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query closed trades: %w", err)
	}
	defer rows.Close()

	var trades []RawTrade
	for rows.Next() {
		var (
			raw         RawTrade
			entry, exit time.Time
		)
		if err := rows.Scan(&raw.Symbol, &raw.Reason, &raw.PnL, &raw.PnLPct, &entry, &exit); err != nil {
			return nil, fmt.Errorf("failed to scan closed trade: %w", err)
		}
		raw.EntryTime = entry.Format(time.RFC3339Nano)
		raw.ExitTime = exit.Format(time.RFC3339Nano)
		trades = append(trades, raw)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate closed trades: %w", err)
	}

	return trades, nil
}
