package pricefeed

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/tradestats/pkg/httputil"
	"github.com/wonny/tradestats/pkg/logger"
	"github.com/wonny/tradestats/pkg/redis"
)

// ErrNoQuotes 모든 출처에서 시세를 얻지 못함
var ErrNoQuotes = errors.New("no quotes available")

// FetcherConfig 출처 URL (테스트에서 httptest 주소로 교체)
type FetcherConfig struct {
	BinanceURL   string
	CoinGeckoURL string
}

// Fetcher 다중 출처 시세 조회
// 우선순위: Binance 일괄 > CoinGecko > Binance 단일 > Redis 마지막 값(stale)
type Fetcher struct {
	client       *httputil.Client
	binanceURL   string
	coinGeckoURL string
	cache        *Cache
	store        *redis.Cache // nil 가능
	logger       *logger.Logger
	now          func() time.Time
}

// NewFetcher creates a new multi-source quote fetcher
func NewFetcher(client *httputil.Client, cfg FetcherConfig, cache *Cache, store *redis.Cache, log *logger.Logger) *Fetcher {
	return &Fetcher{
		client:       client,
		binanceURL:   strings.TrimRight(cfg.BinanceURL, "/"),
		coinGeckoURL: strings.TrimRight(cfg.CoinGeckoURL, "/"),
		cache:        cache,
		store:        store,
		logger:       log.Component("pricefeed"),
		now:          time.Now,
	}
}

// Cache returns the in-memory quote cache
func (f *Fetcher) Cache() *Cache {
	return f.cache
}

// Fetch 심볼별 최신 시세
// 모든 심볼이 캐시에 신선하게 있으면 네트워크 호출 없음
func (f *Fetcher) Fetch(ctx context.Context, symbols []string) (map[string]Quote, error) {
	if len(symbols) == 0 {
		return map[string]Quote{}, nil
	}

	if cached, ok := f.cache.GetFresh(symbols); ok {
		f.logger.Debug("Using cached quotes")
		return cached, nil
	}

	at := f.now()

	// 일괄 출처 병렬 조회 (출처 실패는 치명적이지 않음)
	var (
		mu      sync.Mutex
		results = make(map[Source]map[string]Quote, 2)
	)
	g, gctx := errgroup.WithContext(ctx)
	sources := map[Source]func(context.Context, []string, time.Time) (map[string]Quote, error){
		SourceBinance:   f.fetchBinance,
		SourceCoinGecko: f.fetchCoinGecko,
	}
	for src, fetch := range sources {
		src, fetch := src, fetch
		g.Go(func() error {
			quotes, err := fetch(gctx, symbols, at)
			if err != nil {
				f.logger.WithError(err).WithField("source", src).Warn("Quote source failed")
				return nil
			}
			f.logger.WithFields(map[string]interface{}{
				"source": src,
				"count":  len(quotes),
			}).Debug("Quote source fetched")
			mu.Lock()
			results[src] = quotes
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	quotes := make(map[string]Quote, len(symbols))
	for _, s := range symbols {
		if q, ok := results[SourceBinance][s]; ok {
			quotes[s] = q
			continue
		}
		if q, ok := results[SourceCoinGecko][s]; ok {
			quotes[s] = q
			continue
		}

		q, err := f.fetchBinanceSingle(ctx, s, at)
		if err == nil {
			quotes[s] = q
			continue
		}
		f.logger.WithError(err).WithField("symbol", s).Warn("Fallback quote failed")

		if q, ok := f.lastKnown(ctx, s); ok {
			quotes[s] = q
		}
	}

	for _, q := range quotes {
		f.cache.Update(q)
		f.persist(ctx, q)
	}

	if len(quotes) == 0 {
		return nil, ErrNoQuotes
	}

	f.logger.WithFields(map[string]interface{}{
		"requested": len(symbols),
		"fetched":   len(quotes),
	}).Info("Quote fetch complete")

	return quotes, nil
}

// persist Redis 에 마지막 시세 저장
func (f *Fetcher) persist(ctx context.Context, q Quote) {
	if f.store == nil || q.IsStale {
		return
	}
	if err := f.store.Set(ctx, redis.QuoteKey(q.Symbol), q, redis.TTLLong); err != nil {
		f.logger.WithError(err).Debug("Quote persist failed")
	}
}

// lastKnown Redis 에 남은 마지막 시세 (stale 표시)
func (f *Fetcher) lastKnown(ctx context.Context, symbol string) (Quote, bool) {
	if f.store == nil {
		return Quote{}, false
	}
	var q Quote
	found, err := f.store.Get(ctx, redis.QuoteKey(symbol), &q)
	if err != nil || !found {
		return Quote{}, false
	}
	q.IsStale = true
	return q, true
}
