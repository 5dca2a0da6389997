package pricefeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradestats/pkg/httputil"
	"github.com/wonny/tradestats/pkg/logger"
	"github.com/wonny/tradestats/pkg/redis"
)

type fakeExchange struct {
	tickerStatus int
	geckoStatus  int
	singleStatus int
	failAll      atomic.Bool
	hits         atomic.Int32
}

func (fx *fakeExchange) status(configured int) int {
	if fx.failAll.Load() {
		return http.StatusNotFound
	}
	return configured
}

func (fx *fakeExchange) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/ticker/24hr", func(w http.ResponseWriter, r *http.Request) {
		fx.hits.Add(1)
		if code := fx.status(fx.tickerStatus); code != 0 {
			w.WriteHeader(code)
			return
		}
		_, _ = w.Write([]byte(`[
			{"symbol":"BTCUSDT","lastPrice":"43250.12000000","volume":"1520.5","priceChangePercent":"-1.25"},
			{"symbol":"ETHUSDT","lastPrice":"2280.50","volume":"30500","priceChangePercent":"2.10"},
			{"symbol":"ETHBTC","lastPrice":"0.0527","volume":"100","priceChangePercent":"0.5"}
		]`))
	})
	mux.HandleFunc("/api/v3/ticker/price", func(w http.ResponseWriter, r *http.Request) {
		fx.hits.Add(1)
		if code := fx.status(fx.singleStatus); code != 0 {
			w.WriteHeader(code)
			return
		}
		_, _ = w.Write([]byte(`{"symbol":"` + r.URL.Query().Get("symbol") + `","price":"0.00001234"}`))
	})
	mux.HandleFunc("/api/v3/simple/price", func(w http.ResponseWriter, r *http.Request) {
		fx.hits.Add(1)
		if code := fx.status(fx.geckoStatus); code != 0 {
			w.WriteHeader(code)
			return
		}
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":43100.5,"usd_24h_vol":2.5e10,"usd_24h_change":-1.1}}`))
	})
	return mux
}

func newFetcher(t *testing.T, fx *fakeExchange, store *redis.Cache) (*Fetcher, time.Time) {
	t.Helper()
	srv := httptest.NewServer(fx.handler())
	t.Cleanup(srv.Close)

	log := logger.Nop()
	client := httputil.New(log, 2*time.Second).DisableRetry()
	cache := NewCache(time.Minute, log)
	f := NewFetcher(client, FetcherConfig{BinanceURL: srv.URL, CoinGeckoURL: srv.URL + "/"}, cache, store, log)

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return now }
	cache.SetClock(func() time.Time { return now })
	return f, now
}

func TestSymbols(t *testing.T) {
	assert.Equal(t, "BTCUSDT", ExchangeSymbol("BTC/USDT"))

	s, ok := PairSymbol("SOLUSDT")
	assert.True(t, ok)
	assert.Equal(t, "SOL/USDT", s)

	_, ok = PairSymbol("ETHBTC")
	assert.False(t, ok)
	_, ok = PairSymbol("USDT")
	assert.False(t, ok)
}

func TestFetch_BinancePrimary(t *testing.T) {
	f, now := newFetcher(t, &fakeExchange{}, nil)

	quotes, err := f.Fetch(context.Background(), []string{"BTC/USDT", "ETH/USDT"})
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	btc := quotes["BTC/USDT"]
	assert.Equal(t, SourceBinance, btc.Source)
	assert.Equal(t, 43250.12, btc.Price)
	assert.Equal(t, 1520.5, btc.Volume24h)
	assert.Equal(t, -1.25, btc.Change24h)
	assert.Equal(t, now, btc.Timestamp)
	assert.False(t, btc.IsStale)

	assert.Equal(t, 2, f.Cache().Len())
}

func TestFetch_FallbackChain(t *testing.T) {
	f, _ := newFetcher(t, &fakeExchange{tickerStatus: http.StatusBadRequest}, nil)

	quotes, err := f.Fetch(context.Background(), []string{"BTC/USDT", "PEPE/USDT"})
	require.NoError(t, err)

	assert.Equal(t, SourceCoinGecko, quotes["BTC/USDT"].Source)
	assert.Equal(t, 43100.5, quotes["BTC/USDT"].Price)

	assert.Equal(t, SourceBinanceSingle, quotes["PEPE/USDT"].Source)
	assert.Equal(t, 0.00001234, quotes["PEPE/USDT"].Price)
}

func TestFetch_UsesFreshCache(t *testing.T) {
	fx := &fakeExchange{}
	f, _ := newFetcher(t, fx, nil)
	ctx := context.Background()

	_, err := f.Fetch(ctx, []string{"BTC/USDT"})
	require.NoError(t, err)
	hits := fx.hits.Load()

	quotes, err := f.Fetch(ctx, []string{"BTC/USDT"})
	require.NoError(t, err)
	assert.Equal(t, SourceBinance, quotes["BTC/USDT"].Source)
	assert.Equal(t, hits, fx.hits.Load())

	// 캐시에 없는 심볼이 섞이면 다시 조회
	_, err = f.Fetch(ctx, []string{"BTC/USDT", "ETH/USDT"})
	require.NoError(t, err)
	assert.Greater(t, fx.hits.Load(), hits)
}

func TestFetch_AllSourcesFail(t *testing.T) {
	fx := &fakeExchange{tickerStatus: 404, geckoStatus: 404, singleStatus: 404}
	f, _ := newFetcher(t, fx, nil)

	_, err := f.Fetch(context.Background(), []string{"BTC/USDT"})
	assert.ErrorIs(t, err, ErrNoQuotes)

	quotes, err := f.Fetch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestFetch_LastKnownFromRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewFromAddr(mr.Addr())
	defer client.Close()
	store := redis.NewCache(client, "tradestats")

	fx := &fakeExchange{}
	f, now := newFetcher(t, fx, store)
	ctx := context.Background()

	_, err := f.Fetch(ctx, []string{"ETH/USDT"})
	require.NoError(t, err)
	assert.True(t, mr.Exists("tradestats:cache:quote:ETH/USDT"))

	fx.failAll.Store(true)
	f.Cache().Clear()

	quotes, err := f.Fetch(ctx, []string{"ETH/USDT"})
	require.NoError(t, err)
	eth := quotes["ETH/USDT"]
	assert.True(t, eth.IsStale)
	assert.Equal(t, 2280.5, eth.Price)
	assert.True(t, now.Equal(eth.Timestamp))
}

func TestCache_UpdateOrdering(t *testing.T) {
	c := NewCache(time.Minute, logger.Nop())
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return now })

	assert.True(t, c.Update(Quote{Symbol: "BTC/USDT", Price: 1, Source: SourceCoinGecko, Timestamp: now}))

	// 더 오래된 시세 거부
	assert.False(t, c.Update(Quote{Symbol: "BTC/USDT", Price: 2, Source: SourceBinance, Timestamp: now.Add(-time.Second)}))

	// 같은 시각: 우선순위 높은 출처만
	assert.False(t, c.Update(Quote{Symbol: "BTC/USDT", Price: 3, Source: SourceBinanceSingle, Timestamp: now}))
	assert.True(t, c.Update(Quote{Symbol: "BTC/USDT", Price: 4, Source: SourceBinance, Timestamp: now}))

	q, ok := c.Get("BTC/USDT")
	require.True(t, ok)
	assert.Equal(t, 4.0, q.Price)

	_, ok = c.Get("ETH/USDT")
	assert.False(t, ok)
}

func TestCache_Staleness(t *testing.T) {
	c := NewCache(time.Minute, logger.Nop())
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return now })

	c.Update(Quote{Symbol: "BTC/USDT", Source: SourceBinance, Timestamp: now.Add(-2 * time.Minute)})
	c.Update(Quote{Symbol: "ETH/USDT", Source: SourceCoinGecko, Timestamp: now.Add(-10 * time.Second)})

	q, _ := c.Get("BTC/USDT")
	assert.True(t, q.IsStale)

	_, ok := c.GetFresh([]string{"BTC/USDT", "ETH/USDT"})
	assert.False(t, ok)
	fresh, ok := c.GetFresh([]string{"ETH/USDT"})
	assert.True(t, ok)
	assert.Len(t, fresh, 1)

	many := c.GetMany([]string{"BTC/USDT", "ETH/USDT", "SOL/USDT"})
	assert.Len(t, many, 2)

	stats := c.Stats()
	assert.Equal(t, 2, stats.TotalCount)
	assert.Equal(t, 1, stats.StaleCount)
	assert.Equal(t, 1, stats.FreshCount)
	assert.Equal(t, 1, stats.BySource[SourceBinance])

	assert.Equal(t, 1, c.CleanStale())
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Zero(t, c.Len())
}

func TestSourcePriority(t *testing.T) {
	assert.Greater(t, SourceBinance.Priority(), SourceCoinGecko.Priority())
	assert.Greater(t, SourceCoinGecko.Priority(), SourceBinanceSingle.Priority())
	assert.Zero(t, Source("unknown").Priority())
}
