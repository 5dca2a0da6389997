package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// binanceTicker /api/v3/ticker/24hr 항목 (숫자는 문자열)
type binanceTicker struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	Volume             string `json:"volume"`
	PriceChangePercent string `json:"priceChangePercent"`
}

// binancePrice /api/v3/ticker/price 응답
type binancePrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// coinGeckoPrice /api/v3/simple/price 항목
type coinGeckoPrice struct {
	USD       float64 `json:"usd"`
	Volume24h float64 `json:"usd_24h_vol"`
	Change24h float64 `json:"usd_24h_change"`
}

// fetchBinance 24시간 티커 일괄 조회 (1순위)
func (f *Fetcher) fetchBinance(ctx context.Context, symbols []string, at time.Time) (map[string]Quote, error) {
	var tickers []binanceTicker
	if err := f.client.GetJSON(ctx, f.binanceURL+"/api/v3/ticker/24hr", &tickers); err != nil {
		return nil, fmt.Errorf("binance ticker: %w", err)
	}

	wanted := toSet(symbols)
	quotes := make(map[string]Quote)
	for _, t := range tickers {
		symbol, ok := PairSymbol(t.Symbol)
		if !ok || !wanted[symbol] {
			continue
		}
		price, err := decimal.NewFromString(t.LastPrice)
		if err != nil {
			f.logger.WithField("symbol", t.Symbol).WithError(err).Debug("Skipped unparsable binance price")
			continue
		}
		quotes[symbol] = Quote{
			Symbol:    symbol,
			Price:     price.InexactFloat64(),
			Source:    SourceBinance,
			Volume24h: parseDecimal(t.Volume),
			Change24h: parseDecimal(t.PriceChangePercent),
			Timestamp: at,
		}
	}
	return quotes, nil
}

// fetchCoinGecko simple/price 조회 (2순위, 매핑된 코인만)
func (f *Fetcher) fetchCoinGecko(ctx context.Context, symbols []string, at time.Time) (map[string]Quote, error) {
	reverse := make(map[string]string)
	var ids []string
	for _, s := range symbols {
		if id, ok := coinGeckoIDs[s]; ok {
			ids = append(ids, id)
			reverse[id] = s
		}
	}
	if len(ids) == 0 {
		return map[string]Quote{}, nil
	}

	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("vs_currencies", "usd")
	params.Set("include_24hr_change", "true")
	params.Set("include_24hr_vol", "true")

	var data map[string]coinGeckoPrice
	if err := f.client.GetJSON(ctx, f.coinGeckoURL+"/api/v3/simple/price?"+params.Encode(), &data); err != nil {
		return nil, fmt.Errorf("coingecko price: %w", err)
	}

	quotes := make(map[string]Quote, len(data))
	for id, p := range data {
		symbol, ok := reverse[id]
		if !ok {
			continue
		}
		quotes[symbol] = Quote{
			Symbol:    symbol,
			Price:     p.USD,
			Source:    SourceCoinGecko,
			Volume24h: p.Volume24h,
			Change24h: p.Change24h,
			Timestamp: at,
		}
	}
	return quotes, nil
}

// fetchBinanceSingle 단일 심볼 조회 (최후 수단)
func (f *Fetcher) fetchBinanceSingle(ctx context.Context, symbol string, at time.Time) (Quote, error) {
	body, err := f.client.Get(ctx, f.binanceURL+"/api/v3/ticker/price?symbol="+url.QueryEscape(ExchangeSymbol(symbol)))
	if err != nil {
		return Quote{}, fmt.Errorf("binance price %s: %w", symbol, err)
	}

	var p binancePrice
	if err := json.Unmarshal(body, &p); err != nil {
		return Quote{}, fmt.Errorf("binance price %s: %w", symbol, err)
	}
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return Quote{}, fmt.Errorf("binance price %s: %w", symbol, err)
	}

	return Quote{
		Symbol:    symbol,
		Price:     price.InexactFloat64(),
		Source:    SourceBinanceSingle,
		Timestamp: at,
	}, nil
}

func parseDecimal(s string) float64 {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

func toSet(symbols []string) map[string]bool {
	set := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		set[s] = true
	}
	return set
}
