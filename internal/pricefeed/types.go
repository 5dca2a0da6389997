package pricefeed

import (
	"strings"
	"time"
)

// Quote 실시간 시세 (심볼 형식: "BTC/USDT")
// ⭐ SSOT: 시세 데이터 구조
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Source    Source    `json:"source"`
	Volume24h float64   `json:"volume_24h"`
	Change24h float64   `json:"change_24h"` // %
	Timestamp time.Time `json:"timestamp"`
	IsStale   bool      `json:"is_stale"`
}

// Source 시세 출처
type Source string

const (
	SourceBinance       Source = "Binance"
	SourceCoinGecko     Source = "CoinGecko"
	SourceBinanceSingle Source = "Binance (Individual)"
)

// Priority returns priority for source (higher = better)
func (s Source) Priority() int {
	switch s {
	case SourceBinance:
		return 3
	case SourceCoinGecko:
		return 2
	case SourceBinanceSingle:
		return 1
	default:
		return 0
	}
}

// ExchangeSymbol "BTC/USDT" → "BTCUSDT"
func ExchangeSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "")
}

// PairSymbol "BTCUSDT" → "BTC/USDT" (USDT 페어만)
func PairSymbol(exchangeSymbol string) (string, bool) {
	base, ok := strings.CutSuffix(exchangeSymbol, "USDT")
	if !ok || base == "" {
		return "", false
	}
	return base + "/USDT", true
}

// coinGeckoIDs CoinGecko 코인 ID 매핑
var coinGeckoIDs = map[string]string{
	"BTC/USDT":   "bitcoin",
	"ETH/USDT":   "ethereum",
	"SOL/USDT":   "solana",
	"DOGE/USDT":  "dogecoin",
	"ADA/USDT":   "cardano",
	"MATIC/USDT": "polygon",
	"DOT/USDT":   "polkadot",
	"AVAX/USDT":  "avalanche-2",
	"LINK/USDT":  "chainlink",
	"UNI/USDT":   "uniswap",
	"ATOM/USDT":  "cosmos",
}
