package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/wonny/tradestats/internal/pricefeed"
	"github.com/wonny/tradestats/pkg/logger"
)

// maxSymbols 요청당 최대 심볼 수
const maxSymbols = 50

// QuoteFetcher 시세 조회 (*pricefeed.Fetcher)
type QuoteFetcher interface {
	Fetch(ctx context.Context, symbols []string) (map[string]pricefeed.Quote, error)
}

// PriceHandler handles live quote endpoints
type PriceHandler struct {
	fetcher QuoteFetcher
	logger  *logger.Logger
}

// NewPriceHandler creates a new price handler
func NewPriceHandler(fetcher QuoteFetcher, log *logger.Logger) *PriceHandler {
	return &PriceHandler{
		fetcher: fetcher,
		logger:  log,
	}
}

// GetPrices returns quotes for the requested symbols
// GET /api/prices?symbols=BTC/USDT,ETH/USDT
func (h *PriceHandler) GetPrices(w http.ResponseWriter, r *http.Request) {
	symbols := parseSymbols(r.URL.Query().Get("symbols"))
	if len(symbols) == 0 {
		respondError(w, http.StatusBadRequest, "symbols is required")
		return
	}
	if len(symbols) > maxSymbols {
		respondError(w, http.StatusBadRequest, "too many symbols")
		return
	}

	quotes, err := h.fetcher.Fetch(r.Context(), symbols)
	if errors.Is(err, pricefeed.ErrNoQuotes) {
		respondError(w, http.StatusBadGateway, "No price source available")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch quotes")
		respondError(w, http.StatusInternalServerError, "Failed to fetch quotes")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"quotes": quotes,
		"count":  len(quotes),
	})
}

// parseSymbols "btc/usdt, ETH/USDT" → ["BTC/USDT", "ETH/USDT"] (중복 제거)
func parseSymbols(raw string) []string {
	seen := make(map[string]bool)
	var symbols []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		symbols = append(symbols, s)
	}
	return symbols
}
