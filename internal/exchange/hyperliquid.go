package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/chigozzdevv/hyperliquid-trading-agent/internal/errors"
	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/models"
	"github.com/chigozzdevv/hyperliquid-trading-agent/pkg/utils"
)

const (
	// DefaultAPIURL is the Hyperliquid mainnet REST endpoint.
	DefaultAPIURL = "https://api.hyperliquid.xyz"

	infoPath       = "/info"
	requestTimeout = 10 * time.Second

	// Perp prices carry at most 6 decimal places; size decimals eat into
	// that budget per the exchange tick rules.
	maxPriceDecimals = 6
)

var intervalDurations = map[models.Interval]time.Duration{
	models.Interval1m:  time.Minute,
	models.Interval5m:  5 * time.Minute,
	models.Interval15m: 15 * time.Minute,
	models.Interval1h:  time.Hour,
	models.Interval4h:  4 * time.Hour,
	models.Interval1d:  24 * time.Hour,
}

// Hyperliquid talks to the exchange's public /info endpoint. It
// implements MarketData, MetaReader and AccountReader.
type Hyperliquid struct {
	baseURL string
	client  *http.Client
	retry   utils.RetryConfig
	log     zerolog.Logger

	mu          sync.RWMutex
	instruments map[string]models.Instrument
}

func NewHyperliquid(baseURL string, log zerolog.Logger) *Hyperliquid {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &Hyperliquid{
		baseURL: baseURL,
		client:  &http.Client{Timeout: requestTimeout},
		retry:   utils.DefaultRetryConfig(),
		log:     log.With().Str("component", "hyperliquid").Logger(),
	}
}

type candlePayload struct {
	OpenTime  int64  `json:"t"`
	CloseTime int64  `json:"T"`
	Symbol    string `json:"s"`
	Interval  string `json:"i"`
	Open      string `json:"o"`
	Close     string `json:"c"`
	High      string `json:"h"`
	Low       string `json:"l"`
	Volume    string `json:"v"`
	Trades    int    `json:"n"`
}

// Candles fetches the most recent candles for symbol, oldest first.
func (h *Hyperliquid) Candles(ctx context.Context, symbol string, interval models.Interval, limit int) ([]models.Candle, error) {
	dur, ok := intervalDurations[interval]
	if !ok {
		return nil, NewExchangeErrorf("candleSnapshot", "unsupported interval %q", interval)
	}
	if limit <= 0 {
		limit = 100
	}

	end := time.Now()
	start := end.Add(-time.Duration(limit) * dur)

	body := map[string]any{
		"type": "candleSnapshot",
		"req": map[string]any{
			"coin":      symbol,
			"interval":  string(interval),
			"startTime": start.UnixMilli(),
			"endTime":   end.UnixMilli(),
		},
	}

	var payload []candlePayload
	if err := h.post(ctx, "candleSnapshot", body, &payload); err != nil {
		return nil, err
	}

	candles := make([]models.Candle, 0, len(payload))
	for _, p := range payload {
		c, err := p.toCandle()
		if err != nil {
			h.log.Warn().Err(err).Str("symbol", symbol).Msg("dropping malformed candle")
			continue
		}
		candles = append(candles, c)
	}
	if len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

func (p candlePayload) toCandle() (models.Candle, error) {
	var c models.Candle
	var err error
	if c.Open, err = strconv.ParseFloat(p.Open, 64); err != nil {
		return c, fmt.Errorf("parse open: %w", err)
	}
	if c.High, err = strconv.ParseFloat(p.High, 64); err != nil {
		return c, fmt.Errorf("parse high: %w", err)
	}
	if c.Low, err = strconv.ParseFloat(p.Low, 64); err != nil {
		return c, fmt.Errorf("parse low: %w", err)
	}
	if c.Close, err = strconv.ParseFloat(p.Close, 64); err != nil {
		return c, fmt.Errorf("parse close: %w", err)
	}
	if c.Volume, err = strconv.ParseFloat(p.Volume, 64); err != nil {
		return c, fmt.Errorf("parse volume: %w", err)
	}
	c.OpenTime = time.UnixMilli(p.OpenTime)
	c.CloseTime = time.UnixMilli(p.CloseTime)
	c.Symbol = p.Symbol
	c.Interval = models.Interval(p.Interval)
	c.Trades = p.Trades
	return c, nil
}

// AllMids returns the current mid price for every listed coin.
func (h *Hyperliquid) AllMids(ctx context.Context) (map[string]float64, error) {
	var raw map[string]string
	if err := h.post(ctx, "allMids", map[string]any{"type": "allMids"}, &raw); err != nil {
		return nil, err
	}

	mids := make(map[string]float64, len(raw))
	for coin, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			continue
		}
		mids[coin] = v
	}
	return mids, nil
}

// Price returns the mid price for symbol. A missing or non-positive mid
// is reported as ErrPriceUnavailable so callers never size against a
// zero price.
func (h *Hyperliquid) Price(ctx context.Context, symbol string) (float64, error) {
	mids, err := h.AllMids(ctx)
	if err != nil {
		return 0, err
	}
	price, ok := mids[symbol]
	if !ok || price <= 0 {
		return 0, fmt.Errorf("%s: %w", symbol, apperrors.ErrPriceUnavailable)
	}
	return price, nil
}

type metaPayload struct {
	Universe []struct {
		Name        string `json:"name"`
		SzDecimals  int    `json:"szDecimals"`
		MaxLeverage int    `json:"maxLeverage"`
	} `json:"universe"`
}

// Instruments fetches the perp universe and caches it; the cache is
// refreshed on every successful call.
func (h *Hyperliquid) Instruments(ctx context.Context) ([]models.Instrument, error) {
	var payload metaPayload
	if err := h.post(ctx, "meta", map[string]any{"type": "meta"}, &payload); err != nil {
		return nil, err
	}

	instruments := make([]models.Instrument, 0, len(payload.Universe))
	cache := make(map[string]models.Instrument, len(payload.Universe))
	for _, u := range payload.Universe {
		inst := models.Instrument{
			Symbol:        u.Name,
			LotSize:       math.Pow(10, -float64(u.SzDecimals)),
			TickSize:      math.Pow(10, -float64(maxPriceDecimals-u.SzDecimals)),
			MinOrderValue: 10,
			MaxLeverage:   float64(u.MaxLeverage),
		}
		instruments = append(instruments, inst)
		cache[u.Name] = inst
	}

	h.mu.Lock()
	h.instruments = cache
	h.mu.Unlock()

	return instruments, nil
}

// Instrument returns the metadata for a single symbol, hitting the
// cache first.
func (h *Hyperliquid) Instrument(ctx context.Context, symbol string) (models.Instrument, error) {
	h.mu.RLock()
	inst, ok := h.instruments[symbol]
	h.mu.RUnlock()
	if ok {
		return inst, nil
	}

	if _, err := h.Instruments(ctx); err != nil {
		return models.Instrument{}, err
	}

	h.mu.RLock()
	inst, ok = h.instruments[symbol]
	h.mu.RUnlock()
	if !ok {
		return models.Instrument{}, fmt.Errorf("%s: %w", symbol, apperrors.ErrSymbolNotFound)
	}
	return inst, nil
}

type clearinghousePayload struct {
	MarginSummary struct {
		AccountValue    string `json:"accountValue"`
		TotalMarginUsed string `json:"totalMarginUsed"`
	} `json:"marginSummary"`
}

// AccountState returns the margin summary for the given wallet address.
func (h *Hyperliquid) AccountState(ctx context.Context, address string) (models.AccountState, error) {
	body := map[string]any{"type": "clearinghouseState", "user": address}

	var payload clearinghousePayload
	if err := h.post(ctx, "clearinghouseState", body, &payload); err != nil {
		return models.AccountState{}, err
	}

	value, err := strconv.ParseFloat(payload.MarginSummary.AccountValue, 64)
	if err != nil {
		return models.AccountState{}, NewExchangeErrorf("clearinghouseState", "parse accountValue: %v", err)
	}
	used, err := strconv.ParseFloat(payload.MarginSummary.TotalMarginUsed, 64)
	if err != nil {
		return models.AccountState{}, NewExchangeErrorf("clearinghouseState", "parse totalMarginUsed: %v", err)
	}

	return models.AccountState{AccountValue: value, TotalMarginUsed: used}, nil
}

// post sends one /info request with retry and decodes the response into
// out.
func (h *Hyperliquid) post(ctx context.Context, endpoint string, body any, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return apperrors.NewExchangeError(endpoint, "encode request", err)
	}

	data, err := utils.RetryWithResult(ctx, h.retry, func() ([]byte, error) {
		return h.doPost(ctx, endpoint, encoded)
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.NewExchangeError(endpoint, "decode response", err)
	}
	return nil
}

func (h *Hyperliquid) doPost(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+infoPath, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewExchangeError(endpoint, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, apperrors.NewExchangeError(endpoint, "request failed", apperrors.ErrConnectionFailed)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewExchangeError(endpoint, "read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, apperrors.NewExchangeError(endpoint, "rate limited", apperrors.ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		return nil, NewExchangeErrorf(endpoint, "status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}
	return data, nil
}

// NewExchangeErrorf builds an ExchangeError with a formatted message and
// no wrapped cause.
func NewExchangeErrorf(endpoint, format string, args ...any) error {
	return apperrors.NewExchangeError(endpoint, fmt.Sprintf(format, args...), nil)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
