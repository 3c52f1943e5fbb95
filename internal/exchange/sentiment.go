package exchange

import (
	"context"
	"encoding/json"
	"io"
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
	// DefaultSentimentURL serves the crypto Fear & Greed index.
	DefaultSentimentURL = "https://api.alternative.me/fng/?limit=1"

	// NeutralSentiment is used when the index cannot be fetched so the
	// scorer's sentiment component contributes nothing.
	NeutralSentiment = 50

	sentimentCacheTTL = 15 * time.Minute
)

// FearGreed reads the alternative.me Fear & Greed index. Readings are
// cached because the index updates once per day.
type FearGreed struct {
	url    string
	client *http.Client
	retry  utils.RetryConfig
	log    zerolog.Logger

	mu        sync.Mutex
	cached    models.Sentiment
	fetchedAt time.Time
}

func NewFearGreed(url string, log zerolog.Logger) *FearGreed {
	if url == "" {
		url = DefaultSentimentURL
	}
	return &FearGreed{
		url:    url,
		client: &http.Client{Timeout: requestTimeout},
		retry:  utils.DefaultRetryConfig(),
		log:    log.With().Str("component", "sentiment").Logger(),
	}
}

type fngPayload struct {
	Data []struct {
		Value          string `json:"value"`
		Classification string `json:"value_classification"`
		Timestamp      string `json:"timestamp"`
	} `json:"data"`
}

// Sentiment returns the latest index reading.
func (f *FearGreed) Sentiment(ctx context.Context) (models.Sentiment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.fetchedAt.IsZero() && time.Since(f.fetchedAt) < sentimentCacheTTL {
		return f.cached, nil
	}

	data, err := utils.RetryWithResult(ctx, f.retry, func() ([]byte, error) {
		return f.fetch(ctx)
	})
	if err != nil {
		return models.Sentiment{}, err
	}

	var payload fngPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return models.Sentiment{}, apperrors.NewExchangeError("fng", "decode response", err)
	}
	if len(payload.Data) == 0 {
		return models.Sentiment{}, apperrors.NewExchangeError("fng", "empty response", nil)
	}

	entry := payload.Data[0]
	value, err := strconv.Atoi(entry.Value)
	if err != nil {
		return models.Sentiment{}, apperrors.NewExchangeError("fng", "parse value", err)
	}

	ts := time.Now()
	if unix, err := strconv.ParseInt(entry.Timestamp, 10, 64); err == nil {
		ts = time.Unix(unix, 0)
	}

	f.cached = models.Sentiment{
		Value:          value,
		Classification: entry.Classification,
		Timestamp:      ts,
	}
	f.fetchedAt = time.Now()

	f.log.Debug().Int("value", value).Str("classification", entry.Classification).Msg("sentiment refreshed")
	return f.cached, nil
}

func (f *FearGreed) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, apperrors.NewExchangeError("fng", "build request", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.NewExchangeError("fng", "request failed", apperrors.ErrConnectionFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewExchangeErrorf("fng", "status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
