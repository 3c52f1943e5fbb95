package exchange

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	apperrors "github.com/chigozzdevv/hyperliquid-trading-agent/internal/errors"
)

const (
	// DefaultWSURL is the Hyperliquid mainnet websocket endpoint.
	DefaultWSURL = "wss://api.hyperliquid.xyz/ws"

	wsPingInterval   = 30 * time.Second
	wsReconnectDelay = 5 * time.Second
	wsWriteTimeout   = 10 * time.Second
)

// MidUpdate is one price tick from the allMids channel.
type MidUpdate struct {
	Symbol string
	Price  float64
	At     time.Time
}

// PriceStream maintains a websocket subscription to the exchange's
// allMids feed and fans updates out to a handler. It reconnects on
// read failure until the context is cancelled.
type PriceStream struct {
	url string
	log zerolog.Logger

	mu      sync.Mutex
	handler func(MidUpdate)
	onError func(error)
	latest  map[string]float64
}

func NewPriceStream(url string, log zerolog.Logger) *PriceStream {
	if url == "" {
		url = DefaultWSURL
	}
	return &PriceStream{
		url:    url,
		log:    log.With().Str("component", "stream").Logger(),
		latest: make(map[string]float64),
	}
}

// OnMid registers the tick handler. Must be called before Run.
func (p *PriceStream) OnMid(fn func(MidUpdate)) {
	p.mu.Lock()
	p.handler = fn
	p.mu.Unlock()
}

// OnError registers a handler for non-fatal stream errors.
func (p *PriceStream) OnError(fn func(error)) {
	p.mu.Lock()
	p.onError = fn
	p.mu.Unlock()
}

// Latest returns the most recent mid seen for symbol, or false if no
// tick for it has arrived yet.
func (p *PriceStream) Latest(symbol string) (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.latest[symbol]
	return v, ok
}

// Run blocks, serving the subscription until ctx is cancelled. Each
// dropped connection is retried after a fixed delay.
func (p *PriceStream) Run(ctx context.Context) error {
	for {
		if err := p.serve(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.log.Warn().Err(err).Msg("stream disconnected, reconnecting")
			p.reportError(err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wsReconnectDelay):
		}
	}
}

type wsSubscribe struct {
	Method       string `json:"method"`
	Subscription struct {
		Type string `json:"type"`
	} `json:"subscription"`
}

type wsMessage struct {
	Channel string `json:"channel"`
	Data    struct {
		Mids map[string]string `json:"mids"`
	} `json:"data"`
}

func (p *PriceStream) serve(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, p.url, nil)
	if err != nil {
		return apperrors.NewExchangeError("ws", "dial failed", apperrors.ErrConnectionFailed)
	}
	defer conn.Close()

	sub := wsSubscribe{Method: "subscribe"}
	sub.Subscription.Type = "allMids"
	if err := conn.WriteJSON(sub); err != nil {
		return apperrors.NewExchangeError("ws", "subscribe failed", err)
	}
	p.log.Info().Str("url", p.url).Msg("price stream connected")

	done := make(chan struct{})
	defer close(done)

	// Close the connection when the context ends so ReadMessage unblocks,
	// and keep the connection alive with periodic pings.
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				conn.Close()
				return
			case <-done:
				return
			case <-ticker.C:
				deadline := time.Now().Add(wsWriteTimeout)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					conn.Close()
					return
				}
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return apperrors.NewExchangeError("ws", "read failed", err)
		}

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Channel != "allMids" {
			continue
		}
		p.dispatch(msg.Data.Mids)
	}
}

func (p *PriceStream) dispatch(mids map[string]string) {
	now := time.Now()

	p.mu.Lock()
	handler := p.handler
	updates := make([]MidUpdate, 0, len(mids))
	for symbol, s := range mids {
		price, err := strconv.ParseFloat(s, 64)
		if err != nil || price <= 0 {
			continue
		}
		p.latest[symbol] = price
		updates = append(updates, MidUpdate{Symbol: symbol, Price: price, At: now})
	}
	p.mu.Unlock()

	if handler == nil {
		return
	}
	for _, u := range updates {
		handler(u)
	}
}

func (p *PriceStream) reportError(err error) {
	p.mu.Lock()
	fn := p.onError
	p.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}
