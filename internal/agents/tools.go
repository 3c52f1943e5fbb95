package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	apperrors "github.com/chigozzdevv/hyperliquid-trading-agent/internal/errors"
	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/exchange"
	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/models"
	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/risk"
	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/scanner"
)

// ToolExecutor executes AI tool calls against the scanner, the exchange
// and the position sizer.
type ToolExecutor struct {
	scanner   *scanner.Scanner
	market    exchange.MarketData
	meta      exchange.MetaReader
	account   exchange.AccountReader
	sentiment exchange.SentimentReader
	sizer     *risk.Sizer

	wallet   string
	symbols  []string
	interval models.Interval
}

// NewToolExecutor creates a tool executor bound to a wallet address and
// a default scan universe.
func NewToolExecutor(sc *scanner.Scanner, market exchange.MarketData, meta exchange.MetaReader, account exchange.AccountReader, sentiment exchange.SentimentReader, sizer *risk.Sizer, wallet string, symbols []string, interval models.Interval) *ToolExecutor {
	return &ToolExecutor{
		scanner:   sc,
		market:    market,
		meta:      meta,
		account:   account,
		sentiment: sentiment,
		sizer:     sizer,
		wallet:    wallet,
		symbols:   symbols,
		interval:  interval,
	}
}

// GetToolDefinitions returns all available tool definitions for OpenAI
// function calling.
func GetToolDefinitions() []openai.Tool {
	return []openai.Tool{
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "scan_opportunities",
				Description: "Scan the configured symbol universe and rank trading opportunities by score. Returns metrics, setup classification, detected patterns and signals per symbol.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"symbols": {
							"type": "array",
							"items": {"type": "string"},
							"description": "Symbols to scan (e.g., BTC, ETH). Defaults to the configured universe."
						},
						"interval": {
							"type": "string",
							"enum": ["1m", "5m", "15m", "1h", "4h", "1d"],
							"description": "Candle interval (default 1h)"
						},
						"top": {
							"type": "integer",
							"description": "Return only the top N opportunities",
							"default": 5
						}
					}
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "analyze_symbol",
				Description: "Run full analysis for one symbol: price, 24h change, RSI, win rate, Sharpe ratio, max drawdown, volatility, opportunity score and setup classification.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"symbol": {
							"type": "string",
							"description": "Coin symbol (e.g., BTC)"
						},
						"interval": {
							"type": "string",
							"enum": ["1m", "5m", "15m", "1h", "4h", "1d"],
							"description": "Candle interval (default 1h)"
						}
					},
					"required": ["symbol"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "detect_patterns",
				Description: "Detect chart patterns (rising wedge, double top, bull flag, descending triangle) for a symbol. Each pattern includes suggested entry, target and stop levels.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"symbol": {
							"type": "string",
							"description": "Coin symbol"
						},
						"interval": {
							"type": "string",
							"enum": ["1m", "5m", "15m", "1h", "4h", "1d"],
							"description": "Candle interval (default 1h)"
						}
					},
					"required": ["symbol"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "calculate_position_size",
				Description: "Compute a risk-bounded position size for a trade. Applies the account's risk tier, the per-trade risk cap, exchange lot and tick rounding and the minimum order value.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"symbol": {
							"type": "string",
							"description": "Coin symbol"
						},
						"entry": {
							"type": "number",
							"description": "Intended entry price. Defaults to the current mid price."
						},
						"stop": {
							"type": "number",
							"description": "Stop loss price"
						},
						"leverage": {
							"type": "number",
							"description": "Requested leverage (default 3)",
							"default": 3
						}
					},
					"required": ["symbol", "stop"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "market_sentiment",
				Description: "Get the current crypto Fear & Greed index (0 = extreme fear, 100 = extreme greed).",
				Parameters:  json.RawMessage(`{"type": "object", "properties": {}}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "account_state",
				Description: "Get account equity, used margin, available margin and the active risk tier.",
				Parameters:  json.RawMessage(`{"type": "object", "properties": {}}`),
			},
		},
	}
}

// ExecuteTool dispatches one tool call by name.
func (e *ToolExecutor) ExecuteTool(ctx context.Context, toolName string, args json.RawMessage) (string, error) {
	switch toolName {
	case "scan_opportunities":
		return e.scanOpportunities(ctx, args)
	case "analyze_symbol":
		return e.analyzeSymbol(ctx, args)
	case "detect_patterns":
		return e.detectPatterns(ctx, args)
	case "calculate_position_size":
		return e.calculatePositionSize(ctx, args)
	case "market_sentiment":
		return e.marketSentiment(ctx)
	case "account_state":
		return e.accountState(ctx)
	default:
		return "", apperrors.NewAgentError(toolName, fmt.Errorf("unknown tool"))
	}
}

func (e *ToolExecutor) scanOpportunities(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Symbols  []string `json:"symbols"`
		Interval string   `json:"interval"`
		Top      int      `json:"top"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return "", apperrors.NewAgentError("scan_opportunities", err)
	}

	symbols := params.Symbols
	if len(symbols) == 0 {
		symbols = e.symbols
	}

	opportunities, err := e.scanner.Scan(ctx, symbols, e.intervalOrDefault(params.Interval))
	if err != nil {
		return "", apperrors.NewAgentError("scan_opportunities", err)
	}

	top := params.Top
	if top <= 0 {
		top = 5
	}
	if len(opportunities) > top {
		opportunities = opportunities[:top]
	}

	return marshalResult(opportunities)
}

func (e *ToolExecutor) analyzeSymbol(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return "", apperrors.NewAgentError("analyze_symbol", err)
	}
	if params.Symbol == "" {
		return "", apperrors.NewAgentError("analyze_symbol", fmt.Errorf("symbol is required"))
	}

	opp, err := e.scanner.Evaluate(ctx, normalizeSymbol(params.Symbol), e.intervalOrDefault(params.Interval))
	if err != nil {
		return "", apperrors.NewAgentError("analyze_symbol", err)
	}
	return marshalResult(opp)
}

func (e *ToolExecutor) detectPatterns(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return "", apperrors.NewAgentError("detect_patterns", err)
	}
	if params.Symbol == "" {
		return "", apperrors.NewAgentError("detect_patterns", fmt.Errorf("symbol is required"))
	}

	opp, err := e.scanner.Evaluate(ctx, normalizeSymbol(params.Symbol), e.intervalOrDefault(params.Interval))
	if err != nil {
		return "", apperrors.NewAgentError("detect_patterns", err)
	}
	if len(opp.Patterns) == 0 {
		return fmt.Sprintf("No chart patterns detected for %s", params.Symbol), nil
	}
	return marshalResult(opp.Patterns)
}

func (e *ToolExecutor) calculatePositionSize(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Symbol   string  `json:"symbol"`
		Entry    float64 `json:"entry"`
		Stop     float64 `json:"stop"`
		Leverage float64 `json:"leverage"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return "", apperrors.NewAgentError("calculate_position_size", err)
	}
	if params.Symbol == "" {
		return "", apperrors.NewAgentError("calculate_position_size", fmt.Errorf("symbol is required"))
	}

	symbol := normalizeSymbol(params.Symbol)

	entry := params.Entry
	if entry == 0 {
		price, err := e.market.Price(ctx, symbol)
		if err != nil {
			return "", apperrors.NewAgentError("calculate_position_size", err)
		}
		entry = price
	}

	leverage := params.Leverage
	if leverage == 0 {
		leverage = 3
	}

	inst, err := e.meta.Instrument(ctx, symbol)
	if err != nil {
		return "", apperrors.NewAgentError("calculate_position_size", err)
	}

	account, err := e.account.AccountState(ctx, e.wallet)
	if err != nil {
		return "", apperrors.NewAgentError("calculate_position_size", err)
	}

	result, err := e.sizer.Size(risk.SizeRequest{
		Symbol:   symbol,
		Entry:    entry,
		Stop:     params.Stop,
		Leverage: leverage,
		Account:  account,
	}, inst)
	if err != nil {
		return "", apperrors.NewAgentError("calculate_position_size", err)
	}
	return marshalResult(result)
}

func (e *ToolExecutor) marketSentiment(ctx context.Context) (string, error) {
	reading, err := e.sentiment.Sentiment(ctx)
	if err != nil {
		return "", apperrors.NewAgentError("market_sentiment", err)
	}
	return marshalResult(reading)
}

func (e *ToolExecutor) accountState(ctx context.Context) (string, error) {
	account, err := e.account.AccountState(ctx, e.wallet)
	if err != nil {
		return "", apperrors.NewAgentError("account_state", err)
	}

	profile := risk.ProfileFor(account.AccountValue)
	return marshalResult(map[string]any{
		"account_value":    account.AccountValue,
		"margin_used":      account.TotalMarginUsed,
		"available_margin": account.AvailableMargin(),
		"risk_tier":        profile.Tier,
		"usage_pct":        profile.UsagePct,
		"risk_pct":         profile.RiskPct,
	})
}

func (e *ToolExecutor) intervalOrDefault(s string) models.Interval {
	if s == "" {
		return e.interval
	}
	return models.Interval(s)
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func marshalResult(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding tool result: %w", err)
	}
	return string(data), nil
}
