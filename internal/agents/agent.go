package agents

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are a trading assistant for Hyperliquid perpetual futures.

You have tools for scanning the market, analyzing individual symbols,
detecting chart patterns, reading account state and sentiment, and
computing risk-bounded position sizes.

Rules:
- Always check account state before recommending a position size.
- Position sizes come from the calculate_position_size tool, never from
  your own arithmetic.
- Surface every warning the sizing tool returns.
- You never place orders. Present the numbers and let the user decide.
- Be concise. Lead with the conclusion, then the supporting metrics.`

// Agent runs tool-calling conversations over persistent sessions.
type Agent struct {
	llm      *OpenAIClient
	executor *ToolExecutor
	sessions *SessionStore
	maxTurns int
	log      zerolog.Logger
}

func NewAgent(llm *OpenAIClient, executor *ToolExecutor, sessionTTL time.Duration, maxTurns int, log zerolog.Logger) *Agent {
	return &Agent{
		llm:      llm,
		executor: executor,
		sessions: NewSessionStore(sessionTTL),
		maxTurns: maxTurns,
		log:      log.With().Str("component", "agent").Logger(),
	}
}

// Chat sends one user message within the named session and returns the
// model's final answer after any tool calls.
func (a *Agent) Chat(ctx context.Context, sessionID, message string) (string, error) {
	cot, err := a.ChatVerbose(ctx, sessionID, message)
	if err != nil {
		return "", err
	}
	return cot.Response, nil
}

// ChatVerbose is Chat plus the full chain of thought.
func (a *Agent) ChatVerbose(ctx context.Context, sessionID, message string) (*ChainOfThought, error) {
	sess, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	messages := sess.Messages
	if len(messages) == 0 {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	cot, err := a.llm.CompleteWithTools(ctx, messages, GetToolDefinitions(), a.executor, a.maxTurns)
	if err != nil {
		return nil, err
	}

	a.sessions.Update(sessionID, cot.Messages)

	a.log.Debug().
		Str("session", sessionID).
		Int("tool_calls", len(cot.ToolCalls)).
		Msg("chat turn complete")

	return cot, nil
}

// Reset discards the named session's history.
func (a *Agent) Reset(sessionID string) {
	a.sessions.Delete(sessionID)
}

// Sessions exposes the session store, mainly for tests.
func (a *Agent) Sessions() *SessionStore {
	return a.sessions
}
