// Package agents provides the AI chat layer that drives scans, analysis
// and position sizing through OpenAI function calling.
package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient wraps the OpenAI chat completion API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a new OpenAI LLM client.
func NewOpenAIClient(apiKey string, model string) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// ToolCallLog represents a single tool call in the chain of thought.
type ToolCallLog struct {
	ToolName  string
	Arguments string
	Result    string
}

// ChainOfThought captures the model's tool usage and final answer.
type ChainOfThought struct {
	Messages  []openai.ChatCompletionMessage
	ToolCalls []ToolCallLog
	Response  string
}

// Executor executes a named tool call and returns its textual result.
type Executor interface {
	ExecuteTool(ctx context.Context, toolName string, args json.RawMessage) (string, error)
}

// CompleteWithTools runs a tool-calling conversation starting from the
// given message history. maxTurns bounds the number of completion
// rounds. The returned chain of thought carries the full updated
// message history so callers can persist it as a session.
func (c *OpenAIClient) CompleteWithTools(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool, executor Executor, maxTurns int) (*ChainOfThought, error) {
	if maxTurns <= 0 {
		maxTurns = 8
	}

	cot := &ChainOfThought{}

	for i := 0; i < maxTurns; i++ {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    c.model,
			Messages: messages,
			Tools:    tools,
		})
		if err != nil {
			return nil, fmt.Errorf("openai completion failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("no response from openai")
		}

		choice := resp.Choices[0]

		if len(choice.Message.ToolCalls) == 0 {
			messages = append(messages, choice.Message)
			cot.Messages = messages
			cot.Response = choice.Message.Content
			return cot, nil
		}

		messages = append(messages, choice.Message)

		for _, toolCall := range choice.Message.ToolCalls {
			result, err := executor.ExecuteTool(ctx, toolCall.Function.Name, json.RawMessage(toolCall.Function.Arguments))
			if err != nil {
				result = fmt.Sprintf("Error executing tool %s: %v", toolCall.Function.Name, err)
			}

			cot.ToolCalls = append(cot.ToolCalls, ToolCallLog{
				ToolName:  toolCall.Function.Name,
				Arguments: toolCall.Function.Arguments,
				Result:    result,
			})

			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    result,
				ToolCallID: toolCall.ID,
			})
		}
	}

	return nil, fmt.Errorf("exceeded maximum tool call iterations")
}

// Model returns the model name.
func (c *OpenAIClient) Model() string {
	return c.model
}
