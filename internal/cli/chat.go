package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newChatCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to the AI trading agent",
		Long: `Chat starts a conversation with the AI agent. The agent can scan
the market, analyze symbols, detect patterns, read account state and
compute position sizes through its tools.

With a message argument it answers once and exits; without one it
starts an interactive session.`,
		Example: `  hlagent chat "scan the market and size the best setup"
  hlagent chat`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if app.Agent == nil {
				output.Error("OpenAI API key not configured. Set OPENAI_API_KEY or add it to credentials.toml.")
				return fmt.Errorf("agent not configured")
			}

			sessionID, _ := cmd.Flags().GetString("session")
			verbose, _ := cmd.Flags().GetBool("verbose")

			if len(args) > 0 {
				return runChatTurn(cmd, app, output, sessionID, strings.Join(args, " "), verbose)
			}
			return runChatLoop(cmd, app, output, sessionID, verbose)
		},
	}

	cmd.Flags().String("session", "default", "session name for conversation continuity")
	cmd.Flags().Bool("verbose", false, "show tool calls")
	return cmd
}

func runChatTurn(cmd *cobra.Command, app *App, output *Output, sessionID, message string, verbose bool) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	cot, err := app.Agent.ChatVerbose(ctx, sessionID, message)
	if err != nil {
		output.Error("Chat failed: %v", err)
		return err
	}

	if verbose {
		for _, call := range cot.ToolCalls {
			output.Dim("→ %s(%s)", call.ToolName, call.Arguments)
		}
		if len(cot.ToolCalls) > 0 {
			output.Println()
		}
	}

	output.Println(cot.Response)
	return nil
}

func runChatLoop(cmd *cobra.Command, app *App, output *Output, sessionID string, verbose bool) error {
	color.Cyan("💬 Chat session %q (type 'exit' to quit, 'reset' to clear history)", sessionID)
	output.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		output.Printf("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "reset":
			app.Agent.Reset(sessionID)
			output.Info("Session cleared")
			continue
		}

		if err := runChatTurn(cmd, app, output, sessionID, line, verbose); err != nil {
			continue
		}
		output.Println()
	}
}
