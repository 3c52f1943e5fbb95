// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrPriceUnavailable  = errors.New("price unavailable")
	ErrNoMarginAvailable = errors.New("no available margin")
	ErrSymbolNotFound    = errors.New("symbol not found")
	ErrInvalidLeverage   = errors.New("invalid leverage")
	ErrInvalidStop       = errors.New("stop price equals entry price")
	ErrRateLimited       = errors.New("rate limited")
	ErrConnectionFailed  = errors.New("connection failed")
	ErrTimeout           = errors.New("operation timed out")
	ErrConfigInvalid     = errors.New("invalid configuration")
	ErrSessionExpired    = errors.New("session expired")
)

// SizingError is returned when a computed position fails the exchange's
// minimum-notional floor. It carries the required and achievable notional so
// the caller can report the shortfall.
type SizingError struct {
	Symbol           string
	RequiredNotional float64
	ActualNotional   float64
}

func (e *SizingError) Error() string {
	return fmt.Sprintf("position too small for %s: notional $%.2f below exchange minimum $%.2f",
		e.Symbol, e.ActualNotional, e.RequiredNotional)
}

// NewSizingError creates a new SizingError.
func NewSizingError(symbol string, required, actual float64) *SizingError {
	return &SizingError{
		Symbol:           symbol,
		RequiredNotional: required,
		ActualNotional:   actual,
	}
}

// ExchangeError represents an error from the exchange API.
type ExchangeError struct {
	Endpoint string
	Message  string
	Err      error
}

func (e *ExchangeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("exchange error [%s]: %s: %v", e.Endpoint, e.Message, e.Err)
	}
	return fmt.Sprintf("exchange error [%s]: %s", e.Endpoint, e.Message)
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// NewExchangeError creates a new ExchangeError.
func NewExchangeError(endpoint, message string, err error) *ExchangeError {
	return &ExchangeError{
		Endpoint: endpoint,
		Message:  message,
		Err:      err,
	}
}

// AgentError represents an error from the AI agent layer.
type AgentError struct {
	Operation string
	Err       error
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("agent error [%s]: %v", e.Operation, e.Err)
}

func (e *AgentError) Unwrap() error {
	return e.Err
}

// NewAgentError creates a new AgentError.
func NewAgentError(operation string, err error) *AgentError {
	return &AgentError{
		Operation: operation,
		Err:       err,
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
