package providers

import (
	"context"
	"fmt"
)

// Config represents the configuration for an LLM provider
type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Prompt      string
	Image       []byte
	MIMEType    string
}

// Provider defines the interface for a vision-capable LLM provider
type Provider interface {
	Name() string
	ExtractText(ctx context.Context, config Config) (string, error)
}

// ErrorKind classifies provider failures
type ErrorKind string

const (
	KindAuthentication ErrorKind = "Authentication Error"
	KindRateLimit      ErrorKind = "Rate Limit Error"
	KindConnection     ErrorKind = "API Connection Error"
	KindInvalidRequest ErrorKind = "Invalid Request Error"
	KindAPI            ErrorKind = "API Error"
)

// Error is a classified provider failure
type Error struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindForStatus maps an HTTP status returned by a provider API to a kind
func KindForStatus(status int) ErrorKind {
	switch status {
	case 401, 403:
		return KindAuthentication
	case 429:
		return KindRateLimit
	case 400, 404, 413, 422:
		return KindInvalidRequest
	default:
		return KindAPI
	}
}
