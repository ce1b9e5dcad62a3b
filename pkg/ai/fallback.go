package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
)

// FallbackService routes completions to a primary provider and falls back
// to a secondary one when the primary fails
type FallbackService struct {
	primaryName   string
	primary       Completer
	secondaryName string
	secondary     Completer
}

// NewFallbackService creates a new fallback service with both providers
func NewFallbackService(primaryName string, primary Completer, secondaryName string, secondary Completer) *FallbackService {
	return &FallbackService{
		primaryName:   primaryName,
		primary:       primary,
		secondaryName: secondaryName,
		secondary:     secondary,
	}
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	connectionIndicators := []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"eof",
	}

	for _, indicator := range connectionIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	quotaIndicators := []string{
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource exhausted",
		"resource_exhausted",
	}

	for _, indicator := range quotaIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// Complete tries the primary provider, then the secondary. When the secondary
// cannot be reached but the primary was only rate limited, the primary is
// retried once.
func (f *FallbackService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	var primaryErr error
	if f.primary != nil {
		result, err := f.primary.Complete(ctx, req)
		if err == nil {
			return result, nil
		}
		primaryErr = err

		switch {
		case isQuotaError(err):
			log.Printf("[AI] %s quota exhausted: %v, falling back to %s", f.primaryName, err, f.secondaryName)
		case isConnectionError(err):
			log.Printf("[AI] %s connection failed: %v, falling back to %s", f.primaryName, err, f.secondaryName)
		default:
			log.Printf("[AI] %s error: %v, falling back to %s", f.primaryName, err, f.secondaryName)
		}
	}

	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	if f.secondary != nil {
		result, err := f.secondary.Complete(ctx, req)
		if err == nil {
			return result, nil
		}

		if isConnectionError(err) && isQuotaError(primaryErr) && ctx.Err() == nil {
			log.Printf("[AI] %s connection failed: %v, retrying %s", f.secondaryName, err, f.primaryName)
			return f.primary.Complete(ctx, req)
		}

		return "", fmt.Errorf("%s completion failed: %w", strings.ToLower(f.secondaryName), err)
	}

	if primaryErr != nil {
		return "", primaryErr
	}
	return "", fmt.Errorf("no AI provider available")
}
