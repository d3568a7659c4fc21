package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	openai "github.com/sashabaranov/go-openai"
)

// Sentinel errors for model provider failures. LLMService implementations
// wrap provider errors with these so callers can classify them with
// errors.Is without depending on the provider client.
var (
	// ErrServiceUnavailable indicates the provider rejected or failed the
	// request for capacity reasons (rate limited or 5xx).
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrNetworkError indicates the provider could not be reached.
	ErrNetworkError = errors.New("network error")
)

// wrapProviderError classifies a provider client error under the package's
// sentinel errors. Context errors pass through untouched so callers can
// still match context.Canceled and context.DeadlineExceeded.
func wrapProviderError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
		}
		return err
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrNetworkError, err)
	}

	return err
}
