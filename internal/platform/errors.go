package platform

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/slack-go/slack"
)

// APIError is a non-success answer from the chat platform API.
type APIError struct {
	Method     string
	StatusCode int
	Code       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s failed: %s (status %d)", e.Method, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("%s failed with status %d", e.Method, e.StatusCode)
}

// IsCode reports whether err is an APIError carrying the given platform code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// wrapError converts slack-go errors into *APIError. Transport errors are
// wrapped with the method name and returned unchanged otherwise.
func wrapError(method string, err error) error {
	if err == nil {
		return nil
	}

	var rateLimited *slack.RateLimitedError
	if errors.As(err, &rateLimited) {
		return &APIError{Method: method, StatusCode: http.StatusTooManyRequests, Code: "ratelimited"}
	}

	var slackErr slack.SlackErrorResponse
	if errors.As(err, &slackErr) {
		return &APIError{Method: method, StatusCode: http.StatusOK, Code: slackErr.Err}
	}

	var statusErr slack.StatusCodeError
	if errors.As(err, &statusErr) {
		return &APIError{Method: method, StatusCode: statusErr.Code, Code: statusErr.Status}
	}

	return fmt.Errorf("%s: %w", method, err)
}
