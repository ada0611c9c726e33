package provider

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// Error is any failure of the external mail API. Expired tokens, bad ids,
// quota and transport failures are not told apart beyond the status code.
type Error struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: provider returned %d: %s", e.Op, e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var already *Error
	if errors.As(err, &already) {
		return err
	}

	perr := &Error{Op: op, Err: err, StatusCode: http.StatusBadGateway, Message: err.Error()}

	var apiErr *googleapi.Error
	var retrieveErr *oauth2.RetrieveError
	switch {
	case errors.As(err, &apiErr):
		perr.StatusCode = apiErr.Code
		if apiErr.Message != "" {
			perr.Message = apiErr.Message
		}
	case errors.As(err, &retrieveErr):
		perr.StatusCode = http.StatusUnauthorized
		perr.Message = "token refresh rejected"
		if retrieveErr.ErrorCode != "" {
			perr.Message = "token refresh rejected: " + retrieveErr.ErrorCode
		}
	case errors.Is(err, context.DeadlineExceeded):
		perr.StatusCode = http.StatusGatewayTimeout
		perr.Message = "request timed out"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		perr.StatusCode = http.StatusServiceUnavailable
		perr.Message = "mail provider temporarily unavailable"
	}
	return perr
}

// isClientError reports failures caused by the request itself. They never
// count against the circuit breaker.
func isClientError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != http.StatusTooManyRequests
	}
	var retrieveErr *oauth2.RetrieveError
	return errors.As(err, &retrieveErr)
}
