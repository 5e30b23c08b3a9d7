package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/chupakbra/userboard/internal/client"
)

// Handle maps client errors to friendly user-facing messages and returns a
// formatted error that Cobra will print before exiting with code 1. The same
// message is used as the description of error notifications.
func Handle(endpoint string, err error) error {
	if err == nil {
		return nil
	}

	var statusErr *client.StatusError
	var decodeErr *client.DecodeError
	switch {
	case stderrors.As(err, &statusErr):
		switch statusErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("permission denied: the endpoint refused the request (%d)", statusErr.Code)
		case http.StatusNotFound:
			return fmt.Errorf("not found: %s does not serve a users collection", orEndpoint(endpoint))
		default:
			return fmt.Errorf("the endpoint answered %d %s", statusErr.Code, http.StatusText(statusErr.Code))
		}
	case stderrors.As(err, &decodeErr):
		return fmt.Errorf("the endpoint returned data that is not a list of users")
	case isTimeout(err):
		return fmt.Errorf("the request timed out: check %s is reachable", orEndpoint(endpoint))
	case isConnectionError(err):
		if endpoint != "" {
			return fmt.Errorf("could not connect to %s: check the endpoint URL and your network", endpoint)
		}
		return fmt.Errorf("could not connect to the endpoint: check the endpoint URL and your network")
	default:
		return err
	}
}

func orEndpoint(endpoint string) string {
	if endpoint == "" {
		return "the endpoint"
	}
	return endpoint
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

func isConnectionError(err error) bool {
	if stderrors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var dnsErr *net.DNSError
	if stderrors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if stderrors.As(err, &opErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "dial tcp") ||
		strings.Contains(msg, "EOF")
}
