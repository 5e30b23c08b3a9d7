package client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/chupakbra/userboard/internal/config"
	"github.com/chupakbra/userboard/internal/user"
)

// maxBody caps how much of an error response is kept for messages.
const maxBody = 512

// StatusError is returned when the endpoint answers with anything but 200.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("unexpected status %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

// DecodeError is returned when the body is not a JSON array of users.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decoding users: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// Client reads the users collection from a single endpoint.
type Client struct {
	url  string
	http *http.Client
}

// New builds a Client from an EndpointConfig.
func New(cfg *config.EndpointConfig) (*Client, error) {
	if cfg == nil || strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("endpoint URL is not set")
	}
	if !strings.HasPrefix(cfg.URL, "http://") && !strings.HasPrefix(cfg.URL, "https://") {
		return nil, fmt.Errorf("endpoint URL %q must start with http:// or https://", cfg.URL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: !cfg.VerifyTLS, //nolint:gosec
			},
		},
	}
	return &Client{url: cfg.URL, http: httpClient}, nil
}

// URL returns the endpoint the client reads from.
func (c *Client) URL() string { return c.url }

// FetchUsers performs a single GET of the collection. There are no retries.
func (c *Client) FetchUsers(ctx context.Context) ([]user.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var users []user.User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if users == nil {
		users = []user.User{}
	}
	return users, nil
}
