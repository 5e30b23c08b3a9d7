package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chupakbra/userboard/internal/config"
	"github.com/chupakbra/userboard/internal/user"
)

const usersJSON = `[
  {"id": 1, "firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com", "status": true, "birthday": "1815-12-10", "skills": ["math"], "avatar": []},
  {"id": "2", "firstName": "Alan", "lastName": "Turing", "email": "alan@example.com", "status": false, "birthday": "", "skills": [], "avatar": []}
]`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(&config.EndpointConfig{URL: srv.URL + "/users", VerifyTLS: true})
	require.NoError(t, err)
	return c
}

func TestFetchUsersDecodesCollection(t *testing.T) {
	var gotMethod, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(usersJSON))
	})

	users, err := c.FetchUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "/users", gotPath)
	require.Len(t, users, 2)
	assert.Equal(t, user.ID("1"), users[0].ID)
	assert.Equal(t, "Lovelace", users[0].LastName)
	assert.True(t, users[0].Status)
	assert.Equal(t, user.ID("2"), users[1].ID)
	assert.False(t, users[1].Status)
}

func TestFetchUsersNullBodyIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("null"))
	})
	users, err := c.FetchUsers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestFetchUsersNon200IsStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	})
	_, err := c.FetchUsers(context.Background())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.Equal(t, "nope", se.Body)
	assert.Contains(t, err.Error(), "503")
}

func TestFetchUsersBadBodyIsDecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"users": []}`))
	})
	_, err := c.FetchUsers(context.Background())
	var de *DecodeError
	assert.True(t, errors.As(err, &de))
}

func TestFetchUsersHonoursContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.FetchUsers(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestNewValidatesURL(t *testing.T) {
	_, err := New(&config.EndpointConfig{})
	assert.Error(t, err)
	_, err = New(nil)
	assert.Error(t, err)
	_, err = New(&config.EndpointConfig{URL: "ftp://example.test"})
	assert.Error(t, err)

	c, err := New(&config.EndpointConfig{URL: "https://example.test/users"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/users", c.URL())
	assert.Equal(t, config.DefaultTimeout, c.http.Timeout)
}
