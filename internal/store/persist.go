// Package store holds the board's state containers: the user list, the
// pagination window, the busy flags and the modal/tooltip toggles.
//
// Each container is safe for concurrent use, is mutated only through its own
// methods, and snapshots itself to an optional Persister after every write.
package store

import (
	"encoding/json"
	"fmt"
)

// Namespaces under which the containers persist themselves.
const (
	KeyUsers      = "users"
	KeyPagination = "pagination"
	KeyLoading    = "loading"
	KeyToggle     = "toggle"
)

// Persister is the durable key/value boundary the containers write through.
type Persister interface {
	Load(key string) ([]byte, bool, error)
	Save(key string, data []byte) error
}

// Option configures a container.
type Option func(*persistence)

// WithPersister snapshots the container to p after every write.
func WithPersister(p Persister) Option {
	return func(ps *persistence) { ps.p = p }
}

// WithErrorHandler receives snapshot failures. Setters never return them.
func WithErrorHandler(fn func(key string, err error)) Option {
	return func(ps *persistence) { ps.onErr = fn }
}

type persistence struct {
	key   string
	p     Persister
	onErr func(key string, err error)
}

func newPersistence(key string, opts []Option) persistence {
	ps := persistence{key: key}
	for _, o := range opts {
		o(&ps)
	}
	return ps
}

// save must be called with the container's lock held so snapshots land in write order.
func (ps persistence) save(v any) {
	if ps.p == nil {
		return
	}
	data, err := json.Marshal(v)
	if err == nil {
		err = ps.p.Save(ps.key, data)
	}
	if err != nil && ps.onErr != nil {
		ps.onErr(ps.key, err)
	}
}

func (ps persistence) load(v any) (bool, error) {
	if ps.p == nil {
		return false, nil
	}
	data, ok, err := ps.p.Load(ps.key)
	if err != nil {
		return false, fmt.Errorf("loading %s state: %w", ps.key, err)
	}
	if !ok || len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decoding %s state: %w", ps.key, err)
	}
	return true, nil
}
