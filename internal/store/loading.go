package store

import (
	"sync"
)

// Busy-flag keys used by the board operations.
const (
	LoadingUsers      = "users"
	LoadingCreateUser = "createUser"
	LoadingDeleteUser = "deleteUser"
)

// Loading maps operation keys to busy flags. An absent key is idle.
type Loading struct {
	mu      sync.RWMutex
	flags   map[string]bool
	persist persistence
}

// NewLoading returns a container with every key idle.
func NewLoading(opts ...Option) *Loading {
	return &Loading{flags: map[string]bool{}, persist: newPersistence(KeyLoading, opts)}
}

// Hydrate loads the persisted flags.
func (l *Loading) Hydrate() error {
	snap := map[string]bool{}
	ok, err := l.persist.load(&snap)
	if err != nil || !ok {
		return err
	}
	if snap == nil {
		snap = map[string]bool{}
	}
	l.mu.Lock()
	l.flags = snap
	l.mu.Unlock()
	return nil
}

// Set marks key busy or idle.
func (l *Loading) Set(key string, busy bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flags[key] = busy
	l.persist.save(l.flags)
}

// Begin marks key busy only if it is idle, and reports whether it did.
func (l *Loading) Begin(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.flags[key] {
		return false
	}
	l.flags[key] = true
	l.persist.save(l.flags)
	return true
}

// End marks key idle.
func (l *Loading) End(key string) {
	l.Set(key, false)
}

// IsLoading reports whether key is busy.
func (l *Loading) IsLoading(key string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.flags[key]
}

// Any reports whether any of keys is busy. With no keys it checks every flag.
func (l *Loading) Any(keys ...string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(keys) == 0 {
		for _, busy := range l.flags {
			if busy {
				return true
			}
		}
		return false
	}
	for _, k := range keys {
		if l.flags[k] {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the flags.
func (l *Loading) Snapshot() map[string]bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]bool, len(l.flags))
	for k, v := range l.flags {
		out[k] = v
	}
	return out
}

// ResetLoading clears every flag.
func (l *Loading) ResetLoading() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flags = map[string]bool{}
	l.persist.save(l.flags)
}
