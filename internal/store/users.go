package store

import (
	"sync"

	"github.com/chupakbra/userboard/internal/user"
)

type usersSnapshot struct {
	Users []user.User `json:"users"`
}

// Users is the authoritative in-memory user list for the session.
type Users struct {
	mu      sync.RWMutex
	users   []user.User
	persist persistence
}

// NewUsers returns an empty list.
func NewUsers(opts ...Option) *Users {
	return &Users{persist: newPersistence(KeyUsers, opts)}
}

// Hydrate replaces the list with the persisted snapshot, if one exists.
func (s *Users) Hydrate() error {
	var snap usersSnapshot
	ok, err := s.persist.load(&snap)
	if err != nil || !ok {
		return err
	}
	s.mu.Lock()
	s.users = snap.Users
	s.mu.Unlock()
	return nil
}

// Users returns a copy of the current list in insertion order.
func (s *Users) Users() []user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]user.User, len(s.users))
	copy(out, s.users)
	return out
}

// Len returns the number of records.
func (s *Users) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// SetUsers replaces the whole list.
func (s *Users) SetUsers(list []user.User) {
	cp := make([]user.User, len(list))
	copy(cp, list)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = cp
	s.persist.save(usersSnapshot{Users: s.users})
}

// ResetUsers empties the list.
func (s *Users) ResetUsers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = []user.User{}
	s.persist.save(usersSnapshot{Users: s.users})
}
