package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/chupakbra/userboard/internal/user"
)

// ErrModalOpen is returned when a modal is requested while another is open.
var ErrModalOpen = errors.New("a modal is already open")

// Mode is the purpose of the open modal.
type Mode int

const (
	ModeNone   Mode = iota
	ModeCreate      // add-user form
	ModeDelete      // delete-user confirmation
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "add-user"
	case ModeDelete:
		return "delete-user"
	}
	return ""
}

// MarshalText encodes the mode with the names the view layer uses.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (m *Mode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "", "null":
		*m = ModeNone
	case "add-user":
		*m = ModeCreate
	case "delete-user":
		*m = ModeDelete
	default:
		return fmt.Errorf("unknown modal type %q", string(b))
	}
	return nil
}

// Tooltip is the single visible tooltip, if any.
type Tooltip struct {
	Visible bool   `json:"status"`
	ID      string `json:"id"`
}

// ToggleState is the persisted toggle tuple.
type ToggleState struct {
	Open    bool       `json:"toggleModal"`
	Mode    Mode       `json:"modalType"`
	Data    *user.User `json:"data,omitempty"`
	Tooltip Tooltip    `json:"tooltip"`
}

// Toggle tracks modal visibility, modal mode, the record targeted by a pending
// delete, and the visible tooltip.
type Toggle struct {
	mu      sync.RWMutex
	state   ToggleState
	persist persistence
}

// NewToggle returns a container with everything closed.
func NewToggle(opts ...Option) *Toggle {
	return &Toggle{persist: newPersistence(KeyToggle, opts)}
}

// Hydrate loads the persisted toggles. A payload without a delete modal is dropped.
func (t *Toggle) Hydrate() error {
	var snap ToggleState
	ok, err := t.persist.load(&snap)
	if err != nil || !ok {
		return err
	}
	if !snap.Open {
		snap.Mode = ModeNone
	}
	if snap.Mode != ModeDelete {
		snap.Data = nil
	}
	t.mu.Lock()
	t.state = snap
	t.mu.Unlock()
	return nil
}

func (t *Toggle) write(fn func(s *ToggleState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.state)
	t.persist.save(t.state)
}

// Snapshot returns the current toggles.
func (t *Toggle) Snapshot() ToggleState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.state
	if s.Data != nil {
		d := *s.Data
		s.Data = &d
	}
	return s
}

// SetToggleModal shows or hides the modal.
func (t *Toggle) SetToggleModal(open bool) {
	t.write(func(s *ToggleState) { s.Open = open })
}

// SetModalType sets the modal mode.
func (t *Toggle) SetModalType(m Mode) {
	t.write(func(s *ToggleState) { s.Mode = m })
}

// SetData sets the payload record; nil clears it.
func (t *Toggle) SetData(u *user.User) {
	t.write(func(s *ToggleState) {
		if u == nil {
			s.Data = nil
			return
		}
		d := *u
		s.Data = &d
	})
}

// SetTooltip shows the tooltip id or hides the visible one.
func (t *Toggle) SetTooltip(visible bool, id string) {
	t.write(func(s *ToggleState) {
		if !visible {
			id = ""
		}
		s.Tooltip = Tooltip{Visible: visible, ID: id}
	})
}

// ResetToggles closes everything.
func (t *Toggle) ResetToggles() {
	t.write(func(s *ToggleState) { *s = ToggleState{} })
}

// IsOpen reports whether a modal is open.
func (t *Toggle) IsOpen() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Open
}

// Mode returns the open modal's mode, ModeNone when closed.
func (t *Toggle) Mode() Mode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.state.Open {
		return ModeNone
	}
	return t.state.Mode
}

// Data returns the record targeted by an open delete modal.
func (t *Toggle) Data() (user.User, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.state.Open || t.state.Mode != ModeDelete || t.state.Data == nil {
		return user.User{}, false
	}
	return *t.state.Data, true
}

// OpenCreate moves closed → open-create.
func (t *Toggle) OpenCreate() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Open {
		return fmt.Errorf("%w (%s)", ErrModalOpen, t.state.Mode)
	}
	t.state.Open = true
	t.state.Mode = ModeCreate
	t.state.Data = nil
	t.persist.save(t.state)
	return nil
}

// OpenDelete moves closed → open-delete carrying the full target record.
func (t *Toggle) OpenDelete(u user.User) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Open {
		return fmt.Errorf("%w (%s)", ErrModalOpen, t.state.Mode)
	}
	t.state.Open = true
	t.state.Mode = ModeDelete
	t.state.Data = &u
	t.persist.save(t.state)
	return nil
}

// Close returns to the closed state and drops the payload.
func (t *Toggle) Close() {
	t.write(func(s *ToggleState) {
		s.Open = false
		s.Mode = ModeNone
		s.Data = nil
	})
}
