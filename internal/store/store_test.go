package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chupakbra/userboard/internal/user"
)

type mapPersister struct {
	mu      sync.Mutex
	data    map[string][]byte
	saveErr error
}

func newMapPersister() *mapPersister {
	return &mapPersister{data: map[string][]byte{}}
}

func (m *mapPersister) Load(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	return b, ok, nil
}

func (m *mapPersister) Save(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func TestUsersSetAndReset(t *testing.T) {
	s := NewUsers()
	assert.Empty(t, s.Users())

	list := []user.User{{ID: "1"}, {ID: "2"}}
	s.SetUsers(list)
	list[0].ID = "mutated"
	assert.Equal(t, user.ID("1"), s.Users()[0].ID, "SetUsers must copy its input")

	got := s.Users()
	got[1].ID = "mutated"
	assert.Equal(t, user.ID("2"), s.Users()[1].ID, "Users must return a copy")

	s.ResetUsers()
	assert.Equal(t, 0, s.Len())
}

func TestUsersRoundTripThroughPersister(t *testing.T) {
	kv := newMapPersister()
	s := NewUsers(WithPersister(kv))
	s.SetUsers([]user.User{{ID: "7", FirstName: "Ada", Status: true}})

	restored := NewUsers(WithPersister(kv))
	require.NoError(t, restored.Hydrate())
	assert.Equal(t, s.Users(), restored.Users())
}

func TestUsersPersistOpaqueNumericLookingIDs(t *testing.T) {
	kv := newMapPersister()
	var saveErr error
	s := NewUsers(WithPersister(kv), WithErrorHandler(func(key string, err error) { saveErr = err }))
	s.SetUsers([]user.User{{ID: "007", FirstName: "James"}, {ID: "+5", FirstName: "Plus"}, {ID: "12"}})
	require.NoError(t, saveErr)
	require.NotEmpty(t, kv.data[KeyUsers])

	restored := NewUsers(WithPersister(kv))
	require.NoError(t, restored.Hydrate())
	assert.Equal(t, s.Users(), restored.Users())
}

func TestUsersHydrateRejectsGarbage(t *testing.T) {
	kv := newMapPersister()
	kv.data[KeyUsers] = []byte("{not json")
	s := NewUsers(WithPersister(kv))
	err := s.Hydrate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding users state")
}

func TestSaveFailuresGoToErrorHandler(t *testing.T) {
	kv := newMapPersister()
	kv.saveErr = errors.New("disk full")

	var gotKey string
	var gotErr error
	s := NewUsers(WithPersister(kv), WithErrorHandler(func(key string, err error) {
		gotKey, gotErr = key, err
	}))
	s.SetUsers([]user.User{{ID: "1"}})

	assert.Equal(t, KeyUsers, gotKey)
	assert.EqualError(t, gotErr, "disk full")
	assert.Equal(t, 1, s.Len())
}

func TestLoadingAbsentKeyIsIdle(t *testing.T) {
	l := NewLoading()
	assert.False(t, l.IsLoading(LoadingUsers))
	assert.False(t, l.Any())

	l.Set(LoadingCreateUser, true)
	assert.True(t, l.Any())
	assert.True(t, l.Any(LoadingUsers, LoadingCreateUser))
	assert.False(t, l.Any(LoadingUsers))

	l.ResetLoading()
	assert.Empty(t, l.Snapshot())
}

func TestLoadingBeginIsSingleFlight(t *testing.T) {
	l := NewLoading()
	require.True(t, l.Begin(LoadingUsers))
	assert.False(t, l.Begin(LoadingUsers))
	l.End(LoadingUsers)
	assert.True(t, l.Begin(LoadingUsers))
}

func TestLoadingBeginConcurrent(t *testing.T) {
	l := NewLoading()
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Begin(LoadingUsers) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestToggleModalStateMachine(t *testing.T) {
	tg := NewToggle()
	assert.Equal(t, ModeNone, tg.Mode())

	require.NoError(t, tg.OpenCreate())
	assert.Equal(t, ModeCreate, tg.Mode())
	_, ok := tg.Data()
	assert.False(t, ok, "payload is meaningless for the create modal")

	err := tg.OpenDelete(user.User{ID: "1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModalOpen))
	assert.Equal(t, ModeCreate, tg.Mode())

	tg.Close()
	target := user.User{ID: "1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	require.NoError(t, tg.OpenDelete(target))
	got, ok := tg.Data()
	require.True(t, ok)
	assert.Equal(t, target, got)

	require.Error(t, tg.OpenCreate())

	tg.Close()
	assert.False(t, tg.IsOpen())
	_, ok = tg.Data()
	assert.False(t, ok)
}

func TestToggleTooltipSingleVisible(t *testing.T) {
	tg := NewToggle()
	tg.SetTooltip(true, "reload-user")
	tg.SetTooltip(true, "add-user")
	assert.Equal(t, Tooltip{Visible: true, ID: "add-user"}, tg.Snapshot().Tooltip)

	tg.SetTooltip(false, "add-user")
	assert.Equal(t, Tooltip{}, tg.Snapshot().Tooltip)
}

func TestToggleSettersAndReset(t *testing.T) {
	tg := NewToggle()
	u := user.User{ID: "3"}
	tg.SetToggleModal(true)
	tg.SetModalType(ModeDelete)
	tg.SetData(&u)
	u.ID = "changed"

	got, ok := tg.Data()
	require.True(t, ok)
	assert.Equal(t, user.ID("3"), got.ID)

	tg.ResetToggles()
	assert.Equal(t, ToggleState{}, tg.Snapshot())
}

func TestTogglePersistsModeNames(t *testing.T) {
	kv := newMapPersister()
	tg := NewToggle(WithPersister(kv))
	require.NoError(t, tg.OpenDelete(user.User{ID: "5", Email: "x@example.com"}))
	assert.Contains(t, string(kv.data[KeyToggle]), `"modalType":"delete-user"`)

	restored := NewToggle(WithPersister(kv))
	require.NoError(t, restored.Hydrate())
	got, ok := restored.Data()
	require.True(t, ok)
	assert.Equal(t, "x@example.com", got.Email)
}

func TestToggleHydrateDropsOrphanPayload(t *testing.T) {
	kv := newMapPersister()
	kv.data[KeyToggle] = []byte(`{"toggleModal":true,"modalType":"add-user","data":{"id":1},"tooltip":{"status":false,"id":""}}`)
	tg := NewToggle(WithPersister(kv))
	require.NoError(t, tg.Hydrate())
	s := tg.Snapshot()
	assert.Nil(t, s.Data)
	assert.Equal(t, ModeCreate, s.Mode)
}
