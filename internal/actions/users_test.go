package actions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chupakbra/userboard/internal/notify"
	"github.com/chupakbra/userboard/internal/store"
	"github.com/chupakbra/userboard/internal/user"
)

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

type fakeFetcher struct {
	users []user.User
	err   error
	calls int
	// block, when set, is waited on before answering.
	block chan struct{}
}

func (f *fakeFetcher) FetchUsers(ctx context.Context) ([]user.User, error) {
	f.calls++
	if f.block != nil {
		<-f.block
	}
	return f.users, f.err
}

type board struct {
	users    *store.Users
	pages    *store.Pagination
	loading  *store.Loading
	toggle   *store.Toggle
	fetcher  *fakeFetcher
	recorder *notify.Recorder
}

func newBoard() *board {
	return &board{
		users:    store.NewUsers(),
		pages:    store.NewPagination(store.DefaultRowsPerPage),
		loading:  store.NewLoading(),
		toggle:   store.NewToggle(),
		fetcher:  &fakeFetcher{},
		recorder: &notify.Recorder{},
	}
}

func (b *board) deps() Deps {
	return Deps{
		Users:      b.users,
		Pagination: b.pages,
		Loading:    b.loading,
		Toggle:     b.toggle,
		Fetcher:    b.fetcher,
		Notifier:   b.recorder,
		Endpoint:   "http://test/users",
	}
}

func activeUsers(n int) []user.User {
	out := make([]user.User, n)
	for i := range out {
		out[i] = user.User{
			ID:        user.ID(fmt.Sprint(i + 1)),
			FirstName: fmt.Sprintf("First%d", i+1),
			LastName:  fmt.Sprintf("Last%d", i+1),
			Email:     fmt.Sprintf("user%d@example.com", i+1),
			Status:    true,
		}
	}
	return out
}

func ids(users []user.User) []user.ID {
	out := make([]user.ID, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}

func TestFetchKeepsOnlyActiveRecords(t *testing.T) {
	b := newBoard()
	b.fetcher.users = []user.User{
		{ID: "1", Status: true},
		{ID: "2", Status: false},
		{ID: "3", Status: true},
		{ID: "4", Status: false},
	}

	require.NoError(t, FetchUsers(context.Background(), b.deps()))

	assert.Equal(t, []user.ID{"1", "3"}, ids(b.users.Users()))
	assert.Equal(t, 2, b.pages.State().TotalUsers)
	assert.Equal(t, 1, b.pages.State().TotalPages)
	assert.False(t, b.loading.IsLoading(store.LoadingUsers))

	notes := b.recorder.All()
	require.Len(t, notes, 1)
	assert.Equal(t, notify.KindSuccess, notes[0].Kind)
	assert.Equal(t, "Users loaded successfully", notes[0].Text)
}

func TestFetchFailureLeavesListUntouched(t *testing.T) {
	b := newBoard()
	before := activeUsers(3)
	b.users.SetUsers(before)
	b.pages.SetTotalUsers(3)
	b.fetcher.err = errors.New("connection refused")

	err := FetchUsers(context.Background(), b.deps())
	require.Error(t, err)

	assert.Equal(t, before, b.users.Users())
	assert.Equal(t, 3, b.pages.State().TotalUsers)
	assert.False(t, b.loading.IsLoading(store.LoadingUsers))

	notes := b.recorder.All()
	require.Len(t, notes, 1)
	assert.Equal(t, notify.KindError, notes[0].Kind)
	assert.Equal(t, "Could not load users", notes[0].Text)
	assert.Contains(t, notes[0].Description, "could not connect to http://test/users")
}

func TestFetchWithoutEndpoint(t *testing.T) {
	b := newBoard()
	d := b.deps()
	d.Fetcher = nil

	err := FetchUsers(context.Background(), d)
	assert.ErrorIs(t, err, ErrNoEndpoint)
	assert.Len(t, b.recorder.All(), 1)
}

func TestFetchIsSingleFlight(t *testing.T) {
	b := newBoard()
	b.fetcher.users = activeUsers(2)
	b.fetcher.block = make(chan struct{})
	d := b.deps()

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		firstErr = FetchUsers(context.Background(), d)
	}()

	require.Eventually(t, func() bool { return b.loading.IsLoading(store.LoadingUsers) }, timeout, tick)
	assert.ErrorIs(t, FetchUsers(context.Background(), d), ErrInFlight)

	close(b.fetcher.block)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.Equal(t, 1, b.fetcher.calls)
	assert.Len(t, b.recorder.All(), 1, "a rejected fetch sends no notification")
}

func TestReloadResetsPagination(t *testing.T) {
	b := newBoard()
	b.fetcher.users = activeUsers(12)
	require.NoError(t, b.pages.SetRowsPerPage(5))
	b.pages.SetTotalUsers(12)
	b.pages.SetCurrentPage(3)

	require.NoError(t, Reload(context.Background(), b.deps()))
	st := b.pages.State()
	assert.Equal(t, 1, st.CurrentPage)
	assert.Equal(t, 7, st.RowsPerPage)
	assert.Equal(t, 2, st.TotalPages)
}

func TestBootstrapFetchesOnlyWhenEmpty(t *testing.T) {
	b := newBoard()
	b.fetcher.users = activeUsers(1)
	require.NoError(t, Bootstrap(context.Background(), b.deps()))
	require.NoError(t, Bootstrap(context.Background(), b.deps()))
	assert.Equal(t, 1, b.fetcher.calls)
}

func TestCreateAppendsOneUniqueRecord(t *testing.T) {
	b := newBoard()
	before := activeUsers(3)
	b.users.SetUsers(before)
	b.pages.SetTotalUsers(3)
	require.NoError(t, b.toggle.OpenCreate())

	// The first generated id collides with an existing record.
	next := []user.ID{"2", "fresh"}
	d := b.deps()
	d.NewID = func() user.ID {
		id := next[0]
		next = next[1:]
		return id
	}

	created, err := CreateUser(context.Background(), d, user.Draft{FirstName: " Grace ", LastName: "Hopper", Email: "grace@example.com"})
	require.NoError(t, err)

	got := b.users.Users()
	require.Len(t, got, 4)
	assert.Equal(t, before, got[:3])
	assert.Equal(t, created, got[3])
	assert.Equal(t, user.ID("fresh"), created.ID)
	assert.Equal(t, "Grace", created.FirstName)
	assert.True(t, created.Status)
	assert.Empty(t, created.Birthday)
	assert.NotNil(t, created.Skills)
	assert.NotNil(t, created.Avatar)

	assert.Equal(t, 4, b.pages.State().TotalUsers)
	assert.False(t, b.toggle.IsOpen())
	assert.False(t, b.loading.IsLoading(store.LoadingCreateUser))

	notes := b.recorder.All()
	require.Len(t, notes, 1)
	assert.Equal(t, "User created successfully", notes[0].Text)
}

func TestCreateDefaultIDsAreUnique(t *testing.T) {
	b := newBoard()
	seen := map[user.ID]bool{}
	for i := 0; i < 50; i++ {
		u, err := CreateUser(context.Background(), b.deps(), user.Draft{FirstName: "a", LastName: "b", Email: "c"})
		require.NoError(t, err)
		require.False(t, seen[u.ID])
		seen[u.ID] = true
	}
	assert.Equal(t, 50, b.users.Len())
}

func TestCreateRejectsInvalidDraft(t *testing.T) {
	b := newBoard()
	_, err := CreateUser(context.Background(), b.deps(), user.Draft{FirstName: "Ada", Email: "  "})

	var fe *user.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.True(t, fe.Has(user.FieldLastName))
	assert.True(t, fe.Has(user.FieldEmail))
	assert.Zero(t, b.users.Len())
	assert.Empty(t, b.recorder.All())
	assert.False(t, b.loading.IsLoading(store.LoadingCreateUser))
}

func TestCreateRecoversPanic(t *testing.T) {
	b := newBoard()
	d := b.deps()
	d.NewID = func() user.ID { panic("entropy exhausted") }

	_, err := CreateUser(context.Background(), d, user.Draft{FirstName: "a", LastName: "b", Email: "c"})
	require.Error(t, err)
	assert.Zero(t, b.users.Len())
	assert.False(t, b.loading.IsLoading(store.LoadingCreateUser))

	notes := b.recorder.All()
	require.Len(t, notes, 1)
	assert.Equal(t, notify.KindError, notes[0].Kind)
	assert.Equal(t, "entropy exhausted", notes[0].Description)
}

func TestCreateInFlightIsRejected(t *testing.T) {
	b := newBoard()
	b.loading.Set(store.LoadingCreateUser, true)
	_, err := CreateUser(context.Background(), b.deps(), user.Draft{FirstName: "a", LastName: "b", Email: "c"})
	assert.ErrorIs(t, err, ErrInFlight)
	assert.Empty(t, b.recorder.All())
}

func TestDeleteRemovesExactlyTheSelectedRecord(t *testing.T) {
	b := newBoard()
	b.users.SetUsers(activeUsers(5))
	b.pages.SetTotalUsers(5)
	target := b.users.Users()[2]
	require.NoError(t, OpenDelete(b.deps(), target))

	require.NoError(t, DeleteSelected(context.Background(), b.deps()))

	assert.Equal(t, []user.ID{"1", "2", "4", "5"}, ids(b.users.Users()))
	assert.Equal(t, 4, b.pages.State().TotalUsers)
	snap := b.toggle.Snapshot()
	assert.False(t, snap.Open)
	assert.Equal(t, store.ModeNone, snap.Mode)
	assert.Nil(t, snap.Data)

	notes := b.recorder.All()
	require.Len(t, notes, 1)
	assert.Equal(t, "User deleted successfully!", notes[0].Text)
}

func TestDeleteMissingIDIsNoopThatClosesModal(t *testing.T) {
	b := newBoard()
	b.users.SetUsers(activeUsers(3))
	b.pages.SetTotalUsers(3)
	require.NoError(t, b.toggle.OpenDelete(user.User{ID: "ghost"}))

	require.NoError(t, DeleteSelected(context.Background(), b.deps()))
	assert.Equal(t, []user.ID{"1", "2", "3"}, ids(b.users.Users()))
	assert.False(t, b.toggle.IsOpen())
	assert.Len(t, b.recorder.All(), 1)
}

func TestDeleteUserByID(t *testing.T) {
	b := newBoard()
	b.users.SetUsers(activeUsers(3))
	require.NoError(t, b.toggle.OpenCreate())

	require.NoError(t, DeleteUser(context.Background(), b.deps(), "1"))
	assert.Equal(t, []user.ID{"2", "3"}, ids(b.users.Users()))

	err := DeleteUser(context.Background(), b.deps(), "99")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, b.recorder.All(), 1)
}

func TestModalWrappersFollowStateMachine(t *testing.T) {
	b := newBoard()
	d := b.deps()
	require.NoError(t, OpenCreate(d))
	assert.ErrorIs(t, OpenDelete(d, user.User{ID: "1"}), store.ErrModalOpen)
	CloseModal(d)
	require.NoError(t, OpenDelete(d, user.User{ID: "1"}))
	assert.ErrorIs(t, OpenCreate(d), store.ErrModalOpen)
}

func TestScenarioTwelveUsersPageSizeSeven(t *testing.T) {
	b := newBoard()
	b.fetcher.users = activeUsers(12)
	require.NoError(t, FetchUsers(context.Background(), b.deps()))

	st := b.pages.State()
	assert.Equal(t, 7, st.RowsPerPage)
	assert.Equal(t, 2, st.TotalPages)

	b.pages.SetCurrentPage(2)
	view := store.Page(b.users.Users(), b.pages.State())
	assert.Equal(t, []user.ID{"8", "9", "10", "11", "12"}, ids(view))

	require.NoError(t, b.pages.SetRowsPerPage(10))
	st = b.pages.State()
	assert.Equal(t, 1, st.CurrentPage)
	assert.Equal(t, 2, st.TotalPages)
}

func TestScenarioDeleteLastRecordOnLastPage(t *testing.T) {
	b := newBoard()
	b.fetcher.users = activeUsers(8)
	require.NoError(t, FetchUsers(context.Background(), b.deps()))
	b.pages.SetCurrentPage(2)

	view := store.Page(b.users.Users(), b.pages.State())
	require.Len(t, view, 1)
	require.NoError(t, OpenDelete(b.deps(), view[0]))
	require.NoError(t, DeleteSelected(context.Background(), b.deps()))

	st := b.pages.State()
	assert.Equal(t, 7, st.TotalUsers)
	assert.Equal(t, 1, st.TotalPages)
	assert.Equal(t, 1, st.CurrentPage)
	assert.Len(t, store.Page(b.users.Users(), st), 7)
}
