package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	apperrors "github.com/chupakbra/userboard/internal/errors"
	"github.com/chupakbra/userboard/internal/i18n"
	"github.com/chupakbra/userboard/internal/logging"
	"github.com/chupakbra/userboard/internal/notify"
	"github.com/chupakbra/userboard/internal/store"
	"github.com/chupakbra/userboard/internal/user"
)

var (
	// ErrInFlight is returned when the same operation is already running.
	ErrInFlight = errors.New("operation already in progress")
	// ErrNoEndpoint is returned by a fetch when no endpoint is configured.
	ErrNoEndpoint = errors.New("no users endpoint configured")
	// ErrNotFound is returned when a record id is not on the board.
	ErrNotFound = errors.New("user not found")
)

// UserList is the users container surface the operations need.
type UserList interface {
	Users() []user.User
	SetUsers(list []user.User)
	Len() int
}

// PageState is the pagination container surface the operations need.
type PageState interface {
	SetTotalUsers(n int)
	ResetPagination()
}

// Busy is the loading container surface the operations need.
type Busy interface {
	Begin(key string) bool
	End(key string)
}

// Modal is the toggle container surface the operations need.
type Modal interface {
	OpenCreate() error
	OpenDelete(u user.User) error
	Close()
	Data() (user.User, bool)
}

// Fetcher reads the remote users collection.
type Fetcher interface {
	FetchUsers(ctx context.Context) ([]user.User, error)
}

// Deps carries everything the operations touch.
type Deps struct {
	Users      UserList
	Pagination PageState
	Loading    Busy
	Toggle     Modal
	Fetcher    Fetcher
	Notifier   notify.Sink
	Messages   i18n.Translator
	Logger     *slog.Logger
	// Endpoint is used in error descriptions only.
	Endpoint string
	// NewID generates ids for created records. Defaults to a random UUID.
	NewID func() user.ID
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return logging.Discard()
	}
	return d.Logger
}

func (d Deps) newID() user.ID {
	if d.NewID == nil {
		return user.ID(uuid.NewString())
	}
	return d.NewID()
}

// uniqueID draws ids until one is not already on the list.
func (d Deps) uniqueID(list []user.User) user.ID {
	for {
		id := d.newID()
		if _, taken := user.Find(list, id); !taken && id != "" {
			return id
		}
	}
}

// FetchUsers replaces the list with the active records of the remote
// collection. On failure the list is left untouched.
func FetchUsers(ctx context.Context, d Deps) error {
	if !d.Loading.Begin(store.LoadingUsers) {
		return ErrInFlight
	}
	defer d.Loading.End(store.LoadingUsers)

	log := d.logger()
	log.Debug("fetching users", "endpoint", d.Endpoint)

	var (
		list []user.User
		err  error
	)
	if d.Fetcher == nil {
		err = ErrNoEndpoint
	} else {
		list, err = d.Fetcher.FetchUsers(ctx)
	}
	if err != nil {
		desc := apperrors.Handle(d.Endpoint, err).Error()
		notify.Error(d.Notifier, d.Messages.T("users.fetch.error"), notify.WithDescription(desc))
		log.Error("fetching users failed", "endpoint", d.Endpoint, "error", err)
		return fmt.Errorf("fetching users: %w", err)
	}

	active := user.Active(list)
	d.Users.SetUsers(active)
	d.Pagination.SetTotalUsers(len(active))
	notify.Success(d.Notifier, d.Messages.T("users.fetch.success"))
	log.Info("fetched users", "received", len(list), "active", len(active))
	return nil
}

// Reload resets pagination and fetches again. The totals keep tracking the
// current list, so a failed fetch still leaves a consistent board.
func Reload(ctx context.Context, d Deps) error {
	d.Pagination.ResetPagination()
	d.Pagination.SetTotalUsers(d.Users.Len())
	return FetchUsers(ctx, d)
}

// Bootstrap fetches only when the board has no records yet.
func Bootstrap(ctx context.Context, d Deps) error {
	if d.Users.Len() > 0 {
		return nil
	}
	return FetchUsers(ctx, d)
}

// CreateUser appends a record built from draft. Invalid drafts are rejected
// with *user.FieldErrors before anything changes.
func CreateUser(ctx context.Context, d Deps, draft user.Draft) (created user.User, err error) {
	if err := draft.Validate(); err != nil {
		return user.User{}, err
	}
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	if !d.Loading.Begin(store.LoadingCreateUser) {
		return user.User{}, ErrInFlight
	}
	defer d.Loading.End(store.LoadingCreateUser)

	log := d.logger()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("creating user: %v", r)
			created = user.User{}
			notify.Error(d.Notifier, d.Messages.T("users.create.error"), notify.WithDescription(fmt.Sprint(r)))
			log.Error("creating user failed", "panic", r)
		}
	}()

	draft = draft.Normalized()
	list := d.Users.Users()
	created = user.User{
		ID:        d.uniqueID(list),
		FirstName: draft.FirstName,
		LastName:  draft.LastName,
		Email:     draft.Email,
		Status:    true,
		Skills:    []string{},
		Avatar:    []user.Avatar{},
	}
	list = append(list, created)
	d.Users.SetUsers(list)
	d.Pagination.SetTotalUsers(len(list))
	d.Toggle.Close()

	notify.Success(d.Notifier, d.Messages.T("users.create.success"))
	log.Info("created user", "id", created.ID.String(), "total", len(list))
	return created, nil
}

// DeleteSelected removes the record carried by the delete modal and closes
// it. A payload that is no longer on the list leaves the list unchanged.
func DeleteSelected(ctx context.Context, d Deps) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !d.Loading.Begin(store.LoadingDeleteUser) {
		return ErrInFlight
	}
	defer d.Loading.End(store.LoadingDeleteUser)

	log := d.logger()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("deleting user: %v", r)
			notify.Error(d.Notifier, d.Messages.T("users.delete.error"), notify.WithDescription(fmt.Sprint(r)))
			log.Error("deleting user failed", "panic", r)
		}
	}()

	list := d.Users.Users()
	target, ok := d.Toggle.Data()
	if ok {
		list = user.Without(list, target.ID)
	}
	d.Users.SetUsers(list)
	d.Pagination.SetTotalUsers(len(list))
	d.Toggle.Close()

	notify.Success(d.Notifier, d.Messages.T("users.delete.success"))
	log.Info("deleted user", "id", target.ID.String(), "total", len(list))
	return nil
}

// DeleteUser selects the record with id and deletes it, replacing any modal
// that was left open.
func DeleteUser(ctx context.Context, d Deps, id user.ID) error {
	u, ok := user.Find(d.Users.Users(), id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	d.Toggle.Close()
	if err := d.Toggle.OpenDelete(u); err != nil {
		return err
	}
	return DeleteSelected(ctx, d)
}

// OpenCreate opens the create modal.
func OpenCreate(d Deps) error {
	return d.Toggle.OpenCreate()
}

// OpenDelete opens the delete modal carrying u.
func OpenDelete(d Deps, u user.User) error {
	return d.Toggle.OpenDelete(u)
}

// CloseModal closes whichever modal is open.
func CloseModal(d Deps) {
	d.Toggle.Close()
}
