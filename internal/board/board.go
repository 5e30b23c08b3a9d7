// Package board wires configuration, storage, state containers, the users
// endpoint and notifications into one handle shared by the CLI and the TUI.
package board

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/chupakbra/userboard/internal/actions"
	"github.com/chupakbra/userboard/internal/client"
	"github.com/chupakbra/userboard/internal/config"
	"github.com/chupakbra/userboard/internal/i18n"
	"github.com/chupakbra/userboard/internal/logging"
	"github.com/chupakbra/userboard/internal/notify"
	"github.com/chupakbra/userboard/internal/storage"
	"github.com/chupakbra/userboard/internal/store"
	"github.com/chupakbra/userboard/internal/theme"
	"github.com/chupakbra/userboard/internal/user"
)

// Namespaces lists every persisted key, in the order state is shown.
var Namespaces = []string{store.KeyUsers, store.KeyPagination, store.KeyLoading, store.KeyToggle, theme.Key}

// Board is an opened board.
type Board struct {
	Settings   config.Settings
	KV         storage.KV
	Users      *store.Users
	Pagination *store.Pagination
	Loading    *store.Loading
	Toggle     *store.Toggle
	Client     *client.Client
	Messages   i18n.Translator
	Logger     *slog.Logger

	detect  func() bool
	closers []io.Closer
}

type options struct {
	kv     storage.KV
	logger *slog.Logger
	detect func() bool
}

// Option customises Open.
type Option func(*options)

// WithKV uses kv instead of opening the configured backend. Close still
// closes it.
func WithKV(kv storage.KV) Option {
	return func(o *options) { o.kv = kv }
}

// WithLogger uses l instead of opening the configured log file.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithThemeDetector replaces the terminal background query used when no
// theme is stored.
func WithThemeDetector(detect func() bool) Option {
	return func(o *options) { o.detect = detect }
}

// Open builds a board from s. Persisted state is hydrated; unreadable
// namespaces are logged and start from their defaults. Busy flags never
// survive a restart.
func Open(s config.Settings, opts ...Option) (*Board, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	b := &Board{Settings: s, detect: theme.DetectTerminal}
	if o.detect != nil {
		b.detect = o.detect
	}
	if o.logger != nil {
		b.Logger = o.logger
	} else {
		logger, closer, err := logging.Open(s.LogFile, slog.LevelInfo)
		if err != nil {
			return nil, err
		}
		b.Logger = logger
		b.closers = append(b.closers, closer)
	}

	if o.kv != nil {
		b.KV = o.kv
	} else {
		kv, err := storage.Open(s.StateBackend, s.StatePath)
		if err != nil {
			b.Close() //nolint:errcheck
			return nil, fmt.Errorf("opening state: %w", err)
		}
		b.KV = kv
	}
	b.closers = append(b.closers, b.KV)

	msgs, err := i18n.New(s.Locale)
	if err != nil {
		b.Close() //nolint:errcheck
		return nil, err
	}
	b.Messages = msgs

	storeOpts := []store.Option{
		store.WithPersister(b.KV),
		store.WithErrorHandler(func(key string, err error) {
			b.Logger.Error("persisting state", "key", key, "error", err)
		}),
	}
	b.Users = store.NewUsers(storeOpts...)
	b.Pagination = store.NewPagination(s.RowsPerPage, storeOpts...)
	b.Loading = store.NewLoading(storeOpts...)
	b.Toggle = store.NewToggle(storeOpts...)

	for key, hydrate := range map[string]func() error{
		store.KeyUsers:      b.Users.Hydrate,
		store.KeyPagination: b.Pagination.Hydrate,
		store.KeyLoading:    b.Loading.Hydrate,
		store.KeyToggle:     b.Toggle.Hydrate,
	} {
		if err := hydrate(); err != nil {
			b.Logger.Warn("discarding unreadable state", "key", key, "error", err)
		}
	}
	b.Loading.ResetLoading()
	// The persisted total can drift from a hand-edited list; the list wins.
	if n := b.Users.Len(); b.Pagination.State().TotalUsers != n {
		b.Pagination.SetTotalUsers(n)
	}

	if s.Endpoint.URL != "" {
		c, err := client.New(&s.Endpoint)
		if err != nil {
			b.Close() //nolint:errcheck
			return nil, err
		}
		b.Client = c
	}

	b.Logger.Info("board opened",
		"backend", s.StateBackend,
		"endpoint", s.Endpoint.URL,
		"locale", b.Messages.Locale(),
		"users", b.Users.Len())
	return b, nil
}

// Deps returns the operation dependencies, delivering notifications to sink
// and mirroring them into the log.
func (b *Board) Deps(sink notify.Sink) actions.Deps {
	d := actions.Deps{
		Users:      b.Users,
		Pagination: b.Pagination,
		Loading:    b.Loading,
		Toggle:     b.Toggle,
		Notifier:   notify.Logged{Next: sink, Logger: b.Logger},
		Messages:   b.Messages,
		Logger:     b.Logger,
		Endpoint:   b.Settings.Endpoint.URL,
	}
	if b.Client != nil {
		d.Fetcher = b.Client
	}
	return d
}

// Theme returns the stored preference or the detected one.
func (b *Board) Theme() theme.Mode {
	return theme.Resolve(b.KV, b.detect)
}

// Snapshot is every persisted namespace at one moment.
type Snapshot struct {
	Users      []user.User           `json:"users"`
	Pagination store.PaginationState `json:"pagination"`
	Loading    map[string]bool       `json:"loading"`
	Toggle     store.ToggleState     `json:"toggle"`
	Theme      theme.Mode            `json:"theme,omitempty"`
}

// Snapshot reads every container.
func (b *Board) Snapshot() Snapshot {
	s := Snapshot{
		Users:      b.Users.Users(),
		Pagination: b.Pagination.State(),
		Loading:    b.Loading.Snapshot(),
		Toggle:     b.Toggle.Snapshot(),
	}
	if m, ok, err := theme.Stored(b.KV); err == nil && ok {
		s.Theme = m
	}
	return s
}

// Reset restores the named namespaces to their initial state. No names
// means all of them.
func (b *Board) Reset(namespaces ...string) error {
	if len(namespaces) == 0 {
		namespaces = Namespaces
	}
	for _, ns := range namespaces {
		switch ns {
		case store.KeyUsers:
			b.Users.ResetUsers()
			b.Pagination.SetTotalUsers(0)
		case store.KeyPagination:
			b.Pagination.ResetPagination()
		case store.KeyLoading:
			b.Loading.ResetLoading()
		case store.KeyToggle:
			b.Toggle.ResetToggles()
		case theme.Key:
			if err := b.KV.Delete(theme.Key); err != nil {
				return fmt.Errorf("clearing theme: %w", err)
			}
		default:
			valid := append([]string(nil), Namespaces...)
			sort.Strings(valid)
			return fmt.Errorf("unknown state namespace %q (valid: %v)", ns, valid)
		}
		b.Logger.Info("state reset", "namespace", ns)
	}
	return nil
}

// Close releases the state backend and the log file.
func (b *Board) Close() error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	b.closers = nil
	return first
}
