// Package notify carries user-facing notifications from the board operations
// to whatever surface renders them: TUI toasts, CLI stderr lines, the log.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Kind is the category of a notification.
type Kind string

const (
	KindSuccess     Kind = "success"
	KindWarning     Kind = "warning"
	KindError       Kind = "error"
	KindDescription Kind = "description"
	KindDefault     Kind = "default"
)

// Notification is one message for the user.
type Notification struct {
	Kind        Kind      `json:"kind"`
	Text        string    `json:"text"`
	Description string    `json:"description,omitempty"`
	At          time.Time `json:"at"`
}

// Sink receives notifications.
type Sink interface {
	Notify(n Notification)
}

// Option decorates a notification before it is sent.
type Option func(*Notification)

// WithDescription attaches a secondary line.
func WithDescription(d string) Option {
	return func(n *Notification) { n.Description = d }
}

// Send builds a notification of kind and hands it to s. Unknown kinds fall
// back to KindDefault.
func Send(s Sink, kind Kind, text string, opts ...Option) {
	if s == nil {
		return
	}
	switch kind {
	case KindSuccess, KindWarning, KindError, KindDescription:
	default:
		kind = KindDefault
	}
	n := Notification{Kind: kind, Text: text, At: time.Now()}
	for _, o := range opts {
		o(&n)
	}
	s.Notify(n)
}

func Success(s Sink, text string, opts ...Option) { Send(s, KindSuccess, text, opts...) }
func Warning(s Sink, text string, opts ...Option) { Send(s, KindWarning, text, opts...) }
func Error(s Sink, text string, opts ...Option)   { Send(s, KindError, text, opts...) }

// Recorder keeps every notification it receives.
type Recorder struct {
	mu  sync.Mutex
	all []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, n)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.all...)
}

// Drain returns and forgets the recorded notifications.
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.all
	r.all = nil
	return out
}

// ANSI color codes for Writer.
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorGold  = "\033[38;5;220m"
)

// Writer prints one line per notification, colored when Color is set.
type Writer struct {
	W     io.Writer
	Color bool
}

func (w Writer) Notify(n Notification) {
	prefix, color := "", ""
	switch n.Kind {
	case KindSuccess:
		prefix, color = "✓ ", colorGreen
	case KindError:
		prefix, color = "✗ ", colorRed
	case KindWarning:
		prefix, color = "! ", colorGold
	}
	line := prefix + n.Text
	if n.Description != "" {
		line += " — " + n.Description
	}
	if w.Color && color != "" {
		line = color + line + colorReset
	}
	fmt.Fprintln(w.W, line)
}

// Logged mirrors notifications into a structured log before passing them on.
type Logged struct {
	Next   Sink
	Logger *slog.Logger
}

func (l Logged) Notify(n Notification) {
	if l.Logger != nil {
		level := slog.LevelInfo
		switch n.Kind {
		case KindError:
			level = slog.LevelError
		case KindWarning:
			level = slog.LevelWarn
		}
		l.Logger.Log(context.Background(), level, "notification", "kind", string(n.Kind), "text", n.Text, "description", n.Description)
	}
	if l.Next != nil {
		l.Next.Notify(n)
	}
}
