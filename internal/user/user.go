// Package user defines the user record shown on the board and the helpers
// that filter and validate it.
package user

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID identifies a user record. Records fetched from the API carry numeric
// ids; records created locally carry an opaque token.
type ID string

// UnmarshalJSON accepts both a JSON number and a JSON string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding user id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding user id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes numeric ids as numbers so persisted state keeps the API
// shape. Anything else, including "007" or "+5", is written as a string.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// numeric reports whether id is an integer in canonical decimal form, which
// is always a valid JSON number.
func (id ID) numeric() bool {
	if id == "" {
		return false
	}
	n, err := strconv.ParseInt(string(id), 10, 64)
	return err == nil && strconv.FormatInt(n, 10) == string(id)
}

// String returns the id as text.
func (id ID) String() string { return string(id) }

// AvatarStatus is the upload state of an avatar file.
type AvatarStatus string

const (
	AvatarDone      AvatarStatus = "done"
	AvatarUploading AvatarStatus = "uploading"
	AvatarError     AvatarStatus = "error"
)

// Avatar describes one uploaded profile picture.
type Avatar struct {
	Name    string       `json:"name"`
	Percent float64      `json:"percent"`
	Size    int64        `json:"size"`
	Status  AvatarStatus `json:"status"`
	Type    string       `json:"type"`
	UID     string       `json:"uid"`
	URL     string       `json:"url"`
}

// User is a single record on the board.
type User struct {
	ID        ID       `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Status    bool     `json:"status"`
	Birthday  string   `json:"birthday"` // ISO-8601, may be empty
	Skills    []string `json:"skills"`
	Avatar    []Avatar `json:"avatar"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Active returns the records whose status flag is set, in their original order.
func Active(users []User) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		if u.Status {
			out = append(out, u)
		}
	}
	return out
}

// Without returns users minus every record carrying id. Order is preserved.
func Without(users []User, id ID) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		if u.ID != id {
			out = append(out, u)
		}
	}
	return out
}

// Find returns the record carrying id.
func Find(users []User, id ID) (User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// Matches reports whether text occurs in the first name, last name or email,
// ignoring case. An empty text matches everything.
func Matches(u User, text string) bool {
	if text == "" {
		return true
	}
	lower := strings.ToLower(text)
	for _, field := range []string{u.FirstName, u.LastName, u.Email} {
		if strings.Contains(strings.ToLower(field), lower) {
			return true
		}
	}
	return false
}

// Filter returns the records matching text.
func Filter(users []User, text string) []User {
	if text == "" {
		return users
	}
	var out []User
	for _, u := range users {
		if Matches(u, text) {
			out = append(out, u)
		}
	}
	return out
}
