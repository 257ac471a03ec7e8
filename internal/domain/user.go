// Package domain holds the shared office entities: users, rooms, players and seats.
package domain

import (
	"errors"
	"strings"
)

const (
	MaxUserIDLen    = 36
	MaxUsernameLen  = 36
	DefaultUsername = "guest"
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

// UserID identifies a participant for the lifetime of its connection.
// On the server it is the client token the session was opened with.
type UserID string

type User struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
}

func NewUser(id UserID) *User {
	return &User{ID: id, Username: DefaultUsername}
}

// NormalizeUsername trims surrounding whitespace and checks the length limits.
func NormalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if len(username) == 0 {
		return "", ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return "", ErrUsernameTooLong
	}
	return username, nil
}

func (u *User) SetUsername(username string) error {
	name, err := NormalizeUsername(username)
	if err != nil {
		return err
	}
	u.Username = name
	return nil
}
