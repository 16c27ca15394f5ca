package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAnonymousUser(t *testing.T) {
	assert.True(t, AnonymousUser().IsAnonymous())
	assert.True(t, (*User)(nil).IsAnonymous())
	assert.False(t, (&User{Identifier: "https://id.example/alice"}).IsAnonymous())
}

func TestNewUserFromIdentifiers(t *testing.T) {
	email := "alice@example.com"
	u := NewUserFromIdentifiers(&Identifiers{Identifier: "https://id.example/alice", Email: &email})

	assert.Equal(t, "https://id.example/alice", u.Identifier)
	assert.Equal(t, &email, u.Email)
	assert.Nil(t, u.DisplayName)
	assert.True(t, u.IsEnabled)
	assert.Zero(t, u.LoginCount)
	assert.Nil(t, u.LastLogin)
}

func TestSessionToken_Expired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tok := &SessionToken{ExpiresAt: now}

	assert.True(t, tok.Expired(now))
	assert.True(t, tok.Expired(now.Add(time.Second)))
	assert.False(t, tok.Expired(now.Add(-time.Second)))
}

func TestUser_Attributes(t *testing.T) {
	assert.Equal(t, map[string]any{"anonymous": true}, AnonymousUser().Attributes())

	name := "Alice"
	last := time.Date(2025, 3, 4, 5, 6, 7, 0, time.FixedZone("X", 3600))
	u := &User{Identifier: "https://id.example/alice", DisplayName: &name, IsEnabled: true, LoginCount: 3, LastLogin: &last}

	assert.Equal(t, map[string]any{
		"anonymous":    false,
		"identifier":   "https://id.example/alice",
		"display_name": "Alice",
		"is_enabled":   true,
		"login_count":  int64(3),
		"last_login":   "2025-03-04T04:06:07Z",
	}, u.Attributes())
}
