// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a local account keyed by the stable identifier the identity
// provider vouched for. Optional profile fields are nil when the provider
// did not supply them.
type User struct {
	Identifier        string
	DisplayName       *string
	Email             *string
	Provider          *string
	FormattedName     *string
	FamilyName        *string
	GivenName         *string
	PreferredUsername *string
	URL               *string
	Photo             *string

	IsEnabled  bool
	LoginCount int64
	LastLogin  *time.Time

	Created time.Time
	Updated time.Time
}

// AnonymousUser returns the empty user handed out when nobody is logged in.
func AnonymousUser() *User {
	return &User{}
}

// IsAnonymous reports whether u stands for "no authenticated user".
func (u *User) IsAnonymous() bool {
	return u == nil || u.Identifier == ""
}

// NewUserFromIdentifiers builds an enabled, never-logged-in user from a
// verified bundle. Timestamps are left for the repository to fill.
func NewUserFromIdentifiers(b *Identifiers) *User {
	return &User{
		Identifier:        b.Identifier,
		DisplayName:       b.DisplayName,
		Email:             b.Email,
		Provider:          b.Provider,
		FormattedName:     b.FormattedName,
		FamilyName:        b.FamilyName,
		GivenName:         b.GivenName,
		PreferredUsername: b.PreferredUsername,
		URL:               b.URL,
		Photo:             b.Photo,
		IsEnabled:         true,
	}
}

// Attributes flattens u for rendering. Nil profile fields are omitted and
// the anonymous user renders as {"anonymous": true}.
func (u *User) Attributes() map[string]any {
	if u.IsAnonymous() {
		return map[string]any{"anonymous": true}
	}

	attrs := map[string]any{
		"anonymous":   false,
		"identifier":  u.Identifier,
		"is_enabled":  u.IsEnabled,
		"login_count": u.LoginCount,
	}
	for name, v := range map[string]*string{
		"display_name":       u.DisplayName,
		"email":              u.Email,
		"provider":           u.Provider,
		"formatted_name":     u.FormattedName,
		"family_name":        u.FamilyName,
		"given_name":         u.GivenName,
		"preferred_username": u.PreferredUsername,
		"url":                u.URL,
		"photo":              u.Photo,
	} {
		if v != nil {
			attrs[name] = *v
		}
	}
	if u.LastLogin != nil {
		attrs["last_login"] = u.LastLogin.UTC().Format(time.RFC3339)
	}
	return attrs
}
