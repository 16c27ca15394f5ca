package models

// Identifiers is the verified profile returned by an identity provider.
// Only Identifier is guaranteed to be set.
type Identifiers struct {
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
}
