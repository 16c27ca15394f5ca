package identity

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

// AnonymousPrefix starts every guest identifier.
const AnonymousPrefix = "anonymous:"

// AnonymousVerifier accepts any non-empty ticket and mints a fresh guest
// identity. Each login yields a new user.
type AnonymousVerifier struct{}

func NewAnonymousVerifier() *AnonymousVerifier {
	return &AnonymousVerifier{}
}

func (v *AnonymousVerifier) Verify(ctx context.Context, ticket string) (*models.Identifiers, error) {
	if ticket == "" {
		return nil, &RejectedError{Message: "empty ticket"}
	}

	provider := string(KindAnonymous)
	return &models.Identifiers{
		Identifier: AnonymousPrefix + uuid.NewString(),
		Provider:   &provider,
	}, nil
}
