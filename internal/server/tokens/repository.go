// Package tokens stores the one-time tokens sent in emailed links and the
// ids of revoked access tokens.
package tokens

import (
	"context"
	"time"

	"github.com/nytevibe/nytevibe/internal/server/models"
)

type Repository interface {
	// Create stores t, replacing any earlier token of the same purpose for
	// the same user.
	Create(ctx context.Context, t *models.OneTimeToken) error
	Find(ctx context.Context, purpose models.TokenPurpose, token string) (*models.OneTimeToken, error)
	Delete(ctx context.Context, purpose models.TokenPurpose, token string) error

	// Revoke blocks the access token id until its expiry.
	Revoke(ctx context.Context, id string, until time.Time) error
	Revoked(ctx context.Context, id string) bool
}
