package tokens

import (
	"context"
	"sync"
	"time"

	"github.com/nytevibe/nytevibe/internal/server/models"
	"github.com/nytevibe/nytevibe/internal/common"
)

type key struct {
	purpose models.TokenPurpose
	token   string
}

// MemoryRepository keeps tokens in process memory. Expired revocations are
// pruned on write.
type MemoryRepository struct {
	mu      sync.Mutex
	now     func() time.Time
	tokens  map[key]models.OneTimeToken
	revoked map[string]time.Time
}

func NewMemoryRepository(now func() time.Time) *MemoryRepository {
	if now == nil {
		now = time.Now
	}
	return &MemoryRepository{
		now:     now,
		tokens:  map[key]models.OneTimeToken{},
		revoked: map[string]time.Time{},
	}
}

func (r *MemoryRepository) Create(ctx context.Context, t *models.OneTimeToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, existing := range r.tokens {
		if k.purpose == t.Purpose && existing.UserID == t.UserID {
			delete(r.tokens, k)
		}
	}
	stored := *t
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.now()
	}
	r.tokens[key{t.Purpose, t.Token}] = stored
	return nil
}

func (r *MemoryRepository) Find(ctx context.Context, purpose models.TokenPurpose, token string) (*models.OneTimeToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[key{purpose, token}]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, purpose models.TokenPurpose, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, key{purpose, token})
	return nil
}

func (r *MemoryRepository) Revoke(ctx context.Context, id string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for k, exp := range r.revoked {
		if !now.Before(exp) {
			delete(r.revoked, k)
		}
	}
	r.revoked[id] = until
	return nil
}

func (r *MemoryRepository) Revoked(ctx context.Context, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.revoked[id]
	return ok
}
