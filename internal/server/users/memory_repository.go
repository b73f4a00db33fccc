package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nytevibe/nytevibe/internal/server/models"
	"github.com/nytevibe/nytevibe/internal/common"
)

// MemoryRepository keeps users in process memory. Returned records are
// copies; callers persist changes with Update.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]*models.User
	order []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: map[string]*models.User{}}
}

// Create assigns an id and stores user. A taken username, email or phone
// yields a *ConflictError naming the field.
func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if field := r.conflict(user, ""); field != "" {
		return nil, &ConflictError{Field: field}
	}

	u := *user
	u.ID = uuid.NewString()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.byID[u.ID] = &u
	r.order = append(r.order, u.ID)

	out := u
	return &out, nil
}

func (r *MemoryRepository) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[user.ID]; !ok {
		return common.ErrorNotFound
	}
	if field := r.conflict(user, user.ID); field != "" {
		return &ConflictError{Field: field}
	}
	u := *user
	r.byID[u.ID] = &u
	return nil
}

func (r *MemoryRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	return &out, nil
}

func (r *MemoryRepository) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.find(func(u *models.User) bool {
		return strings.EqualFold(u.Username, login) || strings.EqualFold(u.Email, login)
	})
}

func (r *MemoryRepository) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return phone != "" && u.Phone == phone })
}

func (r *MemoryRepository) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if u := r.byID[id]; match(u) {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

// conflict returns the first unique field of user already held by another
// record, or "". Callers hold the lock.
func (r *MemoryRepository) conflict(user *models.User, self string) string {
	for _, id := range r.order {
		if id == self {
			continue
		}
		u := r.byID[id]
		switch {
		case strings.EqualFold(u.Username, user.Username):
			return "username"
		case strings.EqualFold(u.Email, user.Email):
			return "email"
		case user.Phone != "" && u.Phone == user.Phone:
			return "phone"
		}
	}
	return ""
}
