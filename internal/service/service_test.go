package service

import (
	"context"
	"sync"

	"relay-service/internal/models"
	"relay-service/internal/repository"
)

// memUserRepo is an in-memory UserRepository for service tests.
type memUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uint]*models.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

// memBlockRepo is an in-memory BlockRepository for service tests.
type memBlockRepo struct {
	mu    sync.Mutex
	edges map[[2]uint]struct{} // [blocker, blocked]
	users *memUserRepo
}

func newMemBlockRepo(users *memUserRepo) *memBlockRepo {
	return &memBlockRepo{edges: make(map[[2]uint]struct{}), users: users}
}

func (r *memBlockRepo) Add(_ context.Context, blockerID, blockedID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edges[[2]uint{blockerID, blockedID}] = struct{}{}
	return nil
}

func (r *memBlockRepo) Remove(_ context.Context, blockerID, blockedID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.edges, [2]uint{blockerID, blockedID})
	return nil
}

func (r *memBlockRepo) BlockedIDs(_ context.Context, userID uint) (map[uint]struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[uint]struct{})
	for edge := range r.edges {
		if edge[0] == userID {
			out[edge[1]] = struct{}{}
		}
	}
	return out, nil
}

func (r *memBlockRepo) ListBlocked(ctx context.Context, userID uint) ([]models.User, error) {
	ids, err := r.BlockedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(ids))
	for id := range ids {
		if u, err := r.users.FindByID(ctx, id); err == nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memBlockRepo) RemoveAllForUser(_ context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for edge := range r.edges {
		if edge[0] == userID || edge[1] == userID {
			delete(r.edges, edge)
		}
	}
	return nil
}
