package service

import (
	"context"
	"errors"

	"relay-service/internal/models"
	"relay-service/internal/repository"
)

var (
	ErrSelfBlock    = errors.New("cannot block yourself")
	ErrUserNotFound = errors.New("user not found")
)

// BlockService manages the recipient-owned block edges consumed by the
// relay's delivery filter.
type BlockService struct {
	users  repository.UserRepository
	blocks repository.BlockRepository
}

func NewBlockService(users repository.UserRepository, blocks repository.BlockRepository) *BlockService {
	return &BlockService{users: users, blocks: blocks}
}

// Block records blocker -> blocked. The target must exist; blocking an
// already-blocked user succeeds silently.
func (s *BlockService) Block(ctx context.Context, blockerID, blockedID uint) error {
	if blockerID == blockedID {
		return ErrSelfBlock
	}

	if _, err := s.users.FindByID(ctx, blockedID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return s.blocks.Add(ctx, blockerID, blockedID)
}

// Unblock removes the edge. Removing an edge that does not exist is a no-op.
func (s *BlockService) Unblock(ctx context.Context, blockerID, blockedID uint) error {
	return s.blocks.Remove(ctx, blockerID, blockedID)
}

func (s *BlockService) ListBlocked(ctx context.Context, blockerID uint) ([]models.BlockedUserResponse, error) {
	users, err := s.blocks.ListBlocked(ctx, blockerID)
	if err != nil {
		return nil, err
	}

	out := make([]models.BlockedUserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, models.BlockedUserResponse{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			Avatar:   u.Avatar,
		})
	}
	return out, nil
}
