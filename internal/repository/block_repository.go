package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"relay-service/internal/models"
)

// BlockRepository owns the directed block edges between users. The relay's
// delivery filter reads through BlockedIDs on every send; results are never
// cached here so a mutation is visible to the very next message.
type BlockRepository interface {
	Add(ctx context.Context, blockerID, blockedID uint) error
	Remove(ctx context.Context, blockerID, blockedID uint) error
	BlockedIDs(ctx context.Context, userID uint) (map[uint]struct{}, error)
	ListBlocked(ctx context.Context, userID uint) ([]models.User, error)
	RemoveAllForUser(ctx context.Context, userID uint) error
}

type blockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &blockRepository{db: db}
}

// Add records the edge blocker -> blocked. Blocking the same user twice is a
// no-op thanks to the composite unique index.
func (r *blockRepository) Add(ctx context.Context, blockerID, blockedID uint) error {
	block := models.Block{BlockerID: blockerID, BlockedID: blockedID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&block).Error
}

func (r *blockRepository) Remove(ctx context.Context, blockerID, blockedID uint) error {
	return r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.Block{}).Error
}

// BlockedIDs returns the set of user ids that userID has blocked.
func (r *blockRepository) BlockedIDs(ctx context.Context, userID uint) (map[uint]struct{}, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Block{}).
		Where("blocker_id = ?", userID).
		Pluck("blocked_id", &ids).Error
	if err != nil {
		return nil, err
	}

	blocked := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		blocked[id] = struct{}{}
	}
	return blocked, nil
}

func (r *blockRepository) ListBlocked(ctx context.Context, userID uint) ([]models.User, error) {
	var blocks []models.Block
	err := r.db.WithContext(ctx).
		Preload("Blocked").
		Where("blocker_id = ?", userID).
		Find(&blocks).Error
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(blocks))
	for _, b := range blocks {
		users = append(users, b.Blocked)
	}
	return users, nil
}

// RemoveAllForUser drops every edge the user participates in, either side.
// Called when an account is deleted.
func (r *blockRepository) RemoveAllForUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Where("blocker_id = ? OR blocked_id = ?", userID, userID).
		Delete(&models.Block{}).Error
}
