package models

import (
	"gorm.io/gorm"
)

// Block is a directed edge: the blocker no longer wants to see messages
// from the blocked user. Only the recipient's own edges govern suppression
// toward that recipient; the edge says nothing about the reverse direction.
type Block struct {
	gorm.Model
	BlockerID uint `gorm:"not null;uniqueIndex:idx_blocker_blocked" json:"blockerId"`
	BlockedID uint `gorm:"not null;uniqueIndex:idx_blocker_blocked" json:"blockedId"`

	Blocker User `gorm:"foreignKey:BlockerID;references:ID" json:"-"`
	Blocked User `gorm:"foreignKey:BlockedID;references:ID" json:"-"`
}

/** -------------------- DTOs -------------------- */

type BlockRequest struct {
	BlockedID uint `json:"blockedId" binding:"required"`
}

type BlockedUserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
}
