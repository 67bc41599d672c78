package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a feed entry authored by a user.
type Post struct {
	gorm.Model
	UserID  uint   `gorm:"not null;index" json:"userId"`
	Content string `gorm:"not null;type:varchar(500)" json:"content"`

	User  User    `gorm:"foreignKey:UserID;references:ID" json:"user"`
	Likes []*User `gorm:"many2many:post_likes" json:"likes"`
}

/** -------------------- DTOs -------------------- */

type CreatePostRequest struct {
	Content string `json:"content" binding:"required,max=500"`
}

type UpdatePostRequest struct {
	Content string `json:"content" binding:"required,max=500"`
}

type PostResponse struct {
	ID        uint         `json:"id"`
	Content   string       `json:"content"`
	User      UserResponse `json:"user"`
	LikeCount int          `json:"likeCount"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (p *Post) ToResponse() PostResponse {
	return PostResponse{
		ID:        p.ID,
		Content:   p.Content,
		User:      p.User.ToResponse(),
		LikeCount: len(p.Likes),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
