package model

import "time"

// CommentLike records one user liking one comment. The composite primary key
// is what makes likeComment idempotent: there is never more than one row per
// (comment, user) pair.
type CommentLike struct {
	CommentID uint64    `gorm:"column:comment_id;primaryKey;autoIncrement:false" json:"comment_id"`
	UserID    string    `gorm:"column:user_id;size:128;primaryKey" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (CommentLike) TableName() string {
	return "comment_likes"
}
