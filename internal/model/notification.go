package model

import "time"

type Notification struct {
	ID              uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          string     `gorm:"column:user_id;size:128;index;not null" json:"user_id"`
	Type            string     `gorm:"column:type;size:64;not null" json:"type"`
	Title           string     `gorm:"column:title;size:255" json:"title"`
	Body            string     `gorm:"column:body;type:text" json:"body"`
	ConversationID  *uint64    `gorm:"column:conversation_id;index" json:"conversation_id,omitempty"`
	CommentID       *uint64    `gorm:"column:comment_id;index" json:"comment_id,omitempty"`
	TradeProposalID *uint64    `gorm:"column:trade_proposal_id;index" json:"trade_proposal_id,omitempty"`
	ReadAt          *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
