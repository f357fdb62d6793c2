package model

import "time"

type ParticipantRole string

const (
	RoleMember ParticipantRole = "member"
	RoleAdmin  ParticipantRole = "admin"
)

// ConversationParticipant is the standing membership of a user in a
// conversation. Identity is the (conversation_id, user_id) pair.
type ConversationParticipant struct {
	ConversationID uint64          `gorm:"column:conversation_id;primaryKey;autoIncrement:false" json:"conversation_id"`
	UserID         string          `gorm:"column:user_id;size:128;primaryKey" json:"user_id"`
	Role           ParticipantRole `gorm:"column:role;size:16;not null" json:"role"`
	IsMuted        bool            `gorm:"column:is_muted" json:"is_muted"`
	// Monotonically non-decreasing per participant; zero means never read.
	LastReadAt  time.Time `gorm:"column:last_read_at" json:"last_read_at"`
	UnreadCount int64     `gorm:"column:unread_count;not null;default:0" json:"unread_count"`
	JoinedAt    time.Time `gorm:"column:joined_at;autoCreateTime" json:"joined_at"`
}

func (ConversationParticipant) TableName() string {
	return "conversation_participants"
}
