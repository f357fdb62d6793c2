package model

import "time"

type ConversationType string

const (
	ConversationDirect ConversationType = "direct"
	ConversationGroup  ConversationType = "group"
)

func (t ConversationType) Valid() bool {
	return t == ConversationDirect || t == ConversationGroup
}

type Conversation struct {
	ID        uint64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Type      ConversationType `gorm:"column:type;size:16;not null;index" json:"type"`
	Name      *string          `gorm:"column:name;size:255" json:"name,omitempty"`
	AvatarURL *string          `gorm:"column:avatar_url;size:512" json:"avatar_url,omitempty"`
	CreatedBy string           `gorm:"column:created_by;size:128;index;not null" json:"created_by"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
	// Monotonically non-decreasing; bumped on every accepted message.
	LastMessageAt time.Time `gorm:"column:last_message_at;index" json:"last_message_at"`

	// Read-side projections, never stored.
	OtherUser   *UserSnapshot `gorm:"-" json:"other_user,omitempty"`
	UnreadCount int64         `gorm:"-" json:"unread_count,omitempty"`
}

func (Conversation) TableName() string {
	return "conversations"
}
