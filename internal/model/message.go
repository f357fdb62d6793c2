package model

import "time"

type MessageType string

const (
	MessageText          MessageType = "text"
	MessageImage         MessageType = "image"
	MessageVideo         MessageType = "video"
	MessageVoice         MessageType = "voice"
	MessageSneakerCard   MessageType = "sneaker_card"
	MessageTradeProposal MessageType = "trade_proposal"
	MessageLocation      MessageType = "location"
	MessageSystem        MessageType = "system"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageVideo, MessageVoice,
		MessageSneakerCard, MessageTradeProposal, MessageLocation, MessageSystem:
		return true
	}
	return false
}

// RequiresMedia reports whether a message of this type must carry media_url.
func (t MessageType) RequiresMedia() bool {
	return t == MessageImage || t == MessageVideo || t == MessageVoice
}

// RequiresSneaker reports whether a message of this type must carry sneaker_id.
func (t MessageType) RequiresSneaker() bool {
	return t == MessageSneakerCard
}

// RequiresTrade reports whether a message of this type must carry trade_proposal_id.
func (t MessageType) RequiresTrade() bool {
	return t == MessageTradeProposal
}

// Message is a single entry in a conversation. conversation_id, sender_id and
// created_at are immutable after creation; content/media_url may only be
// changed by the sender, which marks the message edited.
type Message struct {
	ID               uint64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID   uint64      `gorm:"column:conversation_id;index;not null" json:"conversation_id"`
	SenderID         string      `gorm:"column:sender_id;size:128;index;not null" json:"sender_id"`
	Content          string      `gorm:"type:text" json:"content"`
	MessageType      MessageType `gorm:"column:message_type;size:32;not null" json:"message_type"`
	MediaURL         *string     `gorm:"column:media_url;size:512" json:"media_url,omitempty"`
	SneakerID        *uint64     `gorm:"column:sneaker_id;index" json:"sneaker_id,omitempty"`
	TradeProposalID  *uint64     `gorm:"column:trade_proposal_id;index" json:"trade_proposal_id,omitempty"`
	ReplyToMessageID *uint64     `gorm:"column:reply_to_message_id" json:"reply_to_message_id,omitempty"`
	IsEdited         bool        `gorm:"column:is_edited" json:"is_edited"`
	IsDeleted        bool        `gorm:"column:is_deleted" json:"is_deleted"`
	CreatedAt        time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time   `gorm:"autoUpdateTime" json:"updated_at"`

	// Read-side projections, never stored. IsRead is derived from the
	// counterpart's read position in direct conversations; per-participant
	// last_read_at is the source of truth.
	IsRead  bool          `gorm:"-" json:"is_read"`
	Sender  *UserSnapshot `gorm:"-" json:"sender,omitempty"`
	Sneaker *Sneaker      `gorm:"-" json:"sneaker,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}
