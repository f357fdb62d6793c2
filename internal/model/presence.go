package model

import "time"

// Ephemeral overlay types. None of these are persisted; losing them never
// corrupts durable data.

// MessageReaction is one emoji reaction on a message. At most one reaction
// per (message, user, emoji) triple; a user may react with several distinct
// emojis.
type MessageReaction struct {
	MessageID uint64    `json:"message_id"`
	UserID    string    `json:"user_id"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}

// ReactionGroup is the aggregated view of one emoji on a message.
type ReactionGroup struct {
	Emoji string   `json:"emoji"`
	Count int      `json:"count"`
	Users []string `json:"users"`
}

// TypingIndicator is a last-value-wins typing signal. It expires after a
// short inactivity window even without a stopped-typing event.
type TypingIndicator struct {
	ConversationID uint64    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	Username       string    `json:"username"`
	IsTyping       bool      `json:"is_typing"`
	Timestamp      time.Time `json:"timestamp"`
}
