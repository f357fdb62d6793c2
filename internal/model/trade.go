package model

import "time"

type TradeStatus string

const (
	TradeStatusPending   TradeStatus = "pending"
	TradeStatusAccepted  TradeStatus = "accepted"
	TradeStatusDeclined  TradeStatus = "declined"
	TradeStatusCountered TradeStatus = "countered"
)

// CanTransitionTo reports whether a proposal may move to the given status.
// pending is the only non-terminal state.
func (s TradeStatus) CanTransitionTo(to TradeStatus) bool {
	if s != TradeStatusPending {
		return false
	}
	return to == TradeStatusAccepted || to == TradeStatusDeclined || to == TradeStatusCountered
}

// TradeProposal is an offer to swap sneakers between two users. A countered
// proposal spawns a fresh proposal whose counters_proposal_id points back at
// the one it replaces.
type TradeProposal struct {
	ID                  uint64      `gorm:"primaryKey;autoIncrement" json:"id"`
	FromUserID          string      `gorm:"column:from_user_id;size:128;index;not null" json:"from_user_id"`
	ToUserID            string      `gorm:"column:to_user_id;size:128;index;not null" json:"to_user_id"`
	OfferedSneakerIDs   []uint64    `gorm:"column:offered_sneaker_ids;serializer:json;type:text" json:"offered_sneaker_ids"`
	RequestedSneakerIDs []uint64    `gorm:"column:requested_sneaker_ids;serializer:json;type:text" json:"requested_sneaker_ids"`
	Status              TradeStatus `gorm:"column:status;size:16;not null" json:"status"`
	Message             *string     `gorm:"column:message;type:text" json:"message,omitempty"`
	CountersProposalID  *uint64     `gorm:"column:counters_proposal_id;index" json:"counters_proposal_id,omitempty"`
	CreatedAt           time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TradeProposal) TableName() string {
	return "trade_proposals"
}
