// Package inmem implements the repository interfaces on in-process maps.
// It backs the service tests and DB-less local runs. A single mutex
// serializes writers, standing in for the transactions of the GORM
// implementation: a counter update and its triggering write happen in one
// critical section or not at all.
package inmem

import (
	"sync"
	"time"

	"github.com/kicklink/social-backend/internal/model"
)

type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	lastTick time.Time

	nextConvID    uint64
	nextMessageID uint64
	nextTradeID   uint64
	nextCommentID uint64
	nextSneakerID uint64
	nextNotifID   uint64

	conversations map[uint64]*model.Conversation
	participants  map[uint64]map[string]*model.ConversationParticipant
	messages      map[uint64]*model.Message
	trades        map[uint64]*model.TradeProposal
	comments      map[uint64]*model.Comment
	likes         map[uint64]map[string]time.Time
	sneakers      map[uint64]*model.Sneaker
	notifications []*model.Notification
}

func NewStore() *Store {
	return &Store{
		now:           time.Now,
		conversations: make(map[uint64]*model.Conversation),
		participants:  make(map[uint64]map[string]*model.ConversationParticipant),
		messages:      make(map[uint64]*model.Message),
		trades:        make(map[uint64]*model.TradeProposal),
		comments:      make(map[uint64]*model.Comment),
		likes:         make(map[uint64]map[string]time.Time),
		sneakers:      make(map[uint64]*model.Sneaker),
	}
}

// SetNow overrides the clock. Test hook.
func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// tick returns the current time, guaranteed to advance between calls so
// creation order and timestamp order never disagree. Callers hold s.mu.
func (s *Store) tick() time.Time {
	t := s.now()
	if !t.After(s.lastTick) {
		t = s.lastTick.Add(time.Nanosecond)
	}
	s.lastTick = t
	return t
}
