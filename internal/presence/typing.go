package presence

import (
	"sync"
	"time"

	"github.com/kicklink/social-backend/internal/model"
)

// TypingTracker keeps the most recent typing signal per (conversation, user).
// Last value wins; an entry expires ttl after its timestamp even when no
// stopped-typing signal ever arrives.
type TypingTracker struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	byConv map[uint64]map[string]model.TypingIndicator
}

func NewTypingTracker(ttl time.Duration) *TypingTracker {
	if ttl <= 0 {
		ttl = 8 * time.Second
	}
	return &TypingTracker{
		ttl:    ttl,
		now:    time.Now,
		byConv: make(map[uint64]map[string]model.TypingIndicator),
	}
}

// SetNow overrides the clock. Test hook.
func (t *TypingTracker) SetNow(now func() time.Time) {
	t.mu.Lock()
	t.now = now
	t.mu.Unlock()
}

func (t *TypingTracker) Set(ind model.TypingIndicator) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ind.Timestamp = t.now()
	users := t.byConv[ind.ConversationID]
	if users == nil {
		users = make(map[string]model.TypingIndicator)
		t.byConv[ind.ConversationID] = users
	}
	users[ind.UserID] = ind
}

// Active returns who is currently typing in a conversation, reconstructed
// purely from the most recent signal per user within the expiry window.
// Expired and stopped entries are pruned on the way.
func (t *TypingTracker) Active(convID uint64) []model.TypingIndicator {
	t.mu.Lock()
	defer t.mu.Unlock()

	users := t.byConv[convID]
	if len(users) == 0 {
		return nil
	}
	cutoff := t.now().Add(-t.ttl)
	var active []model.TypingIndicator
	for uid, ind := range users {
		if !ind.IsTyping || ind.Timestamp.Before(cutoff) {
			delete(users, uid)
			continue
		}
		active = append(active, ind)
	}
	if len(users) == 0 {
		delete(t.byConv, convID)
	}
	return active
}
