package presence

import (
	"sort"
	"sync"
	"time"

	"github.com/kicklink/social-backend/internal/model"
)

// ReactionSet is the in-memory multiset of message reactions, keyed by the
// (message, user, emoji) triple. Membership semantics only: there is no
// ordering guarantee across subscribers.
type ReactionSet struct {
	mu        sync.Mutex
	byMessage map[uint64]map[string]map[string]time.Time // message -> user -> emoji -> since
}

func NewReactionSet() *ReactionSet {
	return &ReactionSet{byMessage: make(map[uint64]map[string]map[string]time.Time)}
}

// Toggle flips one (message, user, emoji) triple and reports whether the
// reaction is now present. Toggling twice restores the prior state, so a
// retry after an ambiguous failure is safe to reason about from the return
// value alone.
func (r *ReactionSet) Toggle(messageID uint64, userID, emoji string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	byUser := r.byMessage[messageID]
	if byUser == nil {
		byUser = make(map[string]map[string]time.Time)
		r.byMessage[messageID] = byUser
	}
	emojis := byUser[userID]
	if emojis == nil {
		emojis = make(map[string]time.Time)
		byUser[userID] = emojis
	}
	if _, ok := emojis[emoji]; ok {
		delete(emojis, emoji)
		r.pruneLocked(messageID, userID)
		return false
	}
	emojis[emoji] = time.Now()
	return true
}

// Remove deletes one triple if present. Idempotent.
func (r *ReactionSet) Remove(messageID uint64, userID, emoji string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	emojis := r.byMessage[messageID][userID]
	if _, ok := emojis[emoji]; !ok {
		return false
	}
	delete(emojis, emoji)
	r.pruneLocked(messageID, userID)
	return true
}

func (r *ReactionSet) pruneLocked(messageID uint64, userID string) {
	if len(r.byMessage[messageID][userID]) == 0 {
		delete(r.byMessage[messageID], userID)
	}
	if len(r.byMessage[messageID]) == 0 {
		delete(r.byMessage, messageID)
	}
}

// Groups aggregates a message's reactions per emoji for rendering.
func (r *ReactionSet) Groups(messageID uint64) []model.ReactionGroup {
	r.mu.Lock()
	defer r.mu.Unlock()

	byEmoji := make(map[string][]string)
	for userID, emojis := range r.byMessage[messageID] {
		for emoji := range emojis {
			byEmoji[emoji] = append(byEmoji[emoji], userID)
		}
	}
	groups := make([]model.ReactionGroup, 0, len(byEmoji))
	for emoji, users := range byEmoji {
		sort.Strings(users)
		groups = append(groups, model.ReactionGroup{Emoji: emoji, Count: len(users), Users: users})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Emoji < groups[j].Emoji
	})
	return groups
}
