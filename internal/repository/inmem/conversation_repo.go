package inmem

import (
	"context"
	"time"

	"github.com/kicklink/social-backend/internal/model"
	"github.com/kicklink/social-backend/internal/repository"
	"gorm.io/gorm"
)

type conversationRepo struct {
	s *Store
}

func NewConversationRepository(s *Store) repository.ConversationRepository {
	return &conversationRepo{s: s}
}

func (r *conversationRepo) SetDB(*gorm.DB) {}

func (r *conversationRepo) Create(ctx context.Context, cv *model.Conversation, participants []model.ConversationParticipant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextConvID++
	cv.ID = r.s.nextConvID
	now := r.s.tick()
	cv.CreatedAt = now
	if cv.LastMessageAt.IsZero() {
		cv.LastMessageAt = now
	}
	stored := *cv
	r.s.conversations[cv.ID] = &stored

	byUser := make(map[string]*model.ConversationParticipant, len(participants))
	for i := range participants {
		p := participants[i]
		p.ConversationID = cv.ID
		p.JoinedAt = now
		byUser[p.UserID] = &p
		participants[i] = p
	}
	r.s.participants[cv.ID] = byUser
	return nil
}

func (r *conversationRepo) FindByID(ctx context.Context, id uint64) (*model.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cv, ok := r.s.conversations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *cv
	return &out, nil
}

func (r *conversationRepo) FindDirectBetween(ctx context.Context, userA, userB string) (*model.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, cv := range r.s.conversations {
		if cv.Type != model.ConversationDirect {
			continue
		}
		parts := r.s.participants[id]
		if parts[userA] != nil && parts[userB] != nil {
			out := *cv
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *conversationRepo) ListByUser(ctx context.Context, userID string) ([]model.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var list []model.Conversation
	for id, cv := range r.s.conversations {
		if r.s.participants[id][userID] != nil {
			list = append(list, *cv)
		}
	}
	sortByLastMessageDesc(list)
	return list, nil
}

func sortByLastMessageDesc(list []model.Conversation) {
	for i := 1; i < len(list); i++ {
		for j := i; j > 0 && list[j].LastMessageAt.After(list[j-1].LastMessageAt); j-- {
			list[j], list[j-1] = list[j-1], list[j]
		}
	}
}

func (r *conversationRepo) Participant(ctx context.Context, convID uint64, userID string) (*model.ConversationParticipant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p := r.s.participants[convID][userID]
	if p == nil {
		return nil, repository.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (r *conversationRepo) ListParticipants(ctx context.Context, convID uint64) ([]model.ConversationParticipant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var list []model.ConversationParticipant
	for _, p := range r.s.participants[convID] {
		list = append(list, *p)
	}
	return list, nil
}

func (r *conversationRepo) MarkRead(ctx context.Context, convID uint64, userID string, upTo time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p := r.s.participants[convID][userID]
	if p == nil {
		return repository.ErrNotFound
	}
	if !p.LastReadAt.Before(upTo) {
		return nil // older than current read position: no-op
	}
	p.LastReadAt = upTo
	p.UnreadCount = r.s.countUnreadLocked(convID, userID, upTo)
	return nil
}

func (r *conversationRepo) RecountUnread(ctx context.Context, convID uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.participants[convID] {
		p.UnreadCount = r.s.countUnreadLocked(convID, p.UserID, p.LastReadAt)
	}
	return nil
}

func (s *Store) countUnreadLocked(convID uint64, userID string, lastRead time.Time) int64 {
	var n int64
	for _, m := range s.messages {
		if m.ConversationID == convID && !m.IsDeleted &&
			m.SenderID != userID && m.CreatedAt.After(lastRead) {
			n++
		}
	}
	return n
}
