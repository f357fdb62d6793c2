package inmem

import (
	"context"
	"sort"

	"github.com/kicklink/social-backend/internal/model"
	"github.com/kicklink/social-backend/internal/repository"
	"gorm.io/gorm"
)

type messageRepo struct {
	s *Store
}

func NewMessageRepository(s *Store) repository.MessageRepository {
	return &messageRepo{s: s}
}

func (r *messageRepo) SetDB(*gorm.DB) {}

func (r *messageRepo) Append(ctx context.Context, msg *model.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cv, ok := r.s.conversations[msg.ConversationID]
	if !ok {
		return repository.ErrNotFound
	}

	r.s.nextMessageID++
	msg.ID = r.s.nextMessageID
	now := r.s.tick()
	msg.CreatedAt = now
	msg.UpdatedAt = now
	stored := *msg
	r.s.messages[msg.ID] = &stored

	if cv.LastMessageAt.Before(now) {
		cv.LastMessageAt = now
	}
	for _, p := range r.s.participants[msg.ConversationID] {
		if p.UserID != msg.SenderID {
			p.UnreadCount++
		}
	}
	return nil
}

func (r *messageRepo) FindByID(ctx context.Context, id uint64) (*model.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.messages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *m
	return &out, nil
}

func (r *messageRepo) ListByConversation(ctx context.Context, convID uint64, limit int) ([]model.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var msgs []model.Message
	for _, m := range r.s.messages {
		if m.ConversationID == convID {
			msgs = append(msgs, *m)
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].ID < msgs[j].ID })
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (r *messageRepo) Update(ctx context.Context, msg *model.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.messages[msg.ID]; !ok {
		return repository.ErrNotFound
	}
	msg.UpdatedAt = r.s.tick()
	stored := *msg
	r.s.messages[msg.ID] = &stored
	return nil
}

func (r *messageRepo) SoftDelete(ctx context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.messages[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.IsDeleted = true
	m.Content = ""
	m.MediaURL = nil
	m.UpdatedAt = r.s.tick()
	return nil
}
