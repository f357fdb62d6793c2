package inmem

import (
	"context"

	"github.com/kicklink/social-backend/internal/model"
	"github.com/kicklink/social-backend/internal/repository"
	"gorm.io/gorm"
)

type notificationRepo struct {
	s *Store
}

func NewNotificationRepository(s *Store) repository.NotificationRepository {
	return &notificationRepo{s: s}
}

func (r *notificationRepo) SetDB(*gorm.DB) {}

func (r *notificationRepo) Create(ctx context.Context, n *model.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextNotifID++
	n.ID = r.s.nextNotifID
	n.CreatedAt = r.s.tick()
	stored := *n
	r.s.notifications = append(r.s.notifications, &stored)
	return nil
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if limit <= 0 || limit > 50 {
		limit = 20
	}
	var list []model.Notification
	for i := len(r.s.notifications) - 1; i >= 0 && len(list) < limit; i-- {
		n := r.s.notifications[i]
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.ReadAt != nil {
			continue
		}
		list = append(list, *n)
	}
	return list, nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.tick()
	for _, n := range r.s.notifications {
		if n.UserID == userID && n.ReadAt == nil {
			t := now
			n.ReadAt = &t
		}
	}
	return nil
}

func (r *notificationRepo) MarkByConversation(ctx context.Context, userID string, convID uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.tick()
	for _, n := range r.s.notifications {
		if n.UserID == userID && n.ReadAt == nil &&
			n.ConversationID != nil && *n.ConversationID == convID {
			t := now
			n.ReadAt = &t
		}
	}
	return nil
}

func (r *notificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var cnt int64
	for _, n := range r.s.notifications {
		if n.UserID == userID && n.ReadAt == nil {
			cnt++
		}
	}
	return cnt, nil
}
