package service

import (
	"context"

	"github.com/kicklink/social-backend/internal/model"
	"github.com/kicklink/social-backend/internal/repository"
)

type NotificationService interface {
	Notify(ctx context.Context, userID, typ, title, body string, convID, commentID, tradeID *uint64)
	List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, int64, error)
	MarkAllRead(ctx context.Context, userID string) error
	MarkByConversation(ctx context.Context, userID string, convID uint64) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

// Notify is best-effort; a failed insert never breaks the main flow.
func (s *notificationService) Notify(ctx context.Context, userID, typ, title, body string, convID, commentID, tradeID *uint64) {
	if userID == "" || typ == "" {
		return
	}
	n := &model.Notification{
		UserID:          userID,
		Type:            typ,
		Title:           title,
		Body:            body,
		ConversationID:  convID,
		CommentID:       commentID,
		TradeProposalID: tradeID,
	}
	_ = s.repo.Create(ctx, n)
}

func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, int64, error) {
	if userID == "" {
		return nil, 0, nil
	}
	list, err := s.repo.ListByUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, 0, storageErr(err)
	}
	cnt, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return list, 0, storageErr(err)
	}
	return list, cnt, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return storageErr(err)
	}
	return nil
}

func (s *notificationService) MarkByConversation(ctx context.Context, userID string, convID uint64) error {
	if userID == "" || convID == 0 {
		return nil
	}
	if err := s.repo.MarkByConversation(ctx, userID, convID); err != nil {
		return storageErr(err)
	}
	return nil
}
