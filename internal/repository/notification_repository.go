package repository

import (
	"context"

	"github.com/kicklink/social-backend/internal/model"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
	MarkByConversation(ctx context.Context, userID string, convID uint64) error
	CountUnread(ctx context.Context, userID string) (int64, error)
	SetDB(db *gorm.DB)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	q := r.db.WithContext(ctx).Model(&model.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}
	var list []model.Notification
	if err := q.Order("created_at DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	now := r.db.NowFunc()
	return r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", now).Error
}

func (r *notificationRepository) MarkByConversation(ctx context.Context, userID string, convID uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	now := r.db.NowFunc()
	return r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND conversation_id = ? AND read_at IS NULL", userID, convID).
		Update("read_at", now).Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}
