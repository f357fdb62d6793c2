package repository

import (
	"context"
	"errors"

	"github.com/kicklink/social-backend/internal/model"
	"gorm.io/gorm"
)

type MessageRepository interface {
	// Append inserts a message and, in the same transaction, bumps the
	// conversation's last_message_at and increments unread_count for every
	// participant except the sender.
	Append(ctx context.Context, msg *model.Message) error
	FindByID(ctx context.Context, id uint64) (*model.Message, error)
	ListByConversation(ctx context.Context, convID uint64, limit int) ([]model.Message, error)
	Update(ctx context.Context, msg *model.Message) error
	SoftDelete(ctx context.Context, id uint64) error
	SetDB(db *gorm.DB)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *messageRepository) Append(ctx context.Context, msg *model.Message) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		// Guarded update keeps last_message_at monotonically non-decreasing.
		if err := tx.Model(&model.Conversation{}).
			Where("id = ? AND last_message_at < ?", msg.ConversationID, msg.CreatedAt).
			Update("last_message_at", msg.CreatedAt).Error; err != nil {
			return err
		}
		return tx.Model(&model.ConversationParticipant{}).
			Where("conversation_id = ? AND user_id <> ?", msg.ConversationID, msg.SenderID).
			Update("unread_count", gorm.Expr("unread_count + 1")).Error
	})
}

func (r *messageRepository) FindByID(ctx context.Context, id uint64) (*model.Message, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var m model.Message
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *messageRepository) ListByConversation(ctx context.Context, convID uint64, limit int) ([]model.Message, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var msgs []model.Message
	if limit > 0 {
		// Latest window, handed back in chronological order.
		if err := r.db.WithContext(ctx).
			Where("conversation_id = ?", convID).
			Order("id DESC").
			Limit(limit).
			Find(&msgs).Error; err != nil {
			return nil, err
		}
		for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
			msgs[i], msgs[j] = msgs[j], msgs[i]
		}
		return msgs, nil
	}
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *messageRepository) Update(ctx context.Context, msg *model.Message) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Save(msg).Error
}

func (r *messageRepository) SoftDelete(ctx context.Context, id uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Model(&model.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_deleted": true, "content": "", "media_url": nil}).Error
}
