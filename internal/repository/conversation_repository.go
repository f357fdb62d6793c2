package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kicklink/social-backend/internal/model"
	"gorm.io/gorm"
)

type ConversationRepository interface {
	Create(ctx context.Context, cv *model.Conversation, participants []model.ConversationParticipant) error
	FindByID(ctx context.Context, id uint64) (*model.Conversation, error)
	FindDirectBetween(ctx context.Context, userA, userB string) (*model.Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]model.Conversation, error)
	Participant(ctx context.Context, convID uint64, userID string) (*model.ConversationParticipant, error)
	ListParticipants(ctx context.Context, convID uint64) ([]model.ConversationParticipant, error)
	MarkRead(ctx context.Context, convID uint64, userID string, upTo time.Time) error
	RecountUnread(ctx context.Context, convID uint64) error
	SetDB(db *gorm.DB)
}

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *conversationRepository) Create(ctx context.Context, cv *model.Conversation, participants []model.ConversationParticipant) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(cv).Error; err != nil {
			return err
		}
		for i := range participants {
			participants[i].ConversationID = cv.ID
		}
		return tx.Create(&participants).Error
	})
}

func (r *conversationRepository) FindByID(ctx context.Context, id uint64) (*model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var cv model.Conversation
	if err := r.db.WithContext(ctx).First(&cv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) FindDirectBetween(ctx context.Context, userA, userB string) (*model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var cv model.Conversation
	err := r.db.WithContext(ctx).
		Joins("JOIN conversation_participants pa ON pa.conversation_id = conversations.id AND pa.user_id = ?", userA).
		Joins("JOIN conversation_participants pb ON pb.conversation_id = conversations.id AND pb.user_id = ?", userB).
		Where("conversations.type = ?", model.ConversationDirect).
		First(&cv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) ListByUser(ctx context.Context, userID string) ([]model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Conversation
	err := r.db.WithContext(ctx).
		Joins("JOIN conversation_participants p ON p.conversation_id = conversations.id AND p.user_id = ?", userID).
		Order("conversations.last_message_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *conversationRepository) Participant(ctx context.Context, convID uint64, userID string) (*model.ConversationParticipant, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var p model.ConversationParticipant
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", convID, userID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *conversationRepository) ListParticipants(ctx context.Context, convID uint64) ([]model.ConversationParticipant, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.ConversationParticipant
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("joined_at ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// MarkRead advances the participant's read position to upTo and recomputes
// that viewer's unread count. The WHERE guard keeps last_read_at monotonic:
// an older upTo affects zero rows and the call is a no-op.
func (r *conversationRepository) MarkRead(ctx context.Context, convID uint64, userID string, upTo time.Time) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.ConversationParticipant{}).
			Where("conversation_id = ? AND user_id = ? AND last_read_at < ?", convID, userID, upTo).
			Update("last_read_at", upTo)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		var unread int64
		if err := tx.Model(&model.Message{}).
			Where("conversation_id = ? AND created_at > ? AND sender_id <> ? AND is_deleted = ?", convID, upTo, userID, false).
			Count(&unread).Error; err != nil {
			return err
		}
		return tx.Model(&model.ConversationParticipant{}).
			Where("conversation_id = ? AND user_id = ?", convID, userID).
			Update("unread_count", unread).Error
	})
}

// RecountUnread recomputes unread_count for every participant from the
// message rows. Repair pass for drift after partial failures.
func (r *conversationRepository) RecountUnread(ctx context.Context, convID uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parts []model.ConversationParticipant
		if err := tx.Where("conversation_id = ?", convID).Find(&parts).Error; err != nil {
			return err
		}
		for _, p := range parts {
			var unread int64
			if err := tx.Model(&model.Message{}).
				Where("conversation_id = ? AND created_at > ? AND sender_id <> ? AND is_deleted = ?", convID, p.LastReadAt, p.UserID, false).
				Count(&unread).Error; err != nil {
				return err
			}
			if err := tx.Model(&model.ConversationParticipant{}).
				Where("conversation_id = ? AND user_id = ?", convID, p.UserID).
				Update("unread_count", unread).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
