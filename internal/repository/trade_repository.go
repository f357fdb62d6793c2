package repository

import (
	"context"
	"errors"

	"github.com/kicklink/social-backend/internal/model"
	"gorm.io/gorm"
)

type TradeRepository interface {
	Create(ctx context.Context, p *model.TradeProposal) error
	FindByID(ctx context.Context, id uint64) (*model.TradeProposal, error)
	// TransitionFromPending atomically moves a proposal out of pending.
	// Returns the number of rows affected; zero means the proposal was not
	// pending (or does not exist) and nothing changed.
	TransitionFromPending(ctx context.Context, id uint64, to model.TradeStatus) (int64, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]model.TradeProposal, error)
	SetDB(db *gorm.DB)
}

type tradeRepository struct {
	db *gorm.DB
}

func NewTradeRepository(db *gorm.DB) TradeRepository {
	return &tradeRepository{db: db}
}

func (r *tradeRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *tradeRepository) Create(ctx context.Context, p *model.TradeProposal) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *tradeRepository) FindByID(ctx context.Context, id uint64) (*model.TradeProposal, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var p model.TradeProposal
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *tradeRepository) TransitionFromPending(ctx context.Context, id uint64, to model.TradeStatus) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	res := r.db.WithContext(ctx).
		Model(&model.TradeProposal{}).
		Where("id = ? AND status = ?", id, model.TradeStatusPending).
		Update("status", to)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *tradeRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.TradeProposal, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var list []model.TradeProposal
	if err := r.db.WithContext(ctx).
		Where("from_user_id = ? OR to_user_id = ?", userID, userID).
		Order("id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
