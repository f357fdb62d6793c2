package repository

import (
	"context"
	"errors"

	"github.com/kicklink/social-backend/internal/model"
	"gorm.io/gorm"
)

type SneakerRepository interface {
	Create(ctx context.Context, s *model.Sneaker) error
	FindByID(ctx context.Context, id uint64) (*model.Sneaker, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]model.Sneaker, error)
	List(ctx context.Context, limit, offset int) ([]model.Sneaker, error)
	Count(ctx context.Context) (int64, error)
	SetDB(db *gorm.DB)
}

type sneakerRepository struct {
	db *gorm.DB
}

func NewSneakerRepository(db *gorm.DB) SneakerRepository {
	return &sneakerRepository{db: db}
}

func (r *sneakerRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *sneakerRepository) Create(ctx context.Context, s *model.Sneaker) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sneakerRepository) FindByID(ctx context.Context, id uint64) (*model.Sneaker, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var s model.Sneaker
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *sneakerRepository) FindByIDs(ctx context.Context, ids []uint64) ([]model.Sneaker, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	if len(ids) == 0 {
		return nil, nil
	}
	var list []model.Sneaker
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *sneakerRepository) List(ctx context.Context, limit, offset int) ([]model.Sneaker, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var list []model.Sneaker
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *sneakerRepository) Count(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&model.Sneaker{}).Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}
