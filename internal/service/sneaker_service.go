package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/kicklink/social-backend/internal/model"
	"github.com/kicklink/social-backend/internal/repository"
)

type SneakerService interface {
	Create(ctx context.Context, s *model.Sneaker) (*model.Sneaker, error)
	Get(ctx context.Context, id uint64) (*model.Sneaker, error)
	List(ctx context.Context, limit, offset int) ([]model.Sneaker, int64, error)
}

type sneakerService struct {
	repo repository.SneakerRepository
}

func NewSneakerService(repo repository.SneakerRepository) SneakerService {
	return &sneakerService{repo: repo}
}

func (s *sneakerService) Create(ctx context.Context, sn *model.Sneaker) (*model.Sneaker, error) {
	sn.Brand = strings.TrimSpace(sn.Brand)
	sn.Model = strings.TrimSpace(sn.Model)
	sn.SKU = strings.TrimSpace(sn.SKU)
	if sn.Brand == "" || sn.Model == "" {
		return nil, fmt.Errorf("%w: brand and model are required", ErrInvalidArgument)
	}
	if sn.SKU == "" {
		return nil, fmt.Errorf("%w: sku is required", ErrInvalidArgument)
	}
	if err := s.repo.Create(ctx, sn); err != nil {
		return nil, storageErr(err)
	}
	return sn, nil
}

func (s *sneakerService) Get(ctx context.Context, id uint64) (*model.Sneaker, error) {
	sn, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	return sn, nil
}

func (s *sneakerService) List(ctx context.Context, limit, offset int) ([]model.Sneaker, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, storageErr(err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, storageErr(err)
	}
	return list, total, nil
}
