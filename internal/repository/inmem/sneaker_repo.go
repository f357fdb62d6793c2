package inmem

import (
	"context"
	"sort"

	"github.com/kicklink/social-backend/internal/model"
	"github.com/kicklink/social-backend/internal/repository"
	"gorm.io/gorm"
)

type sneakerRepo struct {
	s *Store
}

func NewSneakerRepository(s *Store) repository.SneakerRepository {
	return &sneakerRepo{s: s}
}

func (r *sneakerRepo) SetDB(*gorm.DB) {}

func (r *sneakerRepo) Create(ctx context.Context, sn *model.Sneaker) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextSneakerID++
	sn.ID = r.s.nextSneakerID
	now := r.s.tick()
	sn.CreatedAt = now
	sn.UpdatedAt = now
	stored := *sn
	r.s.sneakers[sn.ID] = &stored
	return nil
}

func (r *sneakerRepo) FindByID(ctx context.Context, id uint64) (*model.Sneaker, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sn, ok := r.s.sneakers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *sn
	return &out, nil
}

func (r *sneakerRepo) FindByIDs(ctx context.Context, ids []uint64) ([]model.Sneaker, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var list []model.Sneaker
	for _, id := range ids {
		if sn, ok := r.s.sneakers[id]; ok {
			list = append(list, *sn)
		}
	}
	return list, nil
}

func (r *sneakerRepo) List(ctx context.Context, limit, offset int) ([]model.Sneaker, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var list []model.Sneaker
	for _, sn := range r.s.sneakers {
		list = append(list, *sn)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *sneakerRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.sneakers)), nil
}
