package inmem

import (
	"context"
	"sort"

	"github.com/kicklink/social-backend/internal/model"
	"github.com/kicklink/social-backend/internal/repository"
	"gorm.io/gorm"
)

type tradeRepo struct {
	s *Store
}

func NewTradeRepository(s *Store) repository.TradeRepository {
	return &tradeRepo{s: s}
}

func (r *tradeRepo) SetDB(*gorm.DB) {}

func (r *tradeRepo) Create(ctx context.Context, p *model.TradeProposal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextTradeID++
	p.ID = r.s.nextTradeID
	now := r.s.tick()
	p.CreatedAt = now
	p.UpdatedAt = now
	stored := *p
	r.s.trades[p.ID] = &stored
	return nil
}

func (r *tradeRepo) FindByID(ctx context.Context, id uint64) (*model.TradeProposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.trades[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (r *tradeRepo) TransitionFromPending(ctx context.Context, id uint64, to model.TradeStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.trades[id]
	if !ok || p.Status != model.TradeStatusPending {
		return 0, nil
	}
	p.Status = to
	p.UpdatedAt = r.s.tick()
	return 1, nil
}

func (r *tradeRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.TradeProposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var list []model.TradeProposal
	for _, p := range r.s.trades {
		if p.FromUserID == userID || p.ToUserID == userID {
			list = append(list, *p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}
