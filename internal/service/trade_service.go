package service

import (
	"context"
	"fmt"

	"github.com/kicklink/social-backend/internal/model"
	"github.com/kicklink/social-backend/internal/repository"
)

type ProposeTradeInput struct {
	ToUserID            string
	OfferedSneakerIDs   []uint64
	RequestedSneakerIDs []uint64
	Message             *string
}

type TradeService interface {
	Propose(ctx context.Context, in ProposeTradeInput, fromUserID string) (*model.TradeProposal, error)
	// Respond moves a pending proposal to accepted, declined or countered.
	// Only the receiving party may respond. Countering requires a counter
	// offer and returns the freshly spawned proposal chained to the
	// original via counters_proposal_id.
	Respond(ctx context.Context, proposalID uint64, responderID string, action model.TradeStatus, counter *ProposeTradeInput) (*model.TradeProposal, error)
	Get(ctx context.Context, proposalID uint64, viewerID string) (*model.TradeProposal, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]model.TradeProposal, error)
}

type tradeService struct {
	tradeRepo   repository.TradeRepository
	sneakerRepo repository.SneakerRepository
	convSvc     ConversationService
	notifier    NotificationService
}

func NewTradeService(
	tradeRepo repository.TradeRepository,
	sneakerRepo repository.SneakerRepository,
	convSvc ConversationService,
	notifier NotificationService,
) TradeService {
	return &tradeService{
		tradeRepo:   tradeRepo,
		sneakerRepo: sneakerRepo,
		convSvc:     convSvc,
		notifier:    notifier,
	}
}

func (s *tradeService) Propose(ctx context.Context, in ProposeTradeInput, fromUserID string) (*model.TradeProposal, error) {
	p, err := s.create(ctx, in, fromUserID, nil)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, p)
	return p, nil
}

func (s *tradeService) create(ctx context.Context, in ProposeTradeInput, fromUserID string, counters *uint64) (*model.TradeProposal, error) {
	if fromUserID == "" || in.ToUserID == "" {
		return nil, fmt.Errorf("%w: both parties are required", ErrInvalidArgument)
	}
	if fromUserID == in.ToUserID {
		return nil, fmt.Errorf("%w: cannot trade with yourself", ErrInvalidArgument)
	}
	if len(in.OfferedSneakerIDs) == 0 && len(in.RequestedSneakerIDs) == 0 {
		return nil, fmt.Errorf("%w: a trade must offer or request at least one sneaker", ErrInvalidArgument)
	}
	if err := s.checkSneakers(ctx, in.OfferedSneakerIDs); err != nil {
		return nil, err
	}
	if err := s.checkSneakers(ctx, in.RequestedSneakerIDs); err != nil {
		return nil, err
	}

	p := &model.TradeProposal{
		FromUserID:          fromUserID,
		ToUserID:            in.ToUserID,
		OfferedSneakerIDs:   in.OfferedSneakerIDs,
		RequestedSneakerIDs: in.RequestedSneakerIDs,
		Status:              model.TradeStatusPending,
		Message:             in.Message,
		CountersProposalID:  counters,
	}
	if err := s.tradeRepo.Create(ctx, p); err != nil {
		return nil, storageErr(err)
	}
	return p, nil
}

func (s *tradeService) checkSneakers(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.sneakerRepo.FindByIDs(ctx, ids)
	if err != nil {
		return storageErr(err)
	}
	if len(found) != len(dedupeIDs(ids)) {
		return fmt.Errorf("%w: unknown sneaker reference", ErrInvalidArgument)
	}
	return nil
}

// announce posts a trade_proposal message into the direct conversation
// between the two parties, creating the conversation if needed, and leaves a
// notification for the receiver. Both are best-effort relative to the
// proposal itself.
func (s *tradeService) announce(ctx context.Context, p *model.TradeProposal) {
	cv, err := s.convSvc.Create(ctx, CreateConversationInput{
		Type:           model.ConversationDirect,
		ParticipantIDs: []string{p.ToUserID},
	}, p.FromUserID)
	if err == nil {
		content := "proposed a trade"
		if p.Message != nil {
			content = *p.Message
		}
		_, _ = s.convSvc.PostMessage(ctx, cv.ID, p.FromUserID, PostMessageInput{
			Content:         content,
			Type:            model.MessageTradeProposal,
			TradeProposalID: &p.ID,
		})
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, p.ToUserID, "trade_proposal", "New trade proposal", "", nil, nil, &p.ID)
	}
}

func (s *tradeService) Respond(ctx context.Context, proposalID uint64, responderID string, action model.TradeStatus, counter *ProposeTradeInput) (*model.TradeProposal, error) {
	p, err := s.tradeRepo.FindByID(ctx, proposalID)
	if err != nil {
		return nil, storageErr(err)
	}
	if p.ToUserID != responderID {
		return nil, ErrForbidden
	}
	if !p.Status.CanTransitionTo(action) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, action)
	}
	if action == model.TradeStatusCountered && counter == nil {
		return nil, fmt.Errorf("%w: countering requires a counter offer", ErrInvalidArgument)
	}

	affected, err := s.tradeRepo.TransitionFromPending(ctx, proposalID, action)
	if err != nil {
		return nil, storageErr(err)
	}
	if affected == 0 {
		// Lost the race: someone else resolved the proposal first.
		return nil, fmt.Errorf("%w: proposal is no longer pending", ErrInvalidTransition)
	}
	p.Status = action

	if s.notifier != nil {
		s.notifier.Notify(ctx, p.FromUserID, "trade_"+string(action), "Trade "+string(action), "", nil, nil, &p.ID)
	}

	if action != model.TradeStatusCountered {
		return p, nil
	}
	counterProposal, err := s.create(ctx, ProposeTradeInput{
		ToUserID:            p.FromUserID,
		OfferedSneakerIDs:   counter.OfferedSneakerIDs,
		RequestedSneakerIDs: counter.RequestedSneakerIDs,
		Message:             counter.Message,
	}, responderID, &p.ID)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, counterProposal)
	return counterProposal, nil
}

func (s *tradeService) Get(ctx context.Context, proposalID uint64, viewerID string) (*model.TradeProposal, error) {
	p, err := s.tradeRepo.FindByID(ctx, proposalID)
	if err != nil {
		return nil, storageErr(err)
	}
	if p.FromUserID != viewerID && p.ToUserID != viewerID {
		return nil, ErrForbidden
	}
	return p, nil
}

func (s *tradeService) ListForUser(ctx context.Context, userID string, limit int) ([]model.TradeProposal, error) {
	list, err := s.tradeRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, storageErr(err)
	}
	return list, nil
}

func dedupeIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
