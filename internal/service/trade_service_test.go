package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kicklink/social-backend/internal/model"
	"github.com/kicklink/social-backend/internal/presence"
	"github.com/kicklink/social-backend/internal/repository"
	"github.com/kicklink/social-backend/internal/repository/inmem"
)

type tradeFixture struct {
	svc      TradeService
	convSvc  ConversationService
	notifSvc NotificationService
	sneakers repository.SneakerRepository
}

func newTradeFixture(t *testing.T) *tradeFixture {
	t.Helper()
	store := inmem.NewStore()
	notifSvc := NewNotificationService(inmem.NewNotificationRepository(store))
	sneakerRepo := inmem.NewSneakerRepository(store)
	tradeRepo := inmem.NewTradeRepository(store)
	convSvc := NewConversationService(
		inmem.NewConversationRepository(store),
		inmem.NewMessageRepository(store),
		sneakerRepo,
		tradeRepo,
		presence.NewHub(),
		notifSvc,
	)
	return &tradeFixture{
		svc:      NewTradeService(tradeRepo, sneakerRepo, convSvc, notifSvc),
		convSvc:  convSvc,
		notifSvc: notifSvc,
		sneakers: sneakerRepo,
	}
}

func (f *tradeFixture) seedSneakers(t *testing.T, n int) []uint64 {
	t.Helper()
	ids := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		sn := &model.Sneaker{Brand: "Nike", Model: "Dunk Low", SKU: string(rune('A' + i))}
		require.NoError(t, f.sneakers.Create(context.Background(), sn))
		ids = append(ids, sn.ID)
	}
	return ids
}

func TestProposeTradeValidation(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	ids := f.seedSneakers(t, 1)

	_, err := f.svc.Propose(ctx, ProposeTradeInput{
		ToUserID:          "alice",
		OfferedSneakerIDs: ids,
	}, "alice")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.svc.Propose(ctx, ProposeTradeInput{ToUserID: "bob"}, "alice")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.svc.Propose(ctx, ProposeTradeInput{
		ToUserID:          "bob",
		OfferedSneakerIDs: []uint64{999},
	}, "alice")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestProposeTradeAnnounces(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	ids := f.seedSneakers(t, 2)

	note := "my dunks for your jordans"
	p, err := f.svc.Propose(ctx, ProposeTradeInput{
		ToUserID:            "bob",
		OfferedSneakerIDs:   ids[:1],
		RequestedSneakerIDs: ids[1:],
		Message:             &note,
	}, "alice")
	require.NoError(t, err)
	assert.Equal(t, model.TradeStatusPending, p.Status)
	assert.Nil(t, p.CountersProposalID)

	// The proposal lands as a trade_proposal message in the pair's direct
	// conversation, created on the fly.
	convs, err := f.convSvc.ListForUser(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, convs, 1)
	msgs, err := f.convSvc.ListMessages(ctx, convs[0].ID, "bob", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, model.MessageTradeProposal, msgs[0].MessageType)
	require.NotNil(t, msgs[0].TradeProposalID)
	assert.Equal(t, p.ID, *msgs[0].TradeProposalID)
	assert.Equal(t, note, msgs[0].Content)

	notifs, _, err := f.notifSvc.List(ctx, "bob", true, 20)
	require.NoError(t, err)
	require.NotEmpty(t, notifs)
	assert.Equal(t, "trade_proposal", notifs[0].Type)
}

func TestRespondAccept(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	ids := f.seedSneakers(t, 1)

	p, err := f.svc.Propose(ctx, ProposeTradeInput{
		ToUserID:          "bob",
		OfferedSneakerIDs: ids,
	}, "alice")
	require.NoError(t, err)

	// Only the receiver may respond.
	_, err = f.svc.Respond(ctx, p.ID, "alice", model.TradeStatusAccepted, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	accepted, err := f.svc.Respond(ctx, p.ID, "bob", model.TradeStatusAccepted, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TradeStatusAccepted, accepted.Status)

	// Terminal states reject further transitions.
	_, err = f.svc.Respond(ctx, p.ID, "bob", model.TradeStatusDeclined, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRespondCounterSpawnsChainedProposal(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	ids := f.seedSneakers(t, 2)

	p, err := f.svc.Propose(ctx, ProposeTradeInput{
		ToUserID:          "bob",
		OfferedSneakerIDs: ids[:1],
	}, "alice")
	require.NoError(t, err)

	_, err = f.svc.Respond(ctx, p.ID, "bob", model.TradeStatusCountered, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument, "countering requires a counter offer")

	counter, err := f.svc.Respond(ctx, p.ID, "bob", model.TradeStatusCountered, &ProposeTradeInput{
		ToUserID:          "alice",
		OfferedSneakerIDs: ids[1:],
	})
	require.NoError(t, err)
	assert.Equal(t, model.TradeStatusPending, counter.Status)
	assert.Equal(t, "bob", counter.FromUserID)
	assert.Equal(t, "alice", counter.ToUserID)
	require.NotNil(t, counter.CountersProposalID)
	assert.Equal(t, p.ID, *counter.CountersProposalID)

	original, err := f.svc.Get(ctx, p.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, model.TradeStatusCountered, original.Status)

	// The chain keeps going: alice can accept the counter.
	accepted, err := f.svc.Respond(ctx, counter.ID, "alice", model.TradeStatusAccepted, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TradeStatusAccepted, accepted.Status)
}

func TestTradeVisibility(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	ids := f.seedSneakers(t, 1)

	p, err := f.svc.Propose(ctx, ProposeTradeInput{
		ToUserID:          "bob",
		OfferedSneakerIDs: ids,
	}, "alice")
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, p.ID, "mallory")
	assert.ErrorIs(t, err, ErrForbidden)

	mine, err := f.svc.ListForUser(ctx, "bob", 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, p.ID, mine[0].ID)

	none, err := f.svc.ListForUser(ctx, "mallory", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
