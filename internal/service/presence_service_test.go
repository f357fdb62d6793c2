package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kicklink/social-backend/internal/model"
	"github.com/kicklink/social-backend/internal/presence"
	"github.com/kicklink/social-backend/internal/repository/inmem"
)

type presenceFixture struct {
	svc     PresenceService
	convSvc ConversationService
	hub     *presence.Hub
}

func newPresenceFixture(t *testing.T) *presenceFixture {
	t.Helper()
	store := inmem.NewStore()
	convRepo := inmem.NewConversationRepository(store)
	msgRepo := inmem.NewMessageRepository(store)
	hub := presence.NewHub()
	convSvc := NewConversationService(
		convRepo,
		msgRepo,
		inmem.NewSneakerRepository(store),
		inmem.NewTradeRepository(store),
		hub,
		nil,
	)
	svc := NewPresenceService(
		convRepo,
		msgRepo,
		hub,
		presence.NewTypingTracker(5*time.Second),
		presence.NewReactionSet(),
		presence.NewOnlineTracker(nil, time.Minute),
	)
	return &presenceFixture{svc: svc, convSvc: convSvc, hub: hub}
}

func (f *presenceFixture) direct(t *testing.T, a, b string) *model.Conversation {
	t.Helper()
	cv, err := f.convSvc.Create(context.Background(), CreateConversationInput{
		Type:           model.ConversationDirect,
		ParticipantIDs: []string{b},
	}, a)
	require.NoError(t, err)
	return cv
}

func TestSetTypingGatedByMembership(t *testing.T) {
	f := newPresenceFixture(t)
	ctx := context.Background()
	cv := f.direct(t, "alice", "bob")

	assert.ErrorIs(t, f.svc.SetTyping(ctx, cv.ID, "mallory", "mallory", true), ErrNotAParticipant)

	events, cancel := f.hub.Subscribe(cv.ID)
	defer cancel()

	require.NoError(t, f.svc.SetTyping(ctx, cv.ID, "alice", "alice", true))

	ev := <-events
	assert.Equal(t, presence.EventTyping, ev.Type)

	typing, err := f.svc.Typing(ctx, cv.ID, "bob")
	require.NoError(t, err)
	require.Len(t, typing, 1)
	assert.Equal(t, "alice", typing[0].UserID)

	_, err = f.svc.Typing(ctx, cv.ID, "mallory")
	assert.ErrorIs(t, err, ErrNotAParticipant)
}

func TestReactToggleOnMessage(t *testing.T) {
	f := newPresenceFixture(t)
	ctx := context.Background()
	cv := f.direct(t, "alice", "bob")

	msg, err := f.convSvc.PostMessage(ctx, cv.ID, "alice", PostMessageInput{Content: "cop or drop?"})
	require.NoError(t, err)

	_, err = f.svc.React(ctx, msg.ID, "mallory", "🔥")
	assert.ErrorIs(t, err, ErrNotAParticipant)

	_, err = f.svc.React(ctx, 999, "bob", "🔥")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.React(ctx, msg.ID, "bob", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	added, err := f.svc.React(ctx, msg.ID, "bob", "🔥")
	require.NoError(t, err)
	assert.True(t, added)

	groups, err := f.svc.Reactions(ctx, msg.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0].Count)

	// Toggling again removes it.
	added, err = f.svc.React(ctx, msg.ID, "bob", "🔥")
	require.NoError(t, err)
	assert.False(t, added)

	groups, err = f.svc.Reactions(ctx, msg.ID)
	require.NoError(t, err)
	assert.Empty(t, groups)

	// Unreact is idempotent even when nothing is there.
	require.NoError(t, f.svc.Unreact(ctx, msg.ID, "bob", "🔥"))
}

func TestSubscribeGatedByMembership(t *testing.T) {
	f := newPresenceFixture(t)
	ctx := context.Background()
	cv := f.direct(t, "alice", "bob")

	_, _, err := f.svc.Subscribe(ctx, cv.ID, "mallory")
	assert.ErrorIs(t, err, ErrNotAParticipant)

	events, cancel, err := f.svc.Subscribe(ctx, cv.ID, "bob")
	require.NoError(t, err)
	defer cancel()

	_, err = f.convSvc.PostMessage(ctx, cv.ID, "alice", PostMessageInput{Content: "hey"})
	require.NoError(t, err)

	ev := <-events
	assert.Equal(t, presence.EventMessage, ev.Type)
}

func TestOnlineWithoutRedisDegrades(t *testing.T) {
	f := newPresenceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Heartbeat(ctx, "alice"))
	assert.False(t, f.svc.IsOnline(ctx, "alice"), "no redis means nobody reads as online")
	require.NoError(t, f.svc.Offline(ctx, "alice"))
}
