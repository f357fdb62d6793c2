package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kicklink/social-backend/internal/model"
	"github.com/kicklink/social-backend/internal/presence"
	"github.com/kicklink/social-backend/internal/repository/inmem"
)

type convFixture struct {
	svc      ConversationService
	notifSvc NotificationService
	hub      *presence.Hub
	store    *inmem.Store
}

func newConvFixture(t *testing.T) *convFixture {
	t.Helper()
	store := inmem.NewStore()
	hub := presence.NewHub()
	notifSvc := NewNotificationService(inmem.NewNotificationRepository(store))
	svc := NewConversationService(
		inmem.NewConversationRepository(store),
		inmem.NewMessageRepository(store),
		inmem.NewSneakerRepository(store),
		inmem.NewTradeRepository(store),
		hub,
		notifSvc,
	)
	return &convFixture{svc: svc, notifSvc: notifSvc, hub: hub, store: store}
}

func directBetween(t *testing.T, f *convFixture, a, b string) *model.Conversation {
	t.Helper()
	cv, err := f.svc.Create(context.Background(), CreateConversationInput{
		Type:           model.ConversationDirect,
		ParticipantIDs: []string{b},
	}, a)
	require.NoError(t, err)
	return cv
}

func TestCreateDirectConversation(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()

	cv := directBetween(t, f, "alice", "bob")
	assert.Equal(t, model.ConversationDirect, cv.Type)
	assert.Equal(t, "alice", cv.CreatedBy)

	// Creating the same pair again hands back the existing conversation,
	// whichever side asks.
	again, err := f.svc.Create(ctx, CreateConversationInput{
		Type:           model.ConversationDirect,
		ParticipantIDs: []string{"alice"},
	}, "bob")
	require.NoError(t, err)
	assert.Equal(t, cv.ID, again.ID)

	parts, err := f.svc.Participants(ctx, cv.ID, "alice")
	require.NoError(t, err)
	require.Len(t, parts, 2)
	for _, p := range parts {
		assert.Equal(t, model.RoleAdmin, p.Role)
	}
}

func TestCreateConversationValidation(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateConversationInput{
		Type:           model.ConversationDirect,
		ParticipantIDs: []string{"bob", "carol"},
	}, "alice")
	assert.ErrorIs(t, err, ErrInvalidParticipants)

	name := "crew"
	_, err = f.svc.Create(ctx, CreateConversationInput{
		Type:           model.ConversationDirect,
		ParticipantIDs: []string{"bob"},
		Name:           &name,
	}, "alice")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.svc.Create(ctx, CreateConversationInput{
		Type: model.ConversationGroup,
		// duplicate of the creator collapses to one participant
		ParticipantIDs: []string{"alice"},
	}, "alice")
	assert.ErrorIs(t, err, ErrInvalidParticipants)

	_, err = f.svc.Create(ctx, CreateConversationInput{
		Type:           model.ConversationType("broadcast"),
		ParticipantIDs: []string{"bob"},
	}, "alice")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCreateGroupRoles(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()

	name := "sneakerheads"
	cv, err := f.svc.Create(ctx, CreateConversationInput{
		Type:           model.ConversationGroup,
		ParticipantIDs: []string{"bob", "carol"},
		Name:           &name,
	}, "alice")
	require.NoError(t, err)

	parts, err := f.svc.Participants(ctx, cv.ID, "carol")
	require.NoError(t, err)
	require.Len(t, parts, 3)
	for _, p := range parts {
		if p.UserID == "alice" {
			assert.Equal(t, model.RoleAdmin, p.Role)
		} else {
			assert.Equal(t, model.RoleMember, p.Role)
		}
	}
}

func TestPostMessageUnreadAndMarkRead(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()
	cv := directBetween(t, f, "alice", "bob")

	m1, err := f.svc.PostMessage(ctx, cv.ID, "alice", PostMessageInput{Content: "yo"})
	require.NoError(t, err)
	m2, err := f.svc.PostMessage(ctx, cv.ID, "alice", PostMessageInput{Content: "still there?"})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, cv.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.UnreadCount)

	got, err = f.svc.Get(ctx, cv.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.UnreadCount, "own messages never count as unread")

	require.NoError(t, f.svc.MarkRead(ctx, cv.ID, "bob", m2.ID))
	got, err = f.svc.Get(ctx, cv.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.UnreadCount)

	// Replaying with an older message id must not move the position back.
	require.NoError(t, f.svc.MarkRead(ctx, cv.ID, "bob", m1.ID))
	got, err = f.svc.Get(ctx, cv.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.UnreadCount)

	// Replaying the same mark is a no-op too.
	require.NoError(t, f.svc.MarkRead(ctx, cv.ID, "bob", m2.ID))
}

func TestListMessagesProjectsReadState(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()
	cv := directBetween(t, f, "alice", "bob")

	first, err := f.svc.PostMessage(ctx, cv.ID, "alice", PostMessageInput{Content: "you up?"})
	require.NoError(t, err)
	second, err := f.svc.PostMessage(ctx, cv.ID, "alice", PostMessageInput{Content: "got the 95s in"})
	require.NoError(t, err)

	msgs, err := f.svc.ListMessages(ctx, cv.ID, "alice", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.False(t, msgs[0].IsRead)
	assert.False(t, msgs[1].IsRead)

	require.NoError(t, f.svc.MarkRead(ctx, cv.ID, "bob", first.ID))

	msgs, err = f.svc.ListMessages(ctx, cv.ID, "alice", 0)
	require.NoError(t, err)
	assert.True(t, msgs[0].IsRead, "read position covers the first message")
	assert.False(t, msgs[1].IsRead)

	require.NoError(t, f.svc.MarkRead(ctx, cv.ID, "bob", second.ID))
	msgs, err = f.svc.ListMessages(ctx, cv.ID, "alice", 0)
	require.NoError(t, err)
	assert.True(t, msgs[1].IsRead)
}

func TestPostMessageRequiresParticipant(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()
	cv := directBetween(t, f, "alice", "bob")

	_, err := f.svc.PostMessage(ctx, cv.ID, "mallory", PostMessageInput{Content: "hi"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.ListMessages(ctx, cv.ID, "mallory", 0)
	assert.ErrorIs(t, err, ErrNotAParticipant)
}

func TestPostMessageValidation(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()
	cv := directBetween(t, f, "alice", "bob")

	_, err := f.svc.PostMessage(ctx, cv.ID, "alice", PostMessageInput{Content: "   "})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.svc.PostMessage(ctx, cv.ID, "alice", PostMessageInput{
		Type: model.MessageImage,
	})
	assert.ErrorIs(t, err, ErrInvalidMessageRef)

	missing := uint64(99)
	_, err = f.svc.PostMessage(ctx, cv.ID, "alice", PostMessageInput{
		Type:      model.MessageSneakerCard,
		SneakerID: &missing,
	})
	assert.ErrorIs(t, err, ErrInvalidMessageRef)

	_, err = f.svc.PostMessage(ctx, cv.ID, "alice", PostMessageInput{
		Type:            model.MessageTradeProposal,
		TradeProposalID: &missing,
	})
	assert.ErrorIs(t, err, ErrInvalidMessageRef)

	// A reply must target a message of the same conversation.
	other := directBetween(t, f, "alice", "carol")
	foreign, err := f.svc.PostMessage(ctx, other.ID, "alice", PostMessageInput{Content: "elsewhere"})
	require.NoError(t, err)
	_, err = f.svc.PostMessage(ctx, cv.ID, "alice", PostMessageInput{
		Content:          "re",
		ReplyToMessageID: &foreign.ID,
	})
	assert.ErrorIs(t, err, ErrInvalidMessageRef)
}

func TestEditAndDeleteMessage(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()
	cv := directBetween(t, f, "alice", "bob")

	msg, err := f.svc.PostMessage(ctx, cv.ID, "alice", PostMessageInput{Content: "typo"})
	require.NoError(t, err)

	_, err = f.svc.EditMessage(ctx, msg.ID, "bob", "fixed")
	assert.ErrorIs(t, err, ErrForbidden)

	edited, err := f.svc.EditMessage(ctx, msg.ID, "alice", "fixed")
	require.NoError(t, err)
	assert.Equal(t, "fixed", edited.Content)
	assert.True(t, edited.IsEdited)

	require.NoError(t, f.svc.DeleteMessage(ctx, cv.ID, msg.ID, "alice"))

	msgs, err := f.svc.ListMessages(ctx, cv.ID, "bob", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].IsDeleted)
	assert.Empty(t, msgs[0].Content)

	_, err = f.svc.EditMessage(ctx, msg.ID, "alice", "too late")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReconcileUnreadExcludesDeleted(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()
	cv := directBetween(t, f, "alice", "bob")

	msg, err := f.svc.PostMessage(ctx, cv.ID, "alice", PostMessageInput{Content: "oops"})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, cv.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.UnreadCount)

	require.NoError(t, f.svc.DeleteMessage(ctx, cv.ID, msg.ID, "alice"))
	require.NoError(t, f.svc.ReconcileUnread(ctx, cv.ID))

	got, err = f.svc.Get(ctx, cv.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.UnreadCount)
}

func TestPostMessagePublishesAndNotifies(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()
	cv := directBetween(t, f, "alice", "bob")

	events, cancel := f.hub.Subscribe(cv.ID)
	defer cancel()

	msg, err := f.svc.PostMessage(ctx, cv.ID, "alice", PostMessageInput{Content: "kicks incoming"})
	require.NoError(t, err)

	ev := <-events
	assert.Equal(t, presence.EventMessage, ev.Type)
	assert.Equal(t, cv.ID, ev.ConversationID)

	published, ok := ev.Payload.(*model.Message)
	require.True(t, ok)
	assert.Equal(t, msg.ID, published.ID)

	notifs, unread, err := f.notifSvc.List(ctx, "bob", true, 20)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, "message", notifs[0].Type)
	assert.Equal(t, int64(1), unread)

	// Senders never get notified about their own messages.
	notifs, _, err = f.notifSvc.List(ctx, "alice", true, 20)
	require.NoError(t, err)
	assert.Empty(t, notifs)
}

func TestMarkReadClearsConversationNotifications(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()

	first := directBetween(t, f, "alice", "bob")
	second := directBetween(t, f, "alice", "carol")

	msg, err := f.svc.PostMessage(ctx, first.ID, "alice", PostMessageInput{Content: "trade later?"})
	require.NoError(t, err)
	other, err := f.svc.PostMessage(ctx, second.ID, "carol", PostMessageInput{Content: "saw your post"})
	require.NoError(t, err)

	_, unread, err := f.notifSvc.List(ctx, "bob", true, 20)
	require.NoError(t, err)
	require.Equal(t, int64(1), unread)

	require.NoError(t, f.svc.MarkRead(ctx, first.ID, "bob", msg.ID))

	notifs, unread, err := f.notifSvc.List(ctx, "bob", true, 20)
	require.NoError(t, err)
	assert.Empty(t, notifs)
	assert.Equal(t, int64(0), unread)

	// Notifications from other conversations are untouched.
	notifs, unread, err = f.notifSvc.List(ctx, "alice", true, 20)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, int64(1), unread)

	require.NoError(t, f.svc.MarkRead(ctx, second.ID, "alice", other.ID))
	_, unread, err = f.notifSvc.List(ctx, "alice", true, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}

func TestListForUserOrdersByActivity(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()

	first := directBetween(t, f, "alice", "bob")
	second := directBetween(t, f, "alice", "carol")

	_, err := f.svc.PostMessage(ctx, first.ID, "bob", PostMessageInput{Content: "bump"})
	require.NoError(t, err)

	list, err := f.svc.ListForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID, "most recent activity first")
	assert.Equal(t, second.ID, list[1].ID)
	assert.Equal(t, int64(1), list[0].UnreadCount)
}
