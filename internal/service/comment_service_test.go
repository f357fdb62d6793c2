package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kicklink/social-backend/internal/model"
	"github.com/kicklink/social-backend/internal/repository"
	"github.com/kicklink/social-backend/internal/repository/inmem"
)

func newCommentFixture(t *testing.T) (CommentService, NotificationService) {
	t.Helper()
	store := inmem.NewStore()
	notifSvc := NewNotificationService(inmem.NewNotificationRepository(store))
	return NewCommentService(inmem.NewCommentRepository(store), notifSvc), notifSvc
}

func addComment(t *testing.T, svc CommentService, postID uint64, user, content string, parent *uint64) *model.Comment {
	t.Helper()
	cm, err := svc.Add(context.Background(), AddCommentInput{
		PostID:          postID,
		Content:         content,
		ParentCommentID: parent,
	}, user)
	require.NoError(t, err)
	return cm
}

func collect(t *testing.T, svc CommentService, postID uint64, sort model.CommentSort) []*model.Comment {
	t.Helper()
	var out []*model.Comment
	for cm, err := range svc.List(context.Background(), postID, sort) {
		require.NoError(t, err)
		out = append(out, cm)
	}
	return out
}

func TestAddCommentAndReplies(t *testing.T) {
	svc, notifSvc := newCommentFixture(t)
	ctx := context.Background()

	top := addComment(t, svc, 1, "alice", "grails only", nil)
	reply := addComment(t, svc, 1, "bob", "facts", &top.ID)

	got := collect(t, svc, 1, model.CommentSortNewest)
	require.Len(t, got, 1, "replies never appear at top level")
	assert.Equal(t, int64(1), got[0].RepliesCount)
	require.Len(t, got[0].Replies, 1)
	assert.Equal(t, reply.ID, got[0].Replies[0].ID)

	// One level of nesting only.
	_, err := svc.Add(ctx, AddCommentInput{
		PostID:          1,
		Content:         "nested",
		ParentCommentID: &reply.ID,
	}, "carol")
	assert.ErrorIs(t, err, ErrInvalidParent)

	// Parent must belong to the same post.
	_, err = svc.Add(ctx, AddCommentInput{
		PostID:          2,
		Content:         "wrong post",
		ParentCommentID: &top.ID,
	}, "carol")
	assert.ErrorIs(t, err, ErrInvalidParent)

	missing := uint64(404)
	_, err = svc.Add(ctx, AddCommentInput{
		PostID:          1,
		Content:         "orphan",
		ParentCommentID: &missing,
	}, "carol")
	assert.ErrorIs(t, err, ErrInvalidParent)

	// The parent author hears about the reply; self-replies stay silent.
	notifs, _, err := notifSvc.List(ctx, "alice", true, 20)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, "comment_reply", notifs[0].Type)

	addComment(t, svc, 1, "alice", "replying to myself", &top.ID)
	notifs, _, err = notifSvc.List(ctx, "alice", true, 20)
	require.NoError(t, err)
	assert.Len(t, notifs, 1)
}

func TestAddCommentValidation(t *testing.T) {
	svc, _ := newCommentFixture(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, AddCommentInput{PostID: 1, Content: "   "}, "alice")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.Add(ctx, AddCommentInput{Content: "no post"}, "alice")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// Media-only comments are fine.
	url := "https://cdn.example.com/pickup.jpg"
	cm, err := svc.Add(ctx, AddCommentInput{PostID: 1, MediaURL: &url}, "alice")
	require.NoError(t, err)
	assert.Equal(t, &url, cm.MediaURL)
}

func TestLikeIdempotence(t *testing.T) {
	svc, _ := newCommentFixture(t)
	ctx := context.Background()
	cm := addComment(t, svc, 1, "alice", "heat", nil)

	liked, err := svc.Like(ctx, cm.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), liked.LikesCount)

	// A retry after an ambiguous failure cannot double count.
	liked, err = svc.Like(ctx, cm.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), liked.LikesCount)

	liked, err = svc.Like(ctx, cm.ID, "carol")
	require.NoError(t, err)
	assert.Equal(t, int64(2), liked.LikesCount)

	unliked, err := svc.Unlike(ctx, cm.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), unliked.LikesCount)

	// Unliking without a like is a no-op, not an error.
	unliked, err = svc.Unlike(ctx, cm.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), unliked.LikesCount)
}

func TestDeleteTombstonesWhenReplied(t *testing.T) {
	svc, _ := newCommentFixture(t)
	ctx := context.Background()

	top := addComment(t, svc, 1, "alice", "hot take", nil)
	addComment(t, svc, 1, "bob", "disagree", &top.ID)

	_, err := svc.Edit(ctx, top.ID, "bob", "hijacked")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, top.ID, "bob", false), ErrForbidden)

	require.NoError(t, svc.Delete(ctx, top.ID, "alice", false))

	got := collect(t, svc, 1, model.CommentSortNewest)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsDeleted)
	assert.Empty(t, got[0].Content, "tombstone keeps the slot, not the words")
	assert.Equal(t, int64(1), got[0].RepliesCount)
	require.Len(t, got[0].Replies, 1)

	// Deleting again is a no-op.
	require.NoError(t, svc.Delete(ctx, top.ID, "alice", false))

	_, err = svc.Edit(ctx, top.ID, "alice", "resurrect")
	assert.ErrorIs(t, err, ErrNotFound)
}

// replyRacingCommentRepo slips a reply into the store right before the delete
// reaches it, the way a concurrent writer would after the service has already
// read the parent.
type replyRacingCommentRepo struct {
	repository.CommentRepository
	reply model.Comment
}

func (r *replyRacingCommentRepo) Delete(ctx context.Context, cm *model.Comment) error {
	late := r.reply
	if err := r.CommentRepository.Create(ctx, &late); err != nil {
		return err
	}
	return r.CommentRepository.Delete(ctx, cm)
}

func TestDeleteTombstonesReplyAcceptedConcurrently(t *testing.T) {
	store := inmem.NewStore()
	notifSvc := NewNotificationService(inmem.NewNotificationRepository(store))
	repo := inmem.NewCommentRepository(store)
	ctx := context.Background()

	svc := NewCommentService(repo, notifSvc)
	top := addComment(t, svc, 1, "alice", "price check", nil)

	racing := NewCommentService(&replyRacingCommentRepo{
		CommentRepository: repo,
		reply:             model.Comment{PostID: 1, UserID: "bob", Content: "still live", ParentCommentID: &top.ID},
	}, notifSvc)
	require.NoError(t, racing.Delete(ctx, top.ID, "alice", false))

	got := collect(t, svc, 1, model.CommentSortNewest)
	require.Len(t, got, 1, "parent must survive as a tombstone, not vanish")
	assert.Equal(t, top.ID, got[0].ID)
	assert.True(t, got[0].IsDeleted)
	assert.Empty(t, got[0].Content)
	require.Len(t, got[0].Replies, 1)
	assert.Equal(t, "still live", got[0].Replies[0].Content)
}

func TestDeleteLeafRemovesAndDecrements(t *testing.T) {
	svc, _ := newCommentFixture(t)
	ctx := context.Background()

	top := addComment(t, svc, 1, "alice", "pickup", nil)
	reply := addComment(t, svc, 1, "bob", "clean", &top.ID)

	// Moderators can remove other people's comments.
	require.NoError(t, svc.Delete(ctx, reply.ID, "mod", true))

	got := collect(t, svc, 1, model.CommentSortNewest)
	require.Len(t, got, 1)
	assert.Equal(t, int64(0), got[0].RepliesCount)
	assert.Empty(t, got[0].Replies)
}

func TestListSortOrders(t *testing.T) {
	svc, _ := newCommentFixture(t)
	ctx := context.Background()

	a := addComment(t, svc, 1, "alice", "first", nil)
	b := addComment(t, svc, 1, "bob", "second", nil)
	c := addComment(t, svc, 1, "carol", "third", nil)

	for _, user := range []string{"u1", "u2", "u3"} {
		_, err := svc.Like(ctx, b.ID, user)
		require.NoError(t, err)
	}
	_, err := svc.Like(ctx, a.ID, "u1")
	require.NoError(t, err)
	// c picks up replies, which weigh more than likes in controversy.
	addComment(t, svc, 1, "dave", "re", &c.ID)
	addComment(t, svc, 1, "erin", "re", &c.ID)

	ids := func(list []*model.Comment) []uint64 {
		out := make([]uint64, len(list))
		for i, cm := range list {
			out[i] = cm.ID
		}
		return out
	}

	assert.Equal(t, []uint64{c.ID, b.ID, a.ID}, ids(collect(t, svc, 1, model.CommentSortNewest)))
	assert.Equal(t, []uint64{a.ID, b.ID, c.ID}, ids(collect(t, svc, 1, model.CommentSortOldest)))
	assert.Equal(t, []uint64{b.ID, a.ID, c.ID}, ids(collect(t, svc, 1, model.CommentSortTop)))
	// controversy: c = 2 replies * 3 = 6, b = 3 likes, a = 1 like
	assert.Equal(t, []uint64{c.ID, b.ID, a.ID}, ids(collect(t, svc, 1, model.CommentSortControversial)))

	for _, err := range svc.List(ctx, 1, model.CommentSort("hot")) {
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
}

func TestListIsRestartable(t *testing.T) {
	svc, _ := newCommentFixture(t)
	addComment(t, svc, 1, "alice", "one", nil)
	addComment(t, svc, 1, "bob", "two", nil)

	seq := svc.List(context.Background(), 1, model.CommentSortOldest)

	// Abandon the first pass mid-way, then range again from the start.
	for cm, err := range seq {
		require.NoError(t, err)
		assert.Equal(t, "one", cm.Content)
		break
	}
	var contents []string
	for cm, err := range seq {
		require.NoError(t, err)
		contents = append(contents, cm.Content)
	}
	assert.Equal(t, []string{"one", "two"}, contents)
}

func TestReconcileRepairsCounters(t *testing.T) {
	svc, _ := newCommentFixture(t)
	ctx := context.Background()

	top := addComment(t, svc, 1, "alice", "og", nil)
	addComment(t, svc, 1, "bob", "re", &top.ID)
	_, err := svc.Like(ctx, top.ID, "bob")
	require.NoError(t, err)

	require.NoError(t, svc.Reconcile(ctx, 1))

	got := collect(t, svc, 1, model.CommentSortNewest)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].RepliesCount)
	assert.Equal(t, int64(1), got[0].LikesCount)
}
