package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/kicklink/social-backend/internal/model"
	"github.com/kicklink/social-backend/internal/repository"
)

// listPageSize is how many top-level comments List pulls per repository
// round-trip while a consumer keeps ranging.
const listPageSize = 50

type AddCommentInput struct {
	PostID          uint64
	Content         string
	ParentCommentID *uint64
	MediaURL        *string
}

type CommentService interface {
	Add(ctx context.Context, in AddCommentInput, userID string) (*model.Comment, error)
	Edit(ctx context.Context, commentID uint64, editorID, newContent string) (*model.Comment, error)
	// Delete removes a comment for its author or a moderator. A comment
	// that still has replies is tombstoned so the replies keep a parent.
	Delete(ctx context.Context, commentID uint64, requesterID string, moderator bool) error
	// Like and Unlike are idempotent; repeating either returns the current
	// comment unchanged rather than erroring.
	Like(ctx context.Context, commentID uint64, userID string) (*model.Comment, error)
	Unlike(ctx context.Context, commentID uint64, userID string) (*model.Comment, error)
	// List lazily yields top-level comments, each carrying its replies.
	// The sequence is finite and restartable: ranging it again re-reads
	// from the store, and abandoning it mid-way holds no resource.
	List(ctx context.Context, postID uint64, sort model.CommentSort) iter.Seq2[*model.Comment, error]
	// Reconcile recomputes the derived counters of a post from source rows.
	Reconcile(ctx context.Context, postID uint64) error
}

type commentService struct {
	repo     repository.CommentRepository
	notifier NotificationService
}

func NewCommentService(repo repository.CommentRepository, notifier NotificationService) CommentService {
	return &commentService{repo: repo, notifier: notifier}
}

func (s *commentService) Add(ctx context.Context, in AddCommentInput, userID string) (*model.Comment, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: author is required", ErrInvalidArgument)
	}
	if in.PostID == 0 {
		return nil, fmt.Errorf("%w: post id is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(in.Content) == "" && (in.MediaURL == nil || *in.MediaURL == "") {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidArgument)
	}

	var parent *model.Comment
	if in.ParentCommentID != nil {
		var err error
		parent, err = s.repo.FindByID(ctx, *in.ParentCommentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent does not exist", ErrInvalidParent)
			}
			return nil, storageErr(err)
		}
		if parent.PostID != in.PostID {
			return nil, fmt.Errorf("%w: parent belongs to another post", ErrInvalidParent)
		}
		// Nesting is capped at one level: a reply cannot parent a reply.
		if parent.ParentCommentID != nil {
			return nil, fmt.Errorf("%w: replies cannot be nested", ErrInvalidParent)
		}
	}

	cm := &model.Comment{
		PostID:          in.PostID,
		UserID:          userID,
		Content:         in.Content,
		ParentCommentID: in.ParentCommentID,
		MediaURL:        in.MediaURL,
	}
	if err := s.repo.Create(ctx, cm); err != nil {
		return nil, storageErr(err)
	}
	if parent != nil && s.notifier != nil && parent.UserID != userID {
		s.notifier.Notify(ctx, parent.UserID, "comment_reply", "New reply", cm.Content, nil, &parent.ID, nil)
	}
	return cm, nil
}

func (s *commentService) Edit(ctx context.Context, commentID uint64, editorID, newContent string) (*model.Comment, error) {
	if strings.TrimSpace(newContent) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidArgument)
	}
	cm, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		return nil, storageErr(err)
	}
	if cm.IsDeleted {
		return nil, ErrNotFound
	}
	if cm.UserID != editorID {
		return nil, ErrForbidden
	}
	cm.Content = newContent
	cm.IsEdited = true
	if err := s.repo.Update(ctx, cm); err != nil {
		return nil, storageErr(err)
	}
	return cm, nil
}

func (s *commentService) Delete(ctx context.Context, commentID uint64, requesterID string, moderator bool) error {
	cm, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		return storageErr(err)
	}
	if cm.UserID != requesterID && !moderator {
		return ErrForbidden
	}
	if cm.IsDeleted {
		return nil // already tombstoned
	}
	// The store decides tombstone vs removal from its own view of the
	// replies, not from the read above, which may already be stale.
	if err := s.repo.Delete(ctx, cm); err != nil {
		return storageErr(err)
	}
	return nil
}

func (s *commentService) Like(ctx context.Context, commentID uint64, userID string) (*model.Comment, error) {
	if _, err := s.repo.Like(ctx, commentID, userID); err != nil {
		return nil, storageErr(err)
	}
	cm, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		return nil, storageErr(err)
	}
	return cm, nil
}

func (s *commentService) Unlike(ctx context.Context, commentID uint64, userID string) (*model.Comment, error) {
	if _, err := s.repo.Unlike(ctx, commentID, userID); err != nil {
		return nil, storageErr(err)
	}
	cm, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		return nil, storageErr(err)
	}
	return cm, nil
}

func (s *commentService) List(ctx context.Context, postID uint64, sort model.CommentSort) iter.Seq2[*model.Comment, error] {
	if sort == "" {
		sort = model.CommentSortNewest
	}
	return func(yield func(*model.Comment, error) bool) {
		if !sort.Valid() {
			yield(nil, fmt.Errorf("%w: unknown sort %q", ErrInvalidArgument, sort))
			return
		}
		for offset := 0; ; offset += listPageSize {
			page, err := s.repo.ListTopLevel(ctx, postID, sort, offset, listPageSize)
			if err != nil {
				yield(nil, storageErr(err))
				return
			}
			for i := range page {
				cm := page[i]
				if cm.RepliesCount > 0 {
					replies, err := s.repo.ListReplies(ctx, cm.ID)
					if err != nil {
						yield(nil, storageErr(err))
						return
					}
					cm.Replies = replies
				}
				if !yield(&cm, nil) {
					return
				}
			}
			if len(page) < listPageSize {
				return
			}
		}
	}
}

func (s *commentService) Reconcile(ctx context.Context, postID uint64) error {
	if err := s.repo.Recount(ctx, postID); err != nil {
		return storageErr(err)
	}
	return nil
}
