package repository

import (
	"context"
	"errors"

	"github.com/kicklink/social-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository interface {
	// Create inserts a comment and, when parented, increments the parent's
	// replies_count in the same transaction.
	Create(ctx context.Context, cm *model.Comment) error
	FindByID(ctx context.Context, id uint64) (*model.Comment, error)
	Update(ctx context.Context, cm *model.Comment) error
	// Delete removes a comment. A comment that still has replies survives
	// as a tombstone with content cleared so the replies keep their parent;
	// a leaf is removed along with its likes. The replies check happens
	// inside the store's critical section, never from a caller-side read.
	// The parent's replies_count is decremented either way.
	Delete(ctx context.Context, cm *model.Comment) error
	// Like records a like and bumps likes_count. Returns false when the
	// (comment, user) like already existed, in which case nothing changed.
	Like(ctx context.Context, commentID uint64, userID string) (bool, error)
	// Unlike removes a like and decrements likes_count. Returns false when
	// there was no like to remove.
	Unlike(ctx context.Context, commentID uint64, userID string) (bool, error)
	ListTopLevel(ctx context.Context, postID uint64, sort model.CommentSort, offset, limit int) ([]model.Comment, error)
	ListReplies(ctx context.Context, parentID uint64) ([]model.Comment, error)
	// Recount recomputes replies_count and likes_count for every comment of
	// the post from source rows. Repair pass for drift.
	Recount(ctx context.Context, postID uint64) error
	SetDB(db *gorm.DB)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *commentRepository) Create(ctx context.Context, cm *model.Comment) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(cm).Error; err != nil {
			return err
		}
		if cm.ParentCommentID == nil {
			return nil
		}
		return tx.Model(&model.Comment{}).
			Where("id = ?", *cm.ParentCommentID).
			Update("replies_count", gorm.Expr("replies_count + 1")).Error
	})
}

func (r *commentRepository) FindByID(ctx context.Context, id uint64) (*model.Comment, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var cm model.Comment
	if err := r.db.WithContext(ctx).First(&cm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cm, nil
}

func (r *commentRepository) Update(ctx context.Context, cm *model.Comment) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Save(cm).Error
}

func (r *commentRepository) Delete(ctx context.Context, cm *model.Comment) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The replies count is read under the comment's row lock. Create
		// bumps replies_count on the same row, so a concurrent reply either
		// lands before the lock (and is counted) or waits out the delete.
		var locked model.Comment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, cm.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		var replies int64
		if err := tx.Model(&model.Comment{}).
			Where("parent_comment_id = ?", cm.ID).
			Count(&replies).Error; err != nil {
			return err
		}
		if replies > 0 {
			if err := tx.Model(&model.Comment{}).
				Where("id = ?", cm.ID).
				Updates(map[string]interface{}{"is_deleted": true, "content": "", "media_url": nil}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Delete(&model.Comment{}, cm.ID).Error; err != nil {
				return err
			}
			if err := tx.Where("comment_id = ?", cm.ID).Delete(&model.CommentLike{}).Error; err != nil {
				return err
			}
		}
		if locked.ParentCommentID == nil {
			return nil
		}
		return tx.Model(&model.Comment{}).
			Where("id = ? AND replies_count > 0", *locked.ParentCommentID).
			Update("replies_count", gorm.Expr("replies_count - 1")).Error
	})
}

func (r *commentRepository) Like(ctx context.Context, commentID uint64, userID string) (bool, error) {
	if r.db == nil {
		return false, ErrDBNotReady
	}
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		like := model.CommentLike{CommentID: commentID, UserID: userID}
		// The composite primary key, not a read-then-write, is what makes
		// two simultaneous likes count once.
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		changed = true
		return tx.Model(&model.Comment{}).
			Where("id = ?", commentID).
			Update("likes_count", gorm.Expr("likes_count + 1")).Error
	})
	return changed, err
}

func (r *commentRepository) Unlike(ctx context.Context, commentID uint64, userID string) (bool, error) {
	if r.db == nil {
		return false, ErrDBNotReady
	}
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).
			Delete(&model.CommentLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		changed = true
		return tx.Model(&model.Comment{}).
			Where("id = ? AND likes_count > 0", commentID).
			Update("likes_count", gorm.Expr("likes_count - 1")).Error
	})
	return changed, err
}

func (r *commentRepository) ListTopLevel(ctx context.Context, postID uint64, sort model.CommentSort, offset, limit int) ([]model.Comment, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	q := r.db.WithContext(ctx).
		Where("post_id = ? AND parent_comment_id IS NULL", postID)
	switch sort {
	case model.CommentSortOldest:
		q = q.Order("created_at ASC, id ASC")
	case model.CommentSortTop:
		q = q.Order("likes_count DESC, created_at DESC, id DESC")
	case model.CommentSortControversial:
		q = q.Order("(likes_count + 3 * replies_count) DESC, created_at DESC, id DESC")
	default: // newest
		q = q.Order("created_at DESC, id DESC")
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var list []model.Comment
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *commentRepository) ListReplies(ctx context.Context, parentID uint64) ([]model.Comment, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Comment
	if err := r.db.WithContext(ctx).
		Where("parent_comment_id = ?", parentID).
		Order("created_at ASC, id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *commentRepository) Recount(ctx context.Context, postID uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	// Loop rather than a self-referencing UPDATE: MySQL rejects subqueries
	// on the update target table.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint64
		if err := tx.Model(&model.Comment{}).
			Where("post_id = ?", postID).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		for _, id := range ids {
			var replies, likes int64
			if err := tx.Model(&model.Comment{}).
				Where("parent_comment_id = ? AND is_deleted = ?", id, false).
				Count(&replies).Error; err != nil {
				return err
			}
			if err := tx.Model(&model.CommentLike{}).
				Where("comment_id = ?", id).
				Count(&likes).Error; err != nil {
				return err
			}
			if err := tx.Model(&model.Comment{}).
				Where("id = ?", id).
				Updates(map[string]interface{}{"replies_count": replies, "likes_count": likes}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
