package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/kicklink/social-backend/internal/model"
	"github.com/kicklink/social-backend/internal/repository"
	"gorm.io/gorm"
)

type commentRepo struct {
	s *Store
}

func NewCommentRepository(s *Store) repository.CommentRepository {
	return &commentRepo{s: s}
}

func (r *commentRepo) SetDB(*gorm.DB) {}

func (r *commentRepo) Create(ctx context.Context, cm *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextCommentID++
	cm.ID = r.s.nextCommentID
	now := r.s.tick()
	cm.CreatedAt = now
	cm.UpdatedAt = now
	stored := *cm
	r.s.comments[cm.ID] = &stored

	if cm.ParentCommentID != nil {
		if parent, ok := r.s.comments[*cm.ParentCommentID]; ok {
			parent.RepliesCount++
		}
	}
	return nil
}

func (r *commentRepo) FindByID(ctx context.Context, id uint64) (*model.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cm, ok := r.s.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *cm
	return &out, nil
}

func (r *commentRepo) Update(ctx context.Context, cm *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[cm.ID]; !ok {
		return repository.ErrNotFound
	}
	cm.UpdatedAt = r.s.tick()
	stored := *cm
	r.s.comments[cm.ID] = &stored
	return nil
}

func (r *commentRepo) Delete(ctx context.Context, cm *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.comments[cm.ID]
	if !ok {
		return repository.ErrNotFound
	}
	// Tombstone-or-remove is decided here, under the store lock, so a reply
	// created after the caller's read still pins its parent.
	hasReplies := false
	for _, c := range r.s.comments {
		if c.ParentCommentID != nil && *c.ParentCommentID == cm.ID {
			hasReplies = true
			break
		}
	}
	if hasReplies {
		stored.IsDeleted = true
		stored.Content = ""
		stored.MediaURL = nil
		stored.UpdatedAt = r.s.tick()
	} else {
		delete(r.s.comments, cm.ID)
		delete(r.s.likes, cm.ID)
	}
	if stored.ParentCommentID != nil {
		if parent, ok := r.s.comments[*stored.ParentCommentID]; ok && parent.RepliesCount > 0 {
			parent.RepliesCount--
		}
	}
	return nil
}

func (r *commentRepo) Like(ctx context.Context, commentID uint64, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cm, ok := r.s.comments[commentID]
	if !ok {
		return false, repository.ErrNotFound
	}
	byUser := r.s.likes[commentID]
	if byUser == nil {
		byUser = make(map[string]time.Time)
		r.s.likes[commentID] = byUser
	}
	if _, exists := byUser[userID]; exists {
		return false, nil
	}
	byUser[userID] = r.s.tick()
	cm.LikesCount++
	return true, nil
}

func (r *commentRepo) Unlike(ctx context.Context, commentID uint64, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cm, ok := r.s.comments[commentID]
	if !ok {
		return false, repository.ErrNotFound
	}
	byUser := r.s.likes[commentID]
	if _, exists := byUser[userID]; !exists {
		return false, nil
	}
	delete(byUser, userID)
	if cm.LikesCount > 0 {
		cm.LikesCount--
	}
	return true, nil
}

func (r *commentRepo) ListTopLevel(ctx context.Context, postID uint64, sortBy model.CommentSort, offset, limit int) ([]model.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var list []model.Comment
	for _, cm := range r.s.comments {
		if cm.PostID == postID && cm.ParentCommentID == nil {
			list = append(list, *cm)
		}
	}
	switch sortBy {
	case model.CommentSortOldest:
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	case model.CommentSortTop:
		sort.Slice(list, func(i, j int) bool {
			if list[i].LikesCount != list[j].LikesCount {
				return list[i].LikesCount > list[j].LikesCount
			}
			return list[i].ID > list[j].ID
		})
	case model.CommentSortControversial:
		sort.Slice(list, func(i, j int) bool {
			si, sj := list[i].ControversyScore(), list[j].ControversyScore()
			if si != sj {
				return si > sj
			}
			return list[i].ID > list[j].ID
		})
	default: // newest
		sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	}
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *commentRepo) ListReplies(ctx context.Context, parentID uint64) ([]model.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var list []model.Comment
	for _, cm := range r.s.comments {
		if cm.ParentCommentID != nil && *cm.ParentCommentID == parentID {
			list = append(list, *cm)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *commentRepo) Recount(ctx context.Context, postID uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, cm := range r.s.comments {
		if cm.PostID != postID {
			continue
		}
		var replies int64
		for _, child := range r.s.comments {
			if child.ParentCommentID != nil && *child.ParentCommentID == id && !child.IsDeleted {
				replies++
			}
		}
		cm.RepliesCount = replies
		cm.LikesCount = int64(len(r.s.likes[id]))
	}
	return nil
}
