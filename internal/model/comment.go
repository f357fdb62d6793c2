package model

import "time"

type CommentSort string

const (
	CommentSortNewest        CommentSort = "newest"
	CommentSortOldest        CommentSort = "oldest"
	CommentSortTop           CommentSort = "top"
	CommentSortControversial CommentSort = "controversial"
)

func (s CommentSort) Valid() bool {
	switch s {
	case CommentSortNewest, CommentSortOldest, CommentSortTop, CommentSortControversial:
		return true
	}
	return false
}

// Comment is a comment on a post. Nesting is capped at one level: a reply's
// parent_comment_id must reference a comment on the same post that itself has
// no parent. likes_count and replies_count are derived counters maintained by
// the store, never settable by callers.
type Comment struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID          uint64    `gorm:"column:post_id;index;not null" json:"post_id"`
	UserID          string    `gorm:"column:user_id;size:128;index;not null" json:"user_id"`
	Content         string    `gorm:"type:text" json:"content"`
	ParentCommentID *uint64   `gorm:"column:parent_comment_id;index" json:"parent_comment_id,omitempty"`
	MediaURL        *string   `gorm:"column:media_url;size:512" json:"media_url,omitempty"`
	LikesCount      int64     `gorm:"column:likes_count;not null;default:0" json:"likes_count"`
	RepliesCount    int64     `gorm:"column:replies_count;not null;default:0" json:"replies_count"`
	IsEdited        bool      `gorm:"column:is_edited" json:"is_edited"`
	// A deleted comment that still has replies is kept as a tombstone:
	// identity and relationships survive, user content is cleared.
	IsDeleted bool      `gorm:"column:is_deleted" json:"is_deleted"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Read-side projections, never stored.
	User    *UserSnapshot `gorm:"-" json:"user,omitempty"`
	Replies []Comment     `gorm:"-" json:"replies,omitempty"`
}

func (Comment) TableName() string {
	return "comments"
}

// ControversyScore orders the controversial sort. Monotonic in both
// likes_count and replies_count; replies weigh heavier because a contested
// comment draws discussion rather than plain likes.
func (c *Comment) ControversyScore() int64 {
	return c.LikesCount + 3*c.RepliesCount
}
