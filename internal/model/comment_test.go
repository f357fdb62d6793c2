package model

import "testing"

func TestCommentSortValid(t *testing.T) {
	tests := []struct {
		name  string
		input CommentSort
		want  bool
	}{
		{"newest", CommentSortNewest, true},
		{"oldest", CommentSortOldest, true},
		{"top", CommentSortTop, true},
		{"controversial", CommentSortControversial, true},
		{"empty", CommentSort(""), false},
		{"unknown", CommentSort("hot"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.input.Valid(); got != tt.want {
				t.Fatalf("got=%v want=%v", got, tt.want)
			}
		})
	}
}

func TestControversyScore(t *testing.T) {
	tests := []struct {
		name    string
		likes   int64
		replies int64
		want    int64
	}{
		{"zero", 0, 0, 0},
		{"likes only", 5, 0, 5},
		{"replies weigh triple", 0, 4, 12},
		{"mixed", 2, 3, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm := Comment{LikesCount: tt.likes, RepliesCount: tt.replies}
			if got := cm.ControversyScore(); got != tt.want {
				t.Fatalf("got=%d want=%d", got, tt.want)
			}
		})
	}
}
