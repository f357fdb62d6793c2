package presence

import (
	"reflect"
	"testing"

	"github.com/kicklink/social-backend/internal/model"
)

func TestReactionToggle(t *testing.T) {
	rs := NewReactionSet()

	if !rs.Toggle(1, "alice", "🔥") {
		t.Fatal("first toggle should add")
	}
	if rs.Toggle(1, "alice", "🔥") {
		t.Fatal("second toggle should remove")
	}
	if !rs.Toggle(1, "alice", "🔥") {
		t.Fatal("third toggle should add again")
	}

	// Distinct emojis from the same user coexist.
	if !rs.Toggle(1, "alice", "👟") {
		t.Fatal("different emoji should add")
	}
	if got := len(rs.Groups(1)); got != 2 {
		t.Fatalf("expected 2 groups, got %d", got)
	}
}

func TestReactionRemoveIdempotent(t *testing.T) {
	rs := NewReactionSet()
	rs.Toggle(1, "alice", "🔥")

	if !rs.Remove(1, "alice", "🔥") {
		t.Fatal("remove should report the deletion")
	}
	if rs.Remove(1, "alice", "🔥") {
		t.Fatal("second remove should be a no-op")
	}
	if groups := rs.Groups(1); len(groups) != 0 {
		t.Fatalf("expected no groups, got %v", groups)
	}
}

func TestReactionGroups(t *testing.T) {
	rs := NewReactionSet()
	rs.Toggle(1, "bob", "🔥")
	rs.Toggle(1, "alice", "🔥")
	rs.Toggle(1, "carol", "👟")

	got := rs.Groups(1)
	want := []model.ReactionGroup{
		{Emoji: "🔥", Count: 2, Users: []string{"alice", "bob"}},
		{Emoji: "👟", Count: 1, Users: []string{"carol"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got=%v want=%v", got, want)
	}

	if groups := rs.Groups(2); len(groups) != 0 {
		t.Fatalf("other message should be empty, got %v", groups)
	}
}
