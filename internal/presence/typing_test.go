package presence

import (
	"testing"
	"time"

	"github.com/kicklink/social-backend/internal/model"
)

func TestTypingTrackerExpiry(t *testing.T) {
	tr := NewTypingTracker(5 * time.Second)
	now := time.Now()
	tr.SetNow(func() time.Time { return now })

	tr.Set(model.TypingIndicator{ConversationID: 1, UserID: "alice", Username: "alice", IsTyping: true})

	active := tr.Active(1)
	if len(active) != 1 || active[0].UserID != "alice" {
		t.Fatalf("expected alice typing, got %v", active)
	}

	// No stopped-typing signal ever arrives; the entry ages out anyway.
	now = now.Add(6 * time.Second)
	if active := tr.Active(1); len(active) != 0 {
		t.Fatalf("expected expired, got %v", active)
	}
}

func TestTypingTrackerLastWriteWins(t *testing.T) {
	tr := NewTypingTracker(5 * time.Second)
	now := time.Now()
	tr.SetNow(func() time.Time { return now })

	tr.Set(model.TypingIndicator{ConversationID: 1, UserID: "alice", IsTyping: true})
	tr.Set(model.TypingIndicator{ConversationID: 1, UserID: "alice", IsTyping: false})

	if active := tr.Active(1); len(active) != 0 {
		t.Fatalf("stop signal should win, got %v", active)
	}

	// Typing again after stopping shows up fresh.
	tr.Set(model.TypingIndicator{ConversationID: 1, UserID: "alice", IsTyping: true})
	if active := tr.Active(1); len(active) != 1 {
		t.Fatalf("expected typing again, got %v", active)
	}
}

func TestTypingTrackerIsolatesConversations(t *testing.T) {
	tr := NewTypingTracker(5 * time.Second)
	tr.Set(model.TypingIndicator{ConversationID: 1, UserID: "alice", IsTyping: true})

	if active := tr.Active(2); len(active) != 0 {
		t.Fatalf("conversation 2 should be empty, got %v", active)
	}
}
