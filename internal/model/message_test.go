package model

import "testing"

func TestMessageTypeValid(t *testing.T) {
	tests := []struct {
		name  string
		input MessageType
		want  bool
	}{
		{"text", MessageText, true},
		{"image", MessageImage, true},
		{"voice", MessageVoice, true},
		{"sneaker card", MessageSneakerCard, true},
		{"trade proposal", MessageTradeProposal, true},
		{"system", MessageSystem, true},
		{"empty", MessageType(""), false},
		{"unknown", MessageType("gif"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.input.Valid(); got != tt.want {
				t.Fatalf("got=%v want=%v", got, tt.want)
			}
		})
	}
}

func TestMessageTypeRequirements(t *testing.T) {
	tests := []struct {
		name        string
		input       MessageType
		wantMedia   bool
		wantSneaker bool
		wantTrade   bool
	}{
		{"text needs nothing", MessageText, false, false, false},
		{"image needs media", MessageImage, true, false, false},
		{"video needs media", MessageVideo, true, false, false},
		{"voice needs media", MessageVoice, true, false, false},
		{"sneaker card needs sneaker", MessageSneakerCard, false, true, false},
		{"trade proposal needs trade", MessageTradeProposal, false, false, true},
		{"location needs nothing", MessageLocation, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.input.RequiresMedia(); got != tt.wantMedia {
				t.Fatalf("RequiresMedia got=%v want=%v", got, tt.wantMedia)
			}
			if got := tt.input.RequiresSneaker(); got != tt.wantSneaker {
				t.Fatalf("RequiresSneaker got=%v want=%v", got, tt.wantSneaker)
			}
			if got := tt.input.RequiresTrade(); got != tt.wantTrade {
				t.Fatalf("RequiresTrade got=%v want=%v", got, tt.wantTrade)
			}
		})
	}
}
