package model

import "testing"

func TestTradeStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from TradeStatus
		to   TradeStatus
		want bool
	}{
		{"pending to accepted", TradeStatusPending, TradeStatusAccepted, true},
		{"pending to declined", TradeStatusPending, TradeStatusDeclined, true},
		{"pending to countered", TradeStatusPending, TradeStatusCountered, true},
		{"pending to pending", TradeStatusPending, TradeStatusPending, false},
		{"accepted is terminal", TradeStatusAccepted, TradeStatusDeclined, false},
		{"declined is terminal", TradeStatusDeclined, TradeStatusAccepted, false},
		{"countered is terminal", TradeStatusCountered, TradeStatusAccepted, false},
		{"pending to garbage", TradeStatusPending, TradeStatus("expired"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Fatalf("got=%v want=%v", got, tt.want)
			}
		})
	}
}
