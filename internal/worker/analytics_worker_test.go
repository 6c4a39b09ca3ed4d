package worker

import (
	"context"
	"errors"
	"testing"

	"bilancio/internal/amqp"
)

// Malformed messages must be rejected before any storage call runs, so a
// worker with no repository behind it is enough to exercise them. The
// error must carry ErrMalformedMessage so the consumer drops the
// delivery instead of requeueing it forever.
func TestHandleAppliedMessage_Malformed(t *testing.T) {
	w := NewAnalyticsWorker(nil)
	ctx := context.Background()

	tests := []struct {
		name string
		msg  amqp.ExpenseAppliedMessage
	}{
		{"missing user", amqp.ExpenseAppliedMessage{Category: "groceries", Month: 3, Year: 2024}},
		{"missing category", amqp.ExpenseAppliedMessage{UserID: "u1", Month: 3, Year: 2024}},
		{"month zero", amqp.ExpenseAppliedMessage{UserID: "u1", Category: "groceries", Month: 0, Year: 2024}},
		{"month thirteen", amqp.ExpenseAppliedMessage{UserID: "u1", Category: "groceries", Month: 13, Year: 2024}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.msg
			err := w.HandleAppliedMessage(ctx, &msg)
			if err == nil {
				t.Fatalf("HandleAppliedMessage(%+v) = nil, want error", tt.msg)
			}
			if !errors.Is(err, amqp.ErrMalformedMessage) {
				t.Errorf("HandleAppliedMessage(%+v) error = %v, want ErrMalformedMessage", tt.msg, err)
			}
		})
	}
}
