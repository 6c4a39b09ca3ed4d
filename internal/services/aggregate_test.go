package services

import (
	"context"
	"testing"

	"bilancio/internal/core"
)

// fakeAdjuster records every spent adjustment and can simulate a budget
// that rejects the write.
type fakeAdjuster struct {
	calls []adjustment
	fail  map[int64]error
}

type adjustment struct {
	userID     string
	budgetID   int64
	deltaCents int64
}

func (f *fakeAdjuster) AdjustBudgetSpent(_ context.Context, userID string, budgetID int64, deltaCents int64) error {
	if err := f.fail[budgetID]; err != nil {
		return err
	}
	f.calls = append(f.calls, adjustment{userID: userID, budgetID: budgetID, deltaCents: deltaCents})
	return nil
}

func ptr(v int64) *int64 { return &v }

func TestAggregateMaintainer_Create(t *testing.T) {
	m := NewAggregateMaintainer()
	ctx := context.Background()

	t.Run("credits referenced budget", func(t *testing.T) {
		adj := &fakeAdjuster{}
		if err := m.ApplyExpenseCreate(ctx, adj, "u1", ptr(7), 2500); err != nil {
			t.Fatalf("ApplyExpenseCreate() error = %v", err)
		}
		if len(adj.calls) != 1 {
			t.Fatalf("want 1 adjustment, got %d", len(adj.calls))
		}
		if got := adj.calls[0]; got != (adjustment{"u1", 7, 2500}) {
			t.Errorf("adjustment = %+v", got)
		}
	})

	t.Run("nil reference is a no-op", func(t *testing.T) {
		adj := &fakeAdjuster{}
		if err := m.ApplyExpenseCreate(ctx, adj, "u1", nil, 2500); err != nil {
			t.Fatalf("ApplyExpenseCreate() error = %v", err)
		}
		if len(adj.calls) != 0 {
			t.Errorf("want no adjustments, got %v", adj.calls)
		}
	})

	t.Run("unavailable budget propagates", func(t *testing.T) {
		adj := &fakeAdjuster{fail: map[int64]error{7: core.ErrBudgetUnavailable}}
		err := m.ApplyExpenseCreate(ctx, adj, "u1", ptr(7), 2500)
		if err != core.ErrBudgetUnavailable {
			t.Errorf("error = %v, want ErrBudgetUnavailable", err)
		}
	})
}

func TestAggregateMaintainer_AmountChange(t *testing.T) {
	m := NewAggregateMaintainer()
	ctx := context.Background()

	tests := []struct {
		name      string
		oldCents  int64
		newCents  int64
		wantDelta int64
	}{
		{"increase", 1000, 1500, 500},
		{"decrease", 1500, 1000, -500},
		{"unchanged still touches the row", 1000, 1000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adj := &fakeAdjuster{}
			if err := m.ApplyExpenseAmountChange(ctx, adj, "u1", ptr(3), tt.oldCents, tt.newCents); err != nil {
				t.Fatalf("ApplyExpenseAmountChange() error = %v", err)
			}
			if len(adj.calls) != 1 {
				t.Fatalf("want 1 adjustment, got %d", len(adj.calls))
			}
			if adj.calls[0].deltaCents != tt.wantDelta {
				t.Errorf("delta = %d, want %d", adj.calls[0].deltaCents, tt.wantDelta)
			}
		})
	}

	t.Run("nil reference is a no-op", func(t *testing.T) {
		adj := &fakeAdjuster{}
		if err := m.ApplyExpenseAmountChange(ctx, adj, "u1", nil, 1000, 1500); err != nil {
			t.Fatalf("ApplyExpenseAmountChange() error = %v", err)
		}
		if len(adj.calls) != 0 {
			t.Errorf("want no adjustments, got %v", adj.calls)
		}
	})
}

func TestAggregateMaintainer_Reassignment(t *testing.T) {
	m := NewAggregateMaintainer()
	ctx := context.Background()

	tests := []struct {
		name     string
		oldID    *int64
		newID    *int64
		oldCents int64
		newCents int64
		want     []adjustment
	}{
		{
			name: "nil to nil does nothing",
			want: nil,
		},
		{
			name:     "backfill credits the whole current amount",
			newID:    ptr(4),
			oldCents: 1000,
			newCents: 1000,
			want:     []adjustment{{"u1", 4, 1000}},
		},
		{
			name:     "clearing debits the whole previous amount",
			oldID:    ptr(4),
			oldCents: 1000,
			newCents: 1000,
			want:     []adjustment{{"u1", 4, -1000}},
		},
		{
			name:     "same budget applies the delta only",
			oldID:    ptr(4),
			newID:    ptr(4),
			oldCents: 1000,
			newCents: 1800,
			want:     []adjustment{{"u1", 4, 800}},
		},
		{
			name:     "move debits old and credits new",
			oldID:    ptr(4),
			newID:    ptr(9),
			oldCents: 1000,
			newCents: 1000,
			want:     []adjustment{{"u1", 4, -1000}, {"u1", 9, 1000}},
		},
		{
			name:     "combined move and amount change uses full amounts",
			oldID:    ptr(4),
			newID:    ptr(9),
			oldCents: 1000,
			newCents: 2500,
			want:     []adjustment{{"u1", 4, -1000}, {"u1", 9, 2500}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adj := &fakeAdjuster{}
			if err := m.ApplyExpenseReassignment(ctx, adj, "u1", tt.oldID, tt.newID, tt.oldCents, tt.newCents); err != nil {
				t.Fatalf("ApplyExpenseReassignment() error = %v", err)
			}
			if len(adj.calls) != len(tt.want) {
				t.Fatalf("adjustments = %v, want %v", adj.calls, tt.want)
			}
			for i := range tt.want {
				if adj.calls[i] != tt.want[i] {
					t.Errorf("adjustment %d = %+v, want %+v", i, adj.calls[i], tt.want[i])
				}
			}
		})
	}

	t.Run("failed debit stops before the credit", func(t *testing.T) {
		adj := &fakeAdjuster{fail: map[int64]error{4: core.ErrBudgetUnavailable}}
		err := m.ApplyExpenseReassignment(ctx, adj, "u1", ptr(4), ptr(9), 1000, 1000)
		if err != core.ErrBudgetUnavailable {
			t.Fatalf("error = %v, want ErrBudgetUnavailable", err)
		}
		if len(adj.calls) != 0 {
			t.Errorf("credit must not run after a failed debit, got %v", adj.calls)
		}
	})
}

func TestAggregateMaintainer_Delete(t *testing.T) {
	m := NewAggregateMaintainer()
	ctx := context.Background()

	adj := &fakeAdjuster{}
	if err := m.ApplyExpenseDelete(ctx, adj, "u1", ptr(2), 1750); err != nil {
		t.Fatalf("ApplyExpenseDelete() error = %v", err)
	}
	if len(adj.calls) != 1 || adj.calls[0].deltaCents != -1750 {
		t.Errorf("adjustments = %v, want one -1750 delta", adj.calls)
	}

	adj = &fakeAdjuster{}
	if err := m.ApplyExpenseDelete(ctx, adj, "u1", nil, 1750); err != nil {
		t.Fatalf("ApplyExpenseDelete() error = %v", err)
	}
	if len(adj.calls) != 0 {
		t.Errorf("nil reference must be a no-op, got %v", adj.calls)
	}
}

// Conservation: a lifecycle of create, amount change, reassignment, and
// delete must leave every touched budget back at zero.
func TestAggregateMaintainer_Conservation(t *testing.T) {
	m := NewAggregateMaintainer()
	ctx := context.Background()
	adj := &fakeAdjuster{}

	if err := m.ApplyExpenseCreate(ctx, adj, "u1", ptr(1), 1000); err != nil {
		t.Fatal(err)
	}
	if err := m.ApplyExpenseAmountChange(ctx, adj, "u1", ptr(1), 1000, 1400); err != nil {
		t.Fatal(err)
	}
	if err := m.ApplyExpenseReassignment(ctx, adj, "u1", ptr(1), ptr(2), 1400, 1400); err != nil {
		t.Fatal(err)
	}
	if err := m.ApplyExpenseDelete(ctx, adj, "u1", ptr(2), 1400); err != nil {
		t.Fatal(err)
	}

	balance := map[int64]int64{}
	for _, c := range adj.calls {
		balance[c.budgetID] += c.deltaCents
	}
	for id, cents := range balance {
		if cents != 0 {
			t.Errorf("budget %d ends at %d cents, want 0", id, cents)
		}
	}
}
