// Package services provides business logic and orchestration on top of
// the storage layer.
//
// This file implements the aggregate maintainer: the single code path
// permitted to mutate a budget's spent aggregate. All four expense
// lifecycle operations route through it; nothing else writes spent.
package services

import (
	"context"
)

// BudgetAdjuster applies an atomic signed delta to a budget's spent
// aggregate. Implementations must perform the add in storage (not
// read-modify-write in the application) and must return
// core.ErrBudgetUnavailable when the budget is missing, owned by another
// user, or inactive. The storage transaction type satisfies this.
type BudgetAdjuster interface {
	AdjustBudgetSpent(ctx context.Context, userID string, budgetID int64, deltaCents int64) error
}

// AggregateMaintainer keeps budget spent aggregates consistent with the
// set of active expenses referencing them. Each method is called inside
// the same transaction as the expense write it pairs with; a returned
// error aborts the whole transaction so the expense write is never left
// committed with an unapplied adjustment.
type AggregateMaintainer struct{}

// NewAggregateMaintainer returns a maintainer.
func NewAggregateMaintainer() *AggregateMaintainer {
	return &AggregateMaintainer{}
}

// ApplyExpenseCreate credits the referenced budget with the full expense
// amount. With no budget reference nothing happens.
func (m *AggregateMaintainer) ApplyExpenseCreate(ctx context.Context, adj BudgetAdjuster, userID string, budgetID *int64, amountCents int64) error {
	if budgetID == nil {
		return nil
	}
	return adj.AdjustBudgetSpent(ctx, userID, *budgetID, amountCents)
}

// ApplyExpenseAmountChange applies the amount delta to the budget both
// versions of the expense reference. A zero delta still touches the
// budget row, which validates the reference is live.
func (m *AggregateMaintainer) ApplyExpenseAmountChange(ctx context.Context, adj BudgetAdjuster, userID string, budgetID *int64, oldCents, newCents int64) error {
	if budgetID == nil {
		return nil
	}
	return adj.AdjustBudgetSpent(ctx, userID, *budgetID, newCents-oldCents)
}

// ApplyExpenseReassignment moves an expense between budgets, casing
// explicitly on all four combinations of old/new reference presence.
// It carries both the pre- and post-update amounts so that a combined
// amount-and-budget update debits the old budget its full previous amount
// and credits the new budget the full new amount. In particular,
// back-filling a nil reference credits the new budget the expense's whole
// current amount, never a delta.
func (m *AggregateMaintainer) ApplyExpenseReassignment(ctx context.Context, adj BudgetAdjuster, userID string, oldID, newID *int64, oldCents, newCents int64) error {
	switch {
	case oldID == nil && newID == nil:
		return nil
	case oldID == nil:
		return adj.AdjustBudgetSpent(ctx, userID, *newID, newCents)
	case newID == nil:
		return adj.AdjustBudgetSpent(ctx, userID, *oldID, -oldCents)
	case *oldID == *newID:
		return adj.AdjustBudgetSpent(ctx, userID, *oldID, newCents-oldCents)
	default:
		if err := adj.AdjustBudgetSpent(ctx, userID, *oldID, -oldCents); err != nil {
			return err
		}
		return adj.AdjustBudgetSpent(ctx, userID, *newID, newCents)
	}
}

// ApplyExpenseDelete reverses the expense's contribution to its budget.
func (m *AggregateMaintainer) ApplyExpenseDelete(ctx context.Context, adj BudgetAdjuster, userID string, budgetID *int64, amountCents int64) error {
	if budgetID == nil {
		return nil
	}
	return adj.AdjustBudgetSpent(ctx, userID, *budgetID, -amountCents)
}
