package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// BudgetRef is a tri-state patch field for an expense's optional budget
// reference: not present in the request, present and null (clear), or
// present with an id.
type BudgetRef struct {
	Set bool
	ID  *int64
}

// ExpensePatch carries a partial expense update. Nil pointers mean the
// field was absent from the request and keeps its stored value.
type ExpensePatch struct {
	Name        *string
	Amount      *core.Money
	Date        *core.Date
	Category    *string
	Receipt     *bool
	Description *string
	BudgetID    BudgetRef
}

// ExpenseService orchestrates expense writes across SQLite and AMQP.
// Every write pairs the expense mutation with its budget aggregate
// adjustment in one transaction, then publishes the spend delta for the
// analytics worker after commit.
type ExpenseService struct {
	storage    *storage.Repository
	maintainer *AggregateMaintainer
	amqpClient *amqp.Client
}

func NewExpenseService(storage *storage.Repository, amqpClient *amqp.Client) *ExpenseService {
	return &ExpenseService{
		storage:    storage,
		maintainer: NewAggregateMaintainer(),
		amqpClient: amqpClient,
	}
}

// CreateExpense validates and stores a new expense, crediting the
// referenced budget in the same transaction. It returns the refreshed
// budget when the expense references one, nil otherwise.
func (s *ExpenseService) CreateExpense(ctx context.Context, e *core.Expense) (*core.Budget, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	err := s.storage.InTx(ctx, func(tx *storage.Tx) error {
		if err := tx.InsertExpense(ctx, e); err != nil {
			return err
		}
		return s.maintainer.ApplyExpenseCreate(ctx, tx, e.UserID, e.BudgetID, e.Amount.Cents)
	})
	if err != nil {
		return nil, mapBudgetRefError(err)
	}

	slog.InfoContext(ctx, "Expense created",
		"expense_id", e.ID, "amount_cents", e.Amount.Cents, "budget_id", refOrNil(e.BudgetID))

	s.publishApplied(ctx, e.UserID, e.Category, e.Date, e.Amount.Cents)

	if e.BudgetID == nil {
		return nil, nil
	}
	budget, err := s.storage.GetBudget(ctx, e.UserID, *e.BudgetID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to reload budget after expense create",
			"budget_id", *e.BudgetID, "error", err)
		return nil, nil
	}
	return budget, nil
}

// UpdateExpense applies a partial update, keeping the budget aggregates
// consistent whether the amount changed, the budget reference moved, or
// both at once.
func (s *ExpenseService) UpdateExpense(ctx context.Context, userID string, id int64, patch ExpensePatch) (*core.Expense, error) {
	var before, after core.Expense

	err := s.storage.InTx(ctx, func(tx *storage.Tx) error {
		current, err := tx.GetExpense(ctx, userID, id)
		if err != nil {
			return err
		}
		before = *current
		after = applyPatch(*current, patch)

		if err := after.Validate(); err != nil {
			return err
		}
		if err := tx.UpdateExpense(ctx, &after); err != nil {
			return err
		}

		if core.SameBudgetRef(before.BudgetID, after.BudgetID) {
			return s.maintainer.ApplyExpenseAmountChange(ctx, tx, userID,
				after.BudgetID, before.Amount.Cents, after.Amount.Cents)
		}
		return s.maintainer.ApplyExpenseReassignment(ctx, tx, userID,
			before.BudgetID, after.BudgetID, before.Amount.Cents, after.Amount.Cents)
	})
	if err != nil {
		return nil, mapBudgetRefError(err)
	}

	slog.InfoContext(ctx, "Expense updated",
		"expense_id", id, "amount_cents", after.Amount.Cents, "budget_id", refOrNil(after.BudgetID))

	if analyticsChanged(before, after) {
		s.publishApplied(ctx, userID, before.Category, before.Date, -before.Amount.Cents)
		s.publishApplied(ctx, userID, after.Category, after.Date, after.Amount.Cents)
	}

	return &after, nil
}

// DeleteExpense soft-deletes an expense and reverses its contribution to
// the referenced budget's spent aggregate.
func (s *ExpenseService) DeleteExpense(ctx context.Context, userID string, id int64) error {
	var deleted core.Expense

	err := s.storage.InTx(ctx, func(tx *storage.Tx) error {
		current, err := tx.GetExpense(ctx, userID, id)
		if err != nil {
			return err
		}
		deleted = *current

		if err := tx.MarkExpenseInactive(ctx, userID, id); err != nil {
			return err
		}
		return s.maintainer.ApplyExpenseDelete(ctx, tx, userID, deleted.BudgetID, deleted.Amount.Cents)
	})
	if err != nil {
		return mapBudgetRefError(err)
	}

	slog.InfoContext(ctx, "Expense deleted",
		"expense_id", id, "amount_cents", deleted.Amount.Cents, "budget_id", refOrNil(deleted.BudgetID))

	s.publishApplied(ctx, userID, deleted.Category, deleted.Date, -deleted.Amount.Cents)
	return nil
}

// publishApplied emits a spend delta for the analytics worker. Publishing
// is best effort; the transaction has already committed and a dropped
// event must not fail the request.
func (s *ExpenseService) publishApplied(ctx context.Context, userID, category string, date core.Date, deltaCents int64) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping applied message")
		return
	}
	if err := s.amqpClient.PublishExpenseApplied(ctx, amqp.ExpenseAppliedMessage{
		UserID:     userID,
		Category:   category,
		Month:      date.Month(),
		Year:       date.Year(),
		DeltaCents: deltaCents,
	}); err != nil {
		slog.ErrorContext(ctx, "Failed to publish applied message",
			"category", category, "delta_cents", deltaCents, "error", err)
	}
}

// Close closes both storage and AMQP connections.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}

	return nil
}

func applyPatch(e core.Expense, p ExpensePatch) core.Expense {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Receipt != nil {
		e.Receipt = *p.Receipt
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.BudgetID.Set {
		e.BudgetID = p.BudgetID.ID
	}
	return e
}

func analyticsChanged(before, after core.Expense) bool {
	return before.Amount != after.Amount ||
		before.Category != after.Category ||
		!before.Date.Equal(after.Date.Time)
}

// mapBudgetRefError converts the aggregate maintainer's unavailable-budget
// signal into a field-level validation error so clients see which input
// was bad.
func mapBudgetRefError(err error) error {
	if errors.Is(err, core.ErrBudgetUnavailable) {
		return core.NewValidationError("budgetId", "budget does not exist or is not active")
	}
	return err
}

func refOrNil(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
