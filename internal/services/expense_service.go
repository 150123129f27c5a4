package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"financeapp-server/internal/models"
	"financeapp-server/internal/repo"
)

// ExpenseRepository is the storage contract ExpenseService depends on.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) error
	GetByID(ctx context.Context, id int64, userID *int64) (*models.Expense, error)
	Delete(ctx context.Context, id int64, userID *int64) (bool, error)
	List(ctx context.Context, filters repo.ExpenseFilters) ([]models.Expense, int64, error)
	ChartData(ctx context.Context, userID int64) ([]repo.CategoryTotal, error)
	Summary(ctx context.Context, userID *int64) (*repo.ExpenseSummary, error)
}

// ExpenseService is the one canonical expense service. Whether reads and
// deletes are restricted to the caller's own records is a constructor flag,
// not a separate implementation.
type ExpenseService struct {
	expenses     ExpenseRepository
	scopeToOwner bool
}

func NewExpenseService(expenses ExpenseRepository, scopeToOwner bool) *ExpenseService {
	return &ExpenseService{expenses: expenses, scopeToOwner: scopeToOwner}
}

// ownerFilter yields the owner restriction for the given caller, or nil when
// the service runs unscoped.
func (s *ExpenseService) ownerFilter(callerID int64) *int64 {
	if !s.scopeToOwner {
		return nil
	}
	return &callerID
}

// Add stores an expense. Zero dates become now; all dates are normalized to
// UTC before persisting.
func (s *ExpenseService) Add(ctx context.Context, expense *models.Expense) error {
	if expense.Date.IsZero() {
		expense.Date = time.Now().UTC()
	} else {
		expense.Date = expense.Date.UTC()
	}

	if err := s.expenses.Create(ctx, expense); err != nil {
		return fmt.Errorf("add expense: %w", err)
	}
	return nil
}

func (s *ExpenseService) GetByID(ctx context.Context, id, callerID int64) (*models.Expense, error) {
	expense, err := s.expenses.GetByID(ctx, id, s.ownerFilter(callerID))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return expense, nil
}

// Delete removes an expense within the caller's scope. A record that exists
// but belongs to someone else looks exactly like a missing one.
func (s *ExpenseService) Delete(ctx context.Context, id, callerID int64) error {
	deleted, err := s.expenses.Delete(ctx, id, s.ownerFilter(callerID))
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if !deleted {
		return ErrExpenseNotFound
	}
	return nil
}

// List returns the caller's expenses, newest first, with the unpaged total.
func (s *ExpenseService) List(ctx context.Context, callerID int64, filters repo.ExpenseFilters) ([]models.Expense, int64, error) {
	filters.UserID = s.ownerFilter(callerID)
	return s.expenses.List(ctx, filters)
}

// ChartData aggregates the caller's spending per category. Chart data is
// always per-user; there is no unscoped variant.
func (s *ExpenseService) ChartData(ctx context.Context, callerID int64) ([]repo.CategoryTotal, error) {
	return s.expenses.ChartData(ctx, callerID)
}

func (s *ExpenseService) Summary(ctx context.Context, callerID int64) (*repo.ExpenseSummary, error) {
	return s.expenses.Summary(ctx, s.ownerFilter(callerID))
}
