package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"financeapp-server/internal/models"
)

type ExpenseRepo struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// ExpenseFilters narrows listings. UserID nil means unscoped (administrative
// reads); the service decides whether to set it.
type ExpenseFilters struct {
	UserID   *int64
	Category string
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PerPage  int
}

// CategoryTotal is one slice of the per-category chart.
type CategoryTotal struct {
	Category    string  `json:"category"`
	TotalAmount float64 `json:"total_amount"`
}

// CategorySummary extends CategoryTotal with a record count.
type CategorySummary struct {
	Category string  `json:"category"`
	Count    int64   `json:"count"`
	Total    float64 `json:"total"`
}

type ExpenseSummary struct {
	TotalExpenses int64             `json:"total_expenses"`
	TotalAmount   float64           `json:"total_amount"`
	AverageAmount float64           `json:"average_amount"`
	Categories    []CategorySummary `json:"categories"`
}

func NewExpenseRepo(pool *pgxpool.Pool, timeout time.Duration) *ExpenseRepo {
	return &ExpenseRepo{pool: pool, timeout: timeout}
}

func (r *ExpenseRepo) Create(ctx context.Context, expense *models.Expense) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO expenses (user_id, description, category, amount, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, expense.UserID, expense.Description, expense.Category, expense.Amount, expense.Date)

	if err := row.Scan(&expense.ID); err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// GetByID fetches one expense, optionally restricted to its owner.
func (r *ExpenseRepo) GetByID(ctx context.Context, id int64, userID *int64) (*models.Expense, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, user_id, description, category, amount, date
		FROM expenses
		WHERE id = $1`
	args := []any{id}
	if userID != nil {
		query += " AND user_id = $2"
		args = append(args, *userID)
	}

	row := r.pool.QueryRow(ctx, query, args...)
	var expense models.Expense
	err := row.Scan(
		&expense.ID,
		&expense.UserID,
		&expense.Description,
		&expense.Category,
		&expense.Amount,
		&expense.Date,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return &expense, nil
}

// Delete removes one expense, optionally restricted to its owner, and
// reports whether a row went away.
func (r *ExpenseRepo) Delete(ctx context.Context, id int64, userID *int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := "DELETE FROM expenses WHERE id = $1"
	args := []any{id}
	if userID != nil {
		query += " AND user_id = $2"
		args = append(args, *userID)
	}

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete expense: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// List returns a page of expenses newest-date first plus the unpaged total.
func (r *ExpenseRepo) List(ctx context.Context, filters ExpenseFilters) ([]models.Expense, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	whereSQL, args := buildExpenseFilters(filters)

	limit := filters.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := (filters.Page - 1) * limit
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, description, category, amount, date
		FROM expenses
		%s
		ORDER BY date DESC, id DESC
		LIMIT %d OFFSET %d
	`, whereSQL, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var results []models.Expense
	for rows.Next() {
		var expense models.Expense
		if err := rows.Scan(
			&expense.ID,
			&expense.UserID,
			&expense.Description,
			&expense.Category,
			&expense.Amount,
			&expense.Date,
		); err != nil {
			return nil, 0, fmt.Errorf("scan expense: %w", err)
		}
		results = append(results, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate expenses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM expenses %s", whereSQL)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}

	return results, total, nil
}

// ChartData aggregates one user's spending per category.
func (r *ExpenseRepo) ChartData(ctx context.Context, userID int64) ([]CategoryTotal, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT category, COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE user_id = $1
		GROUP BY category
		ORDER BY category
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("chart data: %w", err)
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan chart row: %w", err)
		}
		totals = append(totals, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chart rows: %w", err)
	}
	return totals, nil
}

// Summary computes count, total, average and per-category breakdown, scoped
// to one user when userID is set.
func (r *ExpenseRepo) Summary(ctx context.Context, userID *int64) (*ExpenseSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	whereSQL, args := buildExpenseFilters(ExpenseFilters{UserID: userID})

	kpiQuery := fmt.Sprintf(`
		SELECT COUNT(*), COALESCE(SUM(amount), 0), COALESCE(AVG(amount), 0)
		FROM expenses
		%s
	`, whereSQL)
	var summary ExpenseSummary
	row := r.pool.QueryRow(ctx, kpiQuery, args...)
	if err := row.Scan(&summary.TotalExpenses, &summary.TotalAmount, &summary.AverageAmount); err != nil {
		return nil, fmt.Errorf("summary kpis: %w", err)
	}

	categoryQuery := fmt.Sprintf(`
		SELECT category, COUNT(*), COALESCE(SUM(amount), 0)
		FROM expenses
		%s
		GROUP BY category
		ORDER BY category
	`, whereSQL)
	rows, err := r.pool.Query(ctx, categoryQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("summary categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cs CategorySummary
		if err := rows.Scan(&cs.Category, &cs.Count, &cs.Total); err != nil {
			return nil, fmt.Errorf("scan category summary: %w", err)
		}
		summary.Categories = append(summary.Categories, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category summaries: %w", err)
	}

	return &summary, nil
}

func buildExpenseFilters(filters ExpenseFilters) (string, []any) {
	clauses := []string{"WHERE 1=1"}
	args := []any{}
	index := 1

	if filters.UserID != nil {
		clauses = append(clauses, fmt.Sprintf("AND user_id = $%d", index))
		args = append(args, *filters.UserID)
		index++
	}

	if filters.Category != "" {
		clauses = append(clauses, fmt.Sprintf("AND category = $%d", index))
		args = append(args, filters.Category)
		index++
	}

	if filters.DateFrom != nil {
		clauses = append(clauses, fmt.Sprintf("AND date >= $%d", index))
		args = append(args, *filters.DateFrom)
		index++
	}

	if filters.DateTo != nil {
		clauses = append(clauses, fmt.Sprintf("AND date < $%d", index))
		args = append(args, *filters.DateTo)
		index++
	}

	return strings.Join(clauses, "\n"), args
}
