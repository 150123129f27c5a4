package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"financeapp-server/internal/auth"
	"financeapp-server/internal/models"
	"financeapp-server/internal/repo"
	"financeapp-server/internal/services"
	"financeapp-server/internal/utils"
)

type ExpenseHandler struct {
	expenses *services.ExpenseService
}

type ExpenseCreateRequest struct {
	Description string  `json:"description" binding:"required,max=200"`
	Category    string  `json:"category" binding:"required,max=50"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Date        string  `json:"date" binding:"omitempty"`
}

func NewExpenseHandler(expenses *services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// Create records an expense owned by the caller. The user id always comes
// from the bound claims, never from the payload.
// POST /api/expenses
func (h *ExpenseHandler) Create(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	var req ExpenseCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			utils.RespondValidationError(c, "date must be RFC3339")
			return
		}
		date = parsed
	}

	expense := &models.Expense{
		UserID:      claims.UserID,
		Description: req.Description,
		Category:    req.Category,
		Amount:      req.Amount,
		Date:        date,
	}

	if err := h.expenses.Add(c.Request.Context(), expense); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondCreated(c, expense)
}

// List returns the caller's expenses, newest first, paginated.
// GET /api/expenses
func (h *ExpenseHandler) List(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	filters, err := parseExpenseFilters(c)
	if err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	items, total, err := h.expenses.List(c.Request.Context(), claims.UserID, filters)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if items == nil {
		items = []models.Expense{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data": items,
		"meta": utils.NewPagination(filters.Page, filters.PerPage, total),
	})
}

// GetByID returns one of the caller's expenses.
// GET /api/expenses/:id
func (h *ExpenseHandler) GetByID(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.RespondValidationError(c, "invalid expense id")
		return
	}

	expense, err := h.expenses.GetByID(c.Request.Context(), id, claims.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

// Delete removes one of the caller's expenses.
// DELETE /api/expenses/:id
func (h *ExpenseHandler) Delete(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.RespondValidationError(c, "invalid expense id")
		return
	}

	if err := h.expenses.Delete(c.Request.Context(), id, claims.UserID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Chart returns per-category totals for the caller's expenses.
// GET /api/expenses/chart
func (h *ExpenseHandler) Chart(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	data, err := h.expenses.ChartData(c.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if data == nil {
		data = []repo.CategoryTotal{}
	}
	c.JSON(http.StatusOK, data)
}

// Summary returns count, total, average and the per-category breakdown.
// GET /api/expenses/summary
func (h *ExpenseHandler) Summary(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	summary, err := h.expenses.Summary(c.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func requireClaims(c *gin.Context) (*auth.Claims, bool) {
	claims, ok := auth.Current(c)
	if !ok {
		utils.RespondError(c, utils.NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", "missing user", nil))
		return nil, false
	}
	return claims, true
}

func parseExpenseFilters(c *gin.Context) (repo.ExpenseFilters, error) {
	filters := repo.ExpenseFilters{}
	filters.Category = c.Query("category")
	filters.Page = parseIntDefault(c.Query("page"), 1)
	filters.PerPage = parseIntDefault(c.Query("per_page"), 20)

	if dateFromStr := c.Query("date_from"); dateFromStr != "" {
		parsed, err := time.Parse("2006-01-02", dateFromStr)
		if err != nil {
			return filters, err
		}
		filters.DateFrom = &parsed
	}

	if dateToStr := c.Query("date_to"); dateToStr != "" {
		parsed, err := time.Parse("2006-01-02", dateToStr)
		if err != nil {
			return filters, err
		}
		end := parsed.Add(24 * time.Hour)
		filters.DateTo = &end
	}

	return filters, nil
}

func parseIntDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
