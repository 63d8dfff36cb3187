package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/faham03/Gestion-de-budget/internal/auth"
	dom "github.com/faham03/Gestion-de-budget/internal/domain"
	"github.com/faham03/Gestion-de-budget/internal/dto"
	"github.com/faham03/Gestion-de-budget/internal/export"
	"github.com/faham03/Gestion-de-budget/internal/service"

	"github.com/gin-gonic/gin"
)

// ExpenseHandler serves the ledger: list/aggregate, mutations and export.
type ExpenseHandler struct {
	svc      *service.ExpenseService
	profiles *service.ProfileService
}

func NewExpenseHandler(svc *service.ExpenseService, profiles *service.ProfileService) *ExpenseHandler {
	return &ExpenseHandler{svc: svc, profiles: profiles}
}

// List godoc
// @Summary      List expenses with per-category totals
// @Tags         expenses
// @Produce      json
// @Security     CookieAuth
// @Param        month  query     string  false  "Month filter (YYYY-MM)"
// @Success      200    {object}  dto.LedgerResponse
// @Failure      400    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	month := c.Query("month")
	list, err := h.svc.List(c.Request.Context(), userID, month)
	if err != nil {
		respondError(c, err)
		return
	}
	totals := make(map[string]string)
	for category, sum := range service.SummarizeByCategory(list) {
		totals[category] = sum.StringFixed(2)
	}
	c.JSON(http.StatusOK, dto.LedgerResponse{
		Items:            expensesToResponses(list),
		TotalsByCategory: totals,
		Total:            service.Total(list).StringFixed(2),
		Month:            month,
	})
}

// Create godoc
// @Summary      Create an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.CreateExpenseRequest  true  "Expense body"
// @Success      201   {object}  dto.ExpenseResponse
// @Failure      400   {object}  map[string]string
// @Router       /expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	var req dto.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e, err := h.svc.Create(c.Request.Context(), userID, req.Description, req.Amount, req.Category, req.Date.Ptr())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, expenseToResponse(e))
}

// CreateBatch godoc
// @Summary      Create many expenses in one call
// @Description  Parallel arrays of equal length; rows with missing or invalid
// @Description  fields are skipped, the rest are created. No rollback across rows.
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.BatchCreateExpensesRequest  true  "Rows"
// @Success      200   {object}  dto.BatchCreateExpensesResponse
// @Failure      400   {object}  map[string]string
// @Router       /expenses/batch [post]
func (h *ExpenseHandler) CreateBatch(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	var req dto.BatchCreateExpensesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n := len(req.Descriptions)
	if len(req.Amounts) != n || len(req.Categories) != n || len(req.Dates) != n {
		c.JSON(http.StatusBadRequest, gin.H{"error": "descriptions, amounts, categories and dates must have equal length"})
		return
	}
	rows := make([]service.BatchRow, n)
	for i := 0; i < n; i++ {
		rows[i] = service.BatchRow{
			Description: req.Descriptions[i],
			Amount:      req.Amounts[i],
			Category:    req.Categories[i],
			Date:        req.Dates[i],
		}
	}
	created, outcomes, err := h.svc.CreateMany(c.Request.Context(), userID, rows)
	if err != nil {
		respondError(c, err)
		return
	}
	results := make([]dto.BatchRowResult, len(outcomes))
	for i, o := range outcomes {
		status := "skipped"
		if o.Created {
			status = "created"
		}
		results[i] = dto.BatchRowResult{Row: o.Row, Status: status, ID: o.ID, Reason: o.Reason}
	}
	c.JSON(http.StatusOK, dto.BatchCreateExpensesResponse{Created: created, Results: results})
}

// GetByID godoc
// @Summary      Get an expense by ID
// @Tags         expenses
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Expense ID"
// @Success      200  {object}  dto.ExpenseResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /expenses/{id} [get]
func (h *ExpenseHandler) GetByID(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	e, err := h.svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenseToResponse(e))
}

// Update godoc
// @Summary      Update an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      int  true  "Expense ID"
// @Param        body  body      dto.UpdateExpenseRequest  true  "Partial update"
// @Success      200   {object}  dto.ExpenseResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /expenses/{id} [patch]
func (h *ExpenseHandler) Update(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	patch := service.UpdatePatch{
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
	}
	if req.Date != nil {
		patch.Date = req.Date.Ptr()
	}
	e, err := h.svc.Update(c.Request.Context(), userID, id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenseToResponse(e))
}

// Delete godoc
// @Summary      Delete an expense
// @Tags         expenses
// @Security     CookieAuth
// @Param        id   path  int  true  "Expense ID"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Export godoc
// @Summary      Export expenses as CSV
// @Tags         expenses
// @Produce      text/csv
// @Security     CookieAuth
// @Param        month  query  string  false  "Month filter (YYYY-MM)"
// @Success      200    {string}  string  "CSV payload"
// @Failure      400    {object}  map[string]string
// @Router       /expenses/export [get]
func (h *ExpenseHandler) Export(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	month := c.Query("month")
	list, err := h.svc.List(c.Request.Context(), userID, month)
	if err != nil {
		respondError(c, err)
		return
	}
	profile, err := h.profiles.Ensure(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(month)+`"`)
	if err := export.WriteCSV(c.Writer, profile.Currency, list); err != nil {
		// Headers are already out; nothing sensible left to send.
		_ = c.Error(err)
	}
}

func respondError(c *gin.Context, err error) {
	if fe, ok := service.AsFieldError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fe.Message, "field": fe.Field})
		return
	}
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func expenseToResponse(e dom.Expense) dto.ExpenseResponse {
	return dto.ExpenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount.StringFixed(2),
		Category:    e.Category,
		Date:        e.Date.Format("2006-01-02"),
	}
}

func expensesToResponses(list []dom.Expense) []dto.ExpenseResponse {
	out := make([]dto.ExpenseResponse, len(list))
	for i := range list {
		out[i] = expenseToResponse(list[i])
	}
	return out
}
