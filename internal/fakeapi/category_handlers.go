package fakeapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jrsteele09/fintrack-client/categories"
	"github.com/jrsteele09/fintrack-client/validation"
)

func (s *Server) createCategory(c *gin.Context) {
	var req categories.CreateRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		abortValidation(c, err)
		return
	}

	user := currentUser(c)
	now := s.now().UTC()
	cat := categories.Category{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Name:      strings.TrimSpace(req.Name),
		Type:      req.Type,
		Color:     req.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.ledger.categories.insert(user.ID, cat.ID, cat)
	c.JSON(http.StatusCreated, cat)
}

func (s *Server) listCategories(c *gin.Context) {
	var filter categories.Type
	if raw := c.Query("type"); raw != "" {
		typ, ok := categories.ParseType(raw)
		if !ok {
			abortValidation(c, validation.Errors{"type": "Type must be INCOME or EXPENSE"})
			return
		}
		filter = typ
	}

	out := make([]categories.Category, 0)
	for _, cat := range s.ledger.categories.list(currentUser(c).ID) {
		if filter == "" || cat.Type == filter {
			out = append(out, cat)
		}
	}
	c.JSON(http.StatusOK, categories.List{Categories: out})
}

func (s *Server) getCategory(c *gin.Context) {
	cat, ok := s.ledger.categories.get(currentUser(c).ID, c.Param("id"))
	if !ok {
		abortError(c, http.StatusNotFound, "Category not found")
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (s *Server) updateCategory(c *gin.Context) {
	var req categories.UpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ID = c.Param("id")
	if err := req.Validate(); err != nil {
		abortValidation(c, err)
		return
	}

	updated, found, _ := s.ledger.categories.update(currentUser(c).ID, req.ID, func(cat *categories.Category) error {
		req.Apply(cat)
		cat.UpdatedAt = s.now().UTC()
		return nil
	})
	if !found {
		abortError(c, http.StatusNotFound, "Category not found")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteCategory(c *gin.Context) {
	if !s.ledger.categories.remove(currentUser(c).ID, c.Param("id")) {
		abortError(c, http.StatusNotFound, "Category not found")
		return
	}
	message(c, http.StatusOK, "Category deleted successfully")
}

// categoryStats totals the transactions filed under the category's name
func (s *Server) categoryStats(c *gin.Context) {
	userID := currentUser(c).ID
	cat, ok := s.ledger.categories.get(userID, c.Param("id"))
	if !ok {
		abortError(c, http.StatusNotFound, "Category not found")
		return
	}
	period, ok := periodParams(c)
	if !ok {
		return
	}

	stats := categories.Stats{CategoryID: cat.ID, CategoryName: cat.Name}
	for _, t := range s.ledger.transactions.list(userID) {
		if strings.EqualFold(t.Category, cat.Name) && period.Contains(t.Date) {
			stats.Add(t.Amount)
		}
	}
	c.JSON(http.StatusOK, stats)
}
