package fakeapi

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jrsteele09/fintrack-client/transactions"
	"github.com/jrsteele09/fintrack-client/validation"
)

func (s *Server) createTransaction(c *gin.Context) {
	var req transactions.CreateRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		abortValidation(c, err)
		return
	}
	date, _ := time.Parse(transactions.DateLayout, req.Date)

	user := currentUser(c)
	now := s.now().UTC()
	t := transactions.Transaction{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		Type:        req.Type,
		Amount:      req.Amount,
		Category:    strings.TrimSpace(req.Category),
		Description: req.Description,
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.ledger.transactions.insert(user.ID, t.ID, t)
	c.JSON(http.StatusCreated, gin.H{"transaction": t})
}

// listTransactions filters, sorts newest first and paginates
func (s *Server) listTransactions(c *gin.Context) {
	params, ok := listParams(c)
	if !ok {
		return
	}

	matched := make([]transactions.Transaction, 0)
	for _, t := range s.ledger.transactions.list(currentUser(c).ID) {
		if params.Matches(t) {
			matched = append(matched, t)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date.After(matched[j].Date)
	})
	c.JSON(http.StatusOK, transactions.Paginate(matched, params.Page, params.Limit))
}

func (s *Server) transactionSummary(c *gin.Context) {
	period, ok := periodParams(c)
	if !ok {
		return
	}

	inPeriod := make([]transactions.Transaction, 0)
	for _, t := range s.ledger.transactions.list(currentUser(c).ID) {
		if period.Contains(t.Date) {
			inPeriod = append(inPeriod, t)
		}
	}
	c.JSON(http.StatusOK, transactions.Summarize(inPeriod))
}

func (s *Server) getTransaction(c *gin.Context) {
	t, ok := s.ledger.transactions.get(currentUser(c).ID, c.Param("id"))
	if !ok {
		abortError(c, http.StatusNotFound, "Transaction not found")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) updateTransaction(c *gin.Context) {
	var req transactions.UpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ID = c.Param("id")
	if err := req.Validate(); err != nil {
		abortValidation(c, err)
		return
	}

	updated, found, err := s.ledger.transactions.update(currentUser(c).ID, req.ID, func(t *transactions.Transaction) error {
		if err := req.Apply(t); err != nil {
			return err
		}
		t.UpdatedAt = s.now().UTC()
		return nil
	})
	switch {
	case !found:
		abortError(c, http.StatusNotFound, "Transaction not found")
	case err != nil:
		abortError(c, http.StatusBadRequest, err.Error())
	default:
		c.JSON(http.StatusOK, gin.H{"transaction": updated})
	}
}

func (s *Server) deleteTransaction(c *gin.Context) {
	if !s.ledger.transactions.remove(currentUser(c).ID, c.Param("id")) {
		abortError(c, http.StatusNotFound, "Transaction not found")
		return
	}
	message(c, http.StatusOK, "Transaction deleted successfully")
}

func listParams(c *gin.Context) (transactions.ListParams, bool) {
	period, ok := periodParams(c)
	if !ok {
		return transactions.ListParams{}, false
	}
	params := transactions.ListParams{
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
		Category: c.Query("category"),
		Period:   period,
	}
	if raw := c.Query("type"); raw != "" {
		typ, valid := transactions.ParseType(raw)
		if !valid {
			abortValidation(c, validation.Errors{"type": "Type must be CREDIT or DEBIT"})
			return params, false
		}
		params.Type = typ
	}
	return params, true
}

func periodParams(c *gin.Context) (transactions.Period, bool) {
	p := transactions.Period{StartDate: c.Query("startDate"), EndDate: c.Query("endDate")}
	errs := validation.Errors{}
	for field, v := range map[string]string{"startDate": p.StartDate, "endDate": p.EndDate} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(transactions.DateLayout, v); err != nil {
			errs.Add(field, "Date must be in YYYY-MM-DD format")
		}
	}
	if err := errs.Err(); err != nil {
		abortValidation(c, err)
		return p, false
	}
	return p, true
}
