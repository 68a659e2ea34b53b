package transactions

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/fintrack-client/validation"
)

type Type string

const (
	Credit Type = "CREDIT"
	Debit  Type = "DEBIT"
)

// DateLayout is the calendar date format the API accepts for dates and filters
const DateLayout = "2006-01-02"

func (t Type) Valid() bool {
	return t == Credit || t == Debit
}

// ParseType accepts the API names case-insensitively
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}

type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Type        Type      `json:"type"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Signed returns the amount as it affects the balance
func (t Transaction) Signed() float64 {
	if t.Type == Debit {
		return -t.Amount
	}
	return t.Amount
}

type CreateRequest struct {
	Type        Type    `json:"type" validate:"oneof=CREDIT DEBIT"`
	Amount      float64 `json:"amount" validate:"gte=0.01"`
	Category    string  `json:"category" validate:"notblank"`
	Description string  `json:"description,omitempty"`
	Date        string  `json:"date" validate:"notblank,datetime=2006-01-02"`
}

var requestMessages = validation.Messages{
	"id":            "Transaction id is required",
	"type":          "Type must be CREDIT or DEBIT",
	"amount":        "Amount must be greater than 0",
	"category":      "Category is required",
	"date.notblank": "Date is required",
	"date":          "Date must be in YYYY-MM-DD format",
}

func (r CreateRequest) Validate() error {
	return validation.Struct(r, requestMessages)
}

// UpdateRequest carries only the fields being changed. ID is sent in the path.
type UpdateRequest struct {
	ID          string   `json:"-" uri:"id" validate:"notblank"`
	Type        Type     `json:"type,omitempty" validate:"omitempty,oneof=CREDIT DEBIT"`
	Amount      *float64 `json:"amount,omitempty" validate:"omitempty,gte=0.01"`
	Category    string   `json:"category,omitempty"`
	Description *string  `json:"description,omitempty"`
	Date        string   `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func (r UpdateRequest) Validate() error {
	return validation.Struct(r, requestMessages)
}

// Apply copies the set fields of r onto t
func (r UpdateRequest) Apply(t *Transaction) error {
	if r.Type != "" {
		t.Type = r.Type
	}
	if r.Amount != nil {
		t.Amount = *r.Amount
	}
	if r.Category != "" {
		t.Category = r.Category
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	if r.Date != "" {
		d, err := time.Parse(DateLayout, r.Date)
		if err != nil {
			return err
		}
		t.Date = d
	}
	return nil
}

// Period bounds a summary or stats query. Empty bounds are open.
type Period struct {
	StartDate string
	EndDate   string
}

func (p Period) Query() url.Values {
	q := url.Values{}
	if p.StartDate != "" {
		q.Set("startDate", p.StartDate)
	}
	if p.EndDate != "" {
		q.Set("endDate", p.EndDate)
	}
	return q
}

// Contains reports whether d falls on or between the bounds
func (p Period) Contains(d time.Time) bool {
	day := d.UTC().Format(DateLayout)
	if p.StartDate != "" && day < p.StartDate {
		return false
	}
	if p.EndDate != "" && day > p.EndDate {
		return false
	}
	return true
}

// ListParams filters and paginates GET /transactions. Zero values are omitted.
type ListParams struct {
	Page     int
	Limit    int
	Type     Type
	Category string
	Period
}

func (p ListParams) Query() url.Values {
	q := p.Period.Query()
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Type != "" {
		q.Set("type", string(p.Type))
	}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	return q
}

// Matches reports whether t passes the type, category and date filters
func (p ListParams) Matches(t Transaction) bool {
	if p.Type != "" && t.Type != p.Type {
		return false
	}
	if p.Category != "" && !strings.EqualFold(t.Category, p.Category) {
		return false
	}
	return p.Period.Contains(t.Date)
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type Page struct {
	Transactions []Transaction `json:"transactions"`
	Pagination   Pagination    `json:"pagination"`
}

// Paginate slices all into the requested page. Page and limit default to 1 and 10.
func Paginate(all []Transaction, page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	total := len(all)
	start := total
	if page-1 <= total/limit {
		start = min((page-1)*limit, total)
	}
	end := start + min(limit, total-start)
	pages := total / limit
	if total%limit != 0 {
		pages++
	}

	return Page{
		Transactions: append([]Transaction{}, all[start:end]...),
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: pages,
		},
	}
}

type Summary struct {
	TotalIncome  float64       `json:"totalIncome"`
	TotalExpense float64       `json:"totalExpense"`
	Balance      float64       `json:"balance"`
	Transactions []Transaction `json:"transactions"`
}

// Summarize totals credits as income and debits as expense
func Summarize(txs []Transaction) Summary {
	s := Summary{Transactions: append([]Transaction{}, txs...)}
	for _, t := range txs {
		switch t.Type {
		case Credit:
			s.TotalIncome += t.Amount
		case Debit:
			s.TotalExpense += t.Amount
		}
	}
	s.Balance = s.TotalIncome - s.TotalExpense
	return s
}
