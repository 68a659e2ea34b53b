package categories

import (
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/fintrack-client/validation"
)

type Type string

const (
	Income  Type = "INCOME"
	Expense Type = "EXPENSE"
)

// DefaultColor is used by the CLI when no color is given
const DefaultColor = "#6B7280"

func (t Type) Valid() bool {
	return t == Income || t == Expense
}

func ParseType(s string) (Type, bool) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}

type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Type      Type      `json:"type"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// List is the GET /categories response body
type List struct {
	Categories []Category `json:"categories"`
}

type CreateRequest struct {
	Name  string `json:"name" validate:"notblank"`
	Type  Type   `json:"type" validate:"oneof=INCOME EXPENSE"`
	Color string `json:"color" validate:"hexcolor,len=7"`
}

var requestMessages = validation.Messages{
	"id":    "Category id is required",
	"name":  "Name is required",
	"type":  "Type must be INCOME or EXPENSE",
	"color": "Color must be a hex value like #1A2B3C",
}

func (r CreateRequest) Validate() error {
	return validation.Struct(r, requestMessages)
}

// UpdateRequest carries only the fields being changed. ID is sent in the path.
type UpdateRequest struct {
	ID    string `json:"-" uri:"id" validate:"notblank"`
	Name  string `json:"name,omitempty"`
	Type  Type   `json:"type,omitempty" validate:"omitempty,oneof=INCOME EXPENSE"`
	Color string `json:"color,omitempty" validate:"omitempty,hexcolor,len=7"`
}

func (r UpdateRequest) Validate() error {
	return validation.Struct(r, requestMessages)
}

func (r UpdateRequest) Apply(c *Category) {
	if r.Name != "" {
		c.Name = r.Name
	}
	if r.Type != "" {
		c.Type = r.Type
	}
	if r.Color != "" {
		c.Color = r.Color
	}
}

// TypeQuery builds the ?type= filter, empty for all categories
func TypeQuery(t Type) url.Values {
	q := url.Values{}
	if t != "" {
		q.Set("type", string(t))
	}
	return q
}

// Stats aggregates the transactions filed under one category
type Stats struct {
	CategoryID       string  `json:"categoryId"`
	CategoryName     string  `json:"categoryName"`
	TotalAmount      float64 `json:"totalAmount"`
	TransactionCount int     `json:"transactionCount"`
}

func (s *Stats) Add(amount float64) {
	s.TotalAmount += amount
	s.TransactionCount++
}
