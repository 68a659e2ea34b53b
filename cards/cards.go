package cards

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/fintrack-client/validation"
)

type Type string

const (
	Visa       Type = "VISA"
	Mastercard Type = "MASTERCARD"
	Maestro    Type = "MAESTRO"
	RuPay      Type = "RUPAY"
)

// Types lists the card networks in display order
var Types = []Type{Visa, Mastercard, Maestro, RuPay}

func (t Type) Valid() bool {
	_, ok := borders[t]
	return ok
}

func ParseType(s string) (Type, bool) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"

	// DefaultGradient is used for banks without a palette
	DefaultGradient = "from-gray-500 via-gray-400 to-gray-300"
)

var gradients = map[string]string{
	"State Bank of India":   "from-blue-700 via-blue-500 to-blue-300",
	"Bank of Baroda":        "from-orange-700 via-orange-500 to-orange-300",
	"Bank of India":         "from-green-700 via-green-500 to-green-300",
	"Canara Bank":           "from-yellow-700 via-yellow-500 to-yellow-300",
	"Union Bank of India":   "from-indigo-700 via-indigo-500 to-indigo-300",
	"Bank of Maharashtra":   "from-red-700 via-red-500 to-red-300",
	"Central Bank of India": "from-purple-700 via-purple-500 to-purple-300",
	"Indian Bank":           "from-pink-700 via-pink-500 to-pink-300",
	"Indian Overseas Bank":  "from-teal-700 via-teal-500 to-teal-300",
	"HDFC Bank":             "from-red-600 via-red-400 to-red-200",
	"ICICI Bank":            "from-orange-600 via-orange-400 to-orange-200",
	"Axis Bank":             "from-green-600 via-green-400 to-green-200",
	"Kotak Mahindra Bank":   "from-yellow-600 via-yellow-400 to-yellow-200",
	"IndusInd Bank":         "from-purple-600 via-purple-400 to-purple-200",
	"Federal Bank":          "from-blue-600 via-blue-400 to-blue-200",
	"IDFC FIRST Bank":       "from-pink-600 via-pink-400 to-pink-200",
	"YES Bank":              "from-teal-600 via-teal-400 to-teal-200",
	"IDBI Bank":             "from-indigo-600 via-indigo-400 to-indigo-200",
}

var borders = map[Type]string{
	Visa:       "border-blue-400",
	Mastercard: "border-orange-500",
	Maestro:    "border-purple-500",
	RuPay:      "border-green-500",
}

// GradientFor returns the palette of a known bank, or DefaultGradient
func GradientFor(bank string) string {
	if g, ok := gradients[bank]; ok {
		return g
	}
	return DefaultGradient
}

// BorderFor returns the accent of a card network, or "" for unknown types
func BorderFor(t Type) string {
	return borders[t]
}

// KnownBank reports whether bank has its own palette
func KnownBank(bank string) bool {
	_, ok := gradients[bank]
	return ok
}

type Card struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Holder    string    `json:"holder"`
	Number    string    `json:"number"`
	Expiry    string    `json:"expiry"`
	Balance   float64   `json:"balance"`
	Bank      string    `json:"bank"`
	Gradient  string    `json:"gradient,omitempty"`
	Border    string    `json:"border,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (c Card) Active() bool {
	return c.Status == StatusActive
}

// Masked hides all but the last four digits
func (c Card) Masked() string {
	digits := digitsOnly(c.Number)
	if len(digits) < 4 {
		return c.Number
	}
	return "**** **** **** " + digits[len(digits)-4:]
}

// Payload is the POST /cards body
type Payload struct {
	Type     Type    `json:"type" validate:"required,oneof=VISA MASTERCARD MAESTRO RUPAY"`
	Holder   string  `json:"holder" validate:"notblank,letters"`
	Number   string  `json:"number" validate:"notblank,cardnumber"`
	Expiry   string  `json:"expiry" validate:"required,mmyy,mmyy_month,notexpired"`
	Balance  float64 `json:"balance" validate:"gte=0"`
	Bank     string  `json:"bank" validate:"notblank,letters"`
	Gradient string  `json:"gradient,omitempty"`
	Border   string  `json:"border,omitempty"`
	Status   string  `json:"status,omitempty" validate:"omitempty,oneof=Active Inactive"`
}

// NewPayload normalizes form input the way the card form does: the number is
// grouped 4-4-4-4, the expiry gets its slash, the card starts Active and the
// palette is derived from bank and type.
func NewPayload(typ Type, holder, number, expiry string, balance float64, bank string) Payload {
	return Payload{
		Type:     typ,
		Holder:   strings.TrimSpace(holder),
		Number:   FormatNumber(number),
		Expiry:   FormatExpiry(expiry),
		Balance:  balance,
		Bank:     strings.TrimSpace(bank),
		Gradient: GradientFor(strings.TrimSpace(bank)),
		Border:   BorderFor(typ),
		Status:   StatusActive,
	}
}

// Validate checks the payload against the card form rules. now decides whether the expiry is in the past.
func (p Payload) Validate(now time.Time) error {
	return validation.Check(validation.WithNow(context.Background(), now), p, payloadMessages).Err()
}

// UpdatePayload is the PUT /cards/{id} body. Only set fields change.
type UpdatePayload struct {
	Type     Type     `json:"type,omitempty" validate:"omitempty,oneof=VISA MASTERCARD MAESTRO RUPAY"`
	Holder   string   `json:"holder,omitempty" validate:"omitempty,letters"`
	Number   string   `json:"number,omitempty" validate:"omitempty,cardnumber"`
	Expiry   string   `json:"expiry,omitempty" validate:"omitempty,mmyy,mmyy_month,notexpired"`
	Balance  *float64 `json:"balance,omitempty" validate:"omitempty,gte=0"`
	Bank     string   `json:"bank,omitempty" validate:"omitempty,letters"`
	Gradient string   `json:"gradient,omitempty"`
	Border   string   `json:"border,omitempty"`
	Status   string   `json:"status,omitempty" validate:"omitempty,oneof=Active Inactive"`
}

func (p UpdatePayload) Validate(now time.Time) error {
	return validation.Check(validation.WithNow(context.Background(), now), p, payloadMessages).Err()
}

// Apply copies the set fields onto c. A new bank or type re-derives the palette
// unless one was given explicitly.
func (p UpdatePayload) Apply(c *Card) {
	if p.Type != "" {
		c.Type = p.Type
		c.Border = BorderFor(p.Type)
	}
	if p.Holder != "" {
		c.Holder = p.Holder
	}
	if p.Number != "" {
		c.Number = FormatNumber(p.Number)
	}
	if p.Expiry != "" {
		c.Expiry = FormatExpiry(p.Expiry)
	}
	if p.Balance != nil {
		c.Balance = *p.Balance
	}
	if p.Bank != "" {
		c.Bank = p.Bank
		c.Gradient = GradientFor(p.Bank)
	}
	if p.Gradient != "" {
		c.Gradient = p.Gradient
	}
	if p.Border != "" {
		c.Border = p.Border
	}
	if p.Status != "" {
		c.Status = p.Status
	}
}

var payloadMessages = validation.Messages{
	"bank.notblank":     "Bank name is required.",
	"bank":              "Bank name must be at least 3 letters and only contain alphabets.",
	"type.required":     "Please select a card type.",
	"type":              "Card type must be one of VISA, MASTERCARD, MAESTRO, RUPAY.",
	"holder.notblank":   "Card holder name is required.",
	"holder":            "Name must be at least 3 letters and only contain alphabets.",
	"number.notblank":   "Card number is required.",
	"number":            "Card number must be 16 digits.",
	"expiry.required":   "Expiry date is required.",
	"expiry.mmyy":       "Expiry must be in MM/YY format.",
	"expiry.mmyy_month": "Month must be between 01 and 12.",
	"expiry.notexpired": "Expiry date cannot be in the past.",
	"balance":           "Balance must be a positive number.",
	"status":            "Status must be Active or Inactive.",
}

var (
	lettersPattern = regexp.MustCompile(`^[a-zA-Z ]{3,}$`)
	expiryPattern  = regexp.MustCompile(`^\d{2}/\d{2}$`)
)

func init() {
	validation.MustRegister("letters", func(_ context.Context, fl validator.FieldLevel) bool {
		return lettersPattern.MatchString(fl.Field().String())
	})
	validation.MustRegister("cardnumber", func(_ context.Context, fl validator.FieldLevel) bool {
		digits := strings.ReplaceAll(fl.Field().String(), " ", "")
		return len(digits) == 16 && digitsOnly(digits) == digits
	})
	validation.MustRegister("mmyy", func(_ context.Context, fl validator.FieldLevel) bool {
		return expiryPattern.MatchString(fl.Field().String())
	})
	validation.MustRegister("mmyy_month", func(_ context.Context, fl validator.FieldLevel) bool {
		mm, _ := strconv.Atoi(fl.Field().String()[:2])
		return mm >= 1 && mm <= 12
	})
	validation.MustRegister("notexpired", func(ctx context.Context, fl validator.FieldLevel) bool {
		return !expired(fl.Field().String(), validation.Now(ctx))
	})
}

// expired reports whether an MM/YY expiry lies before the month of now
func expired(expiry string, now time.Time) bool {
	mm, _ := strconv.Atoi(expiry[:2])
	yy, _ := strconv.Atoi(expiry[3:])
	expires := time.Date(2000+yy, time.Month(mm), 1, 0, 0, 0, 0, now.Location())
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return expires.Before(thisMonth)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatNumber keeps the first 16 digits of s grouped as XXXX XXXX XXXX XXXX
func FormatNumber(s string) string {
	digits := digitsOnly(s)
	if len(digits) > 16 {
		digits = digits[:16]
	}
	groups := make([]string, 0, 4)
	for len(digits) > 4 {
		groups = append(groups, digits[:4])
		digits = digits[4:]
	}
	if digits != "" {
		groups = append(groups, digits)
	}
	return strings.Join(groups, " ")
}

// FormatExpiry keeps the first four digits of s and inserts the MM/YY slash
func FormatExpiry(s string) string {
	digits := digitsOnly(s)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) > 2 {
		return fmt.Sprintf("%s/%s", digits[:2], digits[2:])
	}
	return digits
}
