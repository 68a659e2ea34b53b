package validation

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/fintrack-client/internal/errors"
)

// Errors maps a form field to its first failing message.
type Errors map[string]string

// Add records msg for field unless the field already failed.
func (e Errors) Add(field, msg string) {
	if _, exists := e[field]; exists {
		return
	}
	e[field] = msg
}

// Err returns nil when no field failed.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e Errors) Is(target error) bool {
	return target == errors.ErrValidation
}

// Field returns the message for field, or "" when it passed
func (e Errors) Field(field string) string {
	return e[field]
}

// Messages holds the text shown for a failed rule. A "field.tag" key wins
// over a bare "field" key.
type Messages map[string]string

func (m Messages) message(fe validator.FieldError) string {
	if msg, ok := m[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := m[fe.Field()]; ok {
		return msg
	}
	return fmt.Sprintf("%s failed the %s rule", fe.Field(), fe.Tag())
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	if err := v.RegisterValidation("notblank", notBlank); err != nil {
		panic(err)
	}
	return v
}

// fieldName names a field by its form, uri or json tag, in that order
func fieldName(f reflect.StructField) string {
	for _, key := range []string{"form", "uri", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// MustRegister adds a rule usable in validate tags. Call it from init.
func MustRegister(tag string, fn validator.FuncCtx) {
	if err := validate.RegisterValidationCtx(tag, fn); err != nil {
		panic(err)
	}
}

// Check runs the validate tags of s and collects the failures under their field names.
// s must be a struct or a pointer to one.
func Check(ctx context.Context, s any, msgs Messages) Errors {
	errs := Errors{}
	err := validate.StructCtx(ctx, s)
	if err == nil {
		return errs
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		panic(err)
	}
	for _, fe := range fieldErrs {
		errs.Add(fe.Field(), msgs.message(fe))
	}
	return errs
}

// Struct is Check for callers that only need the error.
func Struct(s any, msgs Messages) error {
	return Check(context.Background(), s, msgs).Err()
}

type nowKey struct{}

// WithNow fixes the time that date rules compare against
func WithNow(ctx context.Context, now time.Time) context.Context {
	return context.WithValue(ctx, nowKey{}, now)
}

// Now returns the time set by WithNow, or the wall clock
func Now(ctx context.Context) time.Time {
	if now, ok := ctx.Value(nowKey{}).(time.Time); ok {
		return now
	}
	return time.Now()
}
