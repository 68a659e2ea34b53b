package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/jrsteele09/fintrack-client/internal/errors"
)

// Error is a non-2xx API response
type Error struct {
	StatusCode  int
	Message     string
	FieldErrors map[string][]string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
	if len(e.FieldErrors) == 0 {
		return msg
	}

	fields := make([]string, 0, len(e.FieldErrors))
	for f := range e.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e.FieldErrors[f], ", "))
	}
	return msg + " (" + strings.Join(parts, "; ") + ")"
}

// Is maps well-known statuses onto the shared sentinels
func (e *Error) Is(target error) bool {
	switch target {
	case errors.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case errors.ErrEmailTaken:
		return e.StatusCode == http.StatusConflict
	case errors.ErrValidation:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not an *Error
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type errorBody struct {
	Message string                     `json:"message"`
	Error   string                     `json:"error"`
	Errors  map[string]json.RawMessage `json:"errors"`
	Details []struct {
		Path    []any  `json:"path"`
		Message string `json:"message"`
	} `json:"details"`
}

// parseError reads the {message|error, errors, details} body of a failed response
func parseError(resp *http.Response) *Error {
	apiErr := &Error{StatusCode: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		apiErr.Message = strings.TrimSpace(string(data))
	} else {
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
		apiErr.FieldErrors = fieldErrors(body)
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// fieldErrors accepts both {"field": "msg"} and {"field": ["msg", ...]}, plus
// zod-style details with a path.
func fieldErrors(body errorBody) map[string][]string {
	if len(body.Errors) == 0 && len(body.Details) == 0 {
		return nil
	}

	out := make(map[string][]string)
	for field, raw := range body.Errors {
		var many []string
		if err := json.Unmarshal(raw, &many); err == nil {
			out[field] = append(out[field], many...)
			continue
		}
		var one string
		if err := json.Unmarshal(raw, &one); err == nil {
			out[field] = append(out[field], one)
		}
	}
	for _, d := range body.Details {
		field := "_"
		if len(d.Path) > 0 {
			field = fmt.Sprint(d.Path[len(d.Path)-1])
		}
		out[field] = append(out[field], d.Message)
	}
	return out
}
