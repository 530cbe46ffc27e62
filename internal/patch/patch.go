// Package patch turns loosely typed request fields into a validated column
// update map for partial updates.
package patch

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/apperr"
	"github.com/gofiber/fiber/v2"
)

type Kind int

const (
	// String is a required text column; it cannot be cleared.
	String Kind = iota
	// OptionalString stores NULL when the value is empty.
	OptionalString
	Int
	Bool
	// Date accepts YYYY-MM-DD or RFC3339 and stores NULL when empty.
	Date
)

type Field struct {
	Column   string
	Kind     Kind
	MaxLen   int
	Min, Max *int
	// Normalize may rewrite or reject a non-empty string value.
	Normalize func(string) (string, error)
}

// Schema maps request field names to their column definitions. Fields not in
// the schema are ignored.
type Schema map[string]Field

// Set is a validated column -> value map ready for gorm Updates.
type Set map[string]interface{}

func (s Set) Has(column string) bool {
	_, ok := s[column]
	return ok
}

func IntRange(lo, hi int) (*int, *int) {
	return &lo, &hi
}

func (s Schema) Parse(raw map[string]string) (Set, error) {
	out := make(Set)
	for name, value := range raw {
		f, ok := s[name]
		if !ok {
			continue
		}
		v, err := f.parse(name, strings.TrimSpace(value))
		if err != nil {
			return nil, err
		}
		out[f.Column] = v
	}
	return out, nil
}

func (f Field) parse(name, value string) (interface{}, error) {
	switch f.Kind {
	case String, OptionalString:
		if value == "" {
			if f.Kind == String {
				return nil, apperr.Invalid(name, "cannot be empty")
			}
			return nil, nil
		}
		if f.MaxLen > 0 && len(value) > f.MaxLen {
			return nil, apperr.Invalid(name, "must be at most %d characters", f.MaxLen)
		}
		if f.Normalize != nil {
			v, err := f.Normalize(value)
			if err != nil {
				return nil, apperr.Invalid(name, "%s", err.Error())
			}
			return v, nil
		}
		return value, nil

	case Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, apperr.Invalid(name, "must be a whole number")
		}
		if (f.Min != nil && n < *f.Min) || (f.Max != nil && n > *f.Max) {
			return nil, apperr.Invalid(name, "must be between %d and %d", deref(f.Min), deref(f.Max))
		}
		return n, nil

	case Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, apperr.Invalid(name, "must be true or false")
		}
		return b, nil

	case Date:
		if value == "" {
			return nil, nil
		}
		t, err := ParseDate(value)
		if err != nil {
			return nil, apperr.Invalid(name, "must be a date (YYYY-MM-DD)")
		}
		return t, nil
	}
	return nil, fmt.Errorf("patch: unknown kind %d for %s", f.Kind, name)
}

func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// Values reads the raw request fields from a multipart/urlencoded form or a
// JSON object body. JSON scalars are converted to their string form; null
// becomes "".
func Values(c *fiber.Ctx) (map[string]string, error) {
	out := make(map[string]string)

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		var body map[string]interface{}
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return nil, apperr.Invalid("", "invalid JSON body")
		}
		for k, v := range body {
			switch t := v.(type) {
			case nil:
				out[k] = ""
			case string:
				out[k] = t
			case bool:
				out[k] = strconv.FormatBool(t)
			case float64:
				out[k] = strconv.FormatFloat(t, 'f', -1, 64)
			default:
				return nil, apperr.Invalid(k, "unsupported value")
			}
		}
		return out, nil
	}

	if form, err := c.MultipartForm(); err == nil {
		for k, vs := range form.Value {
			if len(vs) > 0 {
				out[k] = vs[0]
			}
		}
		return out, nil
	}

	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		out[string(k)] = string(v)
	})
	return out, nil
}

// String returns the column's text or "" when absent or NULL.
func (s Set) String(column string) string {
	v, _ := s[column].(string)
	return v
}

// StringPtr returns nil when the column is absent or NULL.
func (s Set) StringPtr(column string) *string {
	if v, ok := s[column].(string); ok {
		return &v
	}
	return nil
}

func (s Set) Int(column string, fallback int) int {
	if v, ok := s[column].(int); ok {
		return v
	}
	return fallback
}

func (s Set) Bool(column string, fallback bool) bool {
	if v, ok := s[column].(bool); ok {
		return v
	}
	return fallback
}

func (s Set) Time(column string) *time.Time {
	if v, ok := s[column].(time.Time); ok {
		return &v
	}
	return nil
}

// Require fails on the first listed field that is missing from raw or blank.
func Require(raw map[string]string, names ...string) error {
	for _, name := range names {
		if strings.TrimSpace(raw[name]) == "" {
			return apperr.Invalid(name, "is required")
		}
	}
	return nil
}
