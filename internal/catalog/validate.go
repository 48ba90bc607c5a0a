package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CreateRequest is the body of a product creation call. The validate tags are
// the whole rule set: a name of at least one character and a price above zero.
type CreateRequest struct {
	Name  string  `json:"name" validate:"min=1"`
	Price float64 `json:"price" validate:"gt=0"`
}

// createBody is the wire form of CreateRequest. Pointer fields tell an
// absent key apart from a zero value.
type createBody struct {
	Name  *string  `json:"name"`
	Price *float64 `json:"price"`
}

// request reports absent keys as missing and the rest through Validate, in
// field order.
func (b createBody) request() (CreateRequest, error) {
	var req CreateRequest
	if b.Name != nil {
		req.Name = *b.Name
	}
	if b.Price != nil {
		req.Price = *b.Price
	}

	failed := map[string]FieldError{}
	if err := req.Validate(); err != nil {
		var ve *ValidationError
		if !errors.As(err, &ve) {
			return CreateRequest{}, err
		}
		for _, f := range ve.Fields {
			failed[f.Loc[len(f.Loc)-1]] = f
		}
	}

	fields := []struct {
		name    string
		present bool
	}{
		{"name", b.Name != nil},
		{"price", b.Price != nil},
	}

	var out []FieldError
	for _, f := range fields {
		if !f.present {
			out = append(out, FieldError{Loc: []string{"body", f.name}, Msg: "Field required", Type: "missing"})
			continue
		}
		if fe, ok := failed[f.name]; ok {
			out = append(out, fe)
		}
	}
	if len(out) > 0 {
		return CreateRequest{}, &ValidationError{Fields: out}
	}
	return req, nil
}

// FieldError describes one failed constraint. Loc is the path to the
// offending input, e.g. ["body", "price"] or ["path", "id"].
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError lists every constraint a request failed.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.Join(f.Loc, "."), f.Msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalid(loc []string, typ, msg string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Loc: loc, Msg: msg, Type: typ}}}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// constraint maps a validator tag to the error type and message clients see.
type constraint struct {
	typ string
	msg func(param string) string
}

var constraints = map[string]constraint{
	"min": {
		typ: "string_too_short",
		msg: func(p string) string { return fmt.Sprintf("String should have at least %s character", p) },
	},
	"gt": {
		typ: "greater_than",
		msg: func(p string) string { return fmt.Sprintf("Input should be greater than %s", p) },
	},
}

func fieldError(loc []string, fe validator.FieldError) FieldError {
	c, ok := constraints[fe.Tag()]
	if !ok {
		return FieldError{Loc: loc, Type: fe.Tag(), Msg: fmt.Sprintf("Validation failed on '%s'", fe.Tag())}
	}
	return FieldError{Loc: loc, Type: c.typ, Msg: c.msg(fe.Param())}
}

// Validate checks every rule and reports all failures at once.
func (r CreateRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(ve))}
	for _, fe := range ve {
		out.Fields = append(out.Fields, fieldError([]string{"body", fe.Field()}, fe))
	}
	return out
}

// ErrIDOutOfRange marks a well-formed positive id too large for the id
// sequence. No product can carry it, so callers treat it as a miss.
var ErrIDOutOfRange = errors.New("product id out of range")

// ParseID parses a product id taken from a request path. Anything that is not
// a positive base-10 integer is a validation failure.
func ParseID(raw string) (int64, error) {
	loc := []string{"path", "id"}

	id, err := strconv.ParseInt(raw, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(raw, "-") {
			return 0, invalid(loc, "greater_than", "Input should be greater than 0")
		}
		return 0, ErrIDOutOfRange
	}
	if err != nil {
		return 0, invalid(loc, "int_parsing", "Input should be a valid integer, unable to parse string as an integer")
	}

	if err := validate.Var(id, "gt=0"); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return 0, &ValidationError{Fields: []FieldError{fieldError(loc, ve[0])}}
		}
		return 0, err
	}
	return id, nil
}
