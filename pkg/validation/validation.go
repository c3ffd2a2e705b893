// Package validation validates request structs and collects field-level
// error messages keyed by the JSON path of the offending field.
//
// Paths use dot notation for slice elements, so the second recipient of a
// send request is reported as "recipients.1".
package validation

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid is matched by errors.Is for every *Errors value.
var ErrInvalid = errors.New("validation: invalid input")

// Errors maps field paths to human-readable messages.
type Errors struct {
	fields map[string][]string
}

// New returns an empty error set.
func New() *Errors {
	return &Errors{fields: make(map[string][]string)}
}

// Add records a message for field.
func (e *Errors) Add(field, message string) {
	if e.fields == nil {
		e.fields = make(map[string][]string)
	}
	e.fields[field] = append(e.fields[field], message)
}

// Merge copies all messages from other into e.
func (e *Errors) Merge(other *Errors) {
	if other == nil {
		return
	}
	for _, field := range other.Fields() {
		for _, msg := range other.fields[field] {
			e.Add(field, msg)
		}
	}
}

// Has reports whether field has at least one message.
func (e *Errors) Has(field string) bool {
	return e != nil && len(e.fields[field]) > 0
}

// Get returns the messages recorded for field.
func (e *Errors) Get(field string) []string {
	if e == nil {
		return nil
	}
	return e.fields[field]
}

// Empty reports whether no messages were recorded.
func (e *Errors) Empty() bool {
	return e == nil || len(e.fields) == 0
}

// Fields returns the field paths in sorted order.
func (e *Errors) Fields() []string {
	if e == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(e.fields))
}

// Map returns a copy of the messages suitable for JSON encoding.
func (e *Errors) Map() map[string][]string {
	if e == nil {
		return map[string][]string{}
	}
	out := make(map[string][]string, len(e.fields))
	for k, v := range e.fields {
		out[k] = slices.Clone(v)
	}
	return out
}

// Err returns e when it holds messages and nil otherwise.
func (e *Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *Errors) Error() string {
	fields := e.Fields()
	if len(fields) == 0 {
		return ErrInvalid.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalid.Error(), strings.Join(fields, ", "))
}

func (e *Errors) Is(target error) bool {
	return target == ErrInvalid
}

// As extracts *Errors from err.
func As(err error) (*Errors, bool) {
	var ve *Errors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

var validate = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
})

// Struct validates v using its `validate` tags.
// It returns nil when v is valid. Non-validation failures (for example
// passing a non-struct) are reported under the empty field name.
func Struct(v any) *Errors {
	err := validate().Struct(v)
	if err == nil {
		return nil
	}

	out := New()

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.Add("", err.Error())
		return out
	}

	for _, fe := range verrs {
		field := fieldPath(fe.Namespace())
		out.Add(field, message(field, fe))
	}
	return out
}

// Var validates a single value against tag and records failures under field.
func Var(field string, value any, tag string) *Errors {
	err := validate().Var(value, tag)
	if err == nil {
		return nil
	}

	out := New()

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.Add(field, err.Error())
		return out
	}
	for _, fe := range verrs {
		out.Add(field, message(field, fe))
	}
	return out
}

// fieldPath converts "sendRequest.recipients[1]" to "recipients.1".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		namespace = rest
	}
	namespace = strings.ReplaceAll(namespace, "[", ".")
	return strings.ReplaceAll(namespace, "]", "")
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", field)
	case "uuid", "uuid4":
		return fmt.Sprintf("The %s field must be a valid UUID.", field)
	case "max":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map {
			return fmt.Sprintf("The %s field must not have more than %s items.", field, fe.Param())
		}
		return fmt.Sprintf("The %s field must not be greater than %s characters.", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map {
			return fmt.Sprintf("The %s field must have at least %s items.", field, fe.Param())
		}
		return fmt.Sprintf("The %s field must be at least %s characters.", field, fe.Param())
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}
