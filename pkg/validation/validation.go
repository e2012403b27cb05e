// Package validation decodes JSON request bodies into typed payloads and
// reports every violated field constraint at once.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultMaxBodyBytes is the default JSON request body limit (2 MiB).
const DefaultMaxBodyBytes int64 = 2 << 20

// ErrBodyTooLarge is returned when the payload exceeds the configured limit.
var ErrBodyTooLarge = errors.New("request body too large")

// Error is the flattened validation failure returned to clients.
type Error struct {
	FormErrors  []string            `json:"formErrors"`
	FieldErrors map[string][]string `json:"fieldErrors"`
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.FormErrors)+len(e.FieldErrors))
	parts = append(parts, e.FormErrors...)
	for _, field := range e.Fields() {
		parts = append(parts, field+": "+strings.Join(e.FieldErrors[field], ", "))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Fields returns the names of the failing fields in sorted order.
func (e *Error) Fields() []string {
	fields := make([]string, 0, len(e.FieldErrors))
	for field := range e.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// MarshalJSON renders empty collections as [] and {} instead of null.
func (e *Error) MarshalJSON() ([]byte, error) {
	type flat Error
	out := flat{FormErrors: e.FormErrors, FieldErrors: e.FieldErrors}
	if out.FormErrors == nil {
		out.FormErrors = []string{}
	}
	if out.FieldErrors == nil {
		out.FieldErrors = map[string][]string{}
	}
	return json.Marshal(out)
}

func (e *Error) empty() bool {
	return len(e.FormErrors) == 0 && len(e.FieldErrors) == 0
}

func (e *Error) addField(field, message string) {
	if e.FieldErrors == nil {
		e.FieldErrors = make(map[string][]string)
	}
	e.FieldErrors[field] = append(e.FieldErrors[field], message)
}

// Validator wraps go-playground/validator with JSON aware field naming.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator that reports fields by their json tag names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return &Validator{v: v}
}

// DecodeJSON reads a JSON object from r into dst (a pointer to struct) and
// validates it. It returns nil, ErrBodyTooLarge, or a *Error enumerating
// every violation; it never panics on malformed input.
func (val *Validator) DecodeJSON(r io.Reader, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("validation: destination must be a non-nil pointer to struct, got %T", dst)
	}

	body, err := io.ReadAll(r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return ErrBodyTooLarge
		}
		return &Error{FormErrors: []string{"Unable to read request body"}}
	}

	var raw map[string]json.RawMessage
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' || json.Unmarshal(trimmed, &raw) != nil {
		return &Error{FormErrors: []string{"Expected object"}}
	}

	verr := &Error{}
	typeFailed := make(map[string]bool)
	elem := rv.Elem()
	structType := elem.Type()
	for i := 0; i < structType.NumField(); i++ {
		sf := structType.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := jsonName(sf)
		if name == "" {
			continue
		}
		payload, ok := raw[name]
		if !ok || bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
			continue
		}
		target := reflect.New(sf.Type)
		if err := json.Unmarshal(payload, target.Interface()); err != nil {
			verr.addField(name, "Expected "+kindName(sf.Type))
			typeFailed[name] = true
			continue
		}
		elem.Field(i).Set(target.Elem())
	}

	if err := val.v.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validation: %w", err)
		}
		for _, fe := range fieldErrs {
			name := baseField(fe.Field())
			if typeFailed[name] {
				continue
			}
			verr.addField(name, val.message(structType, fe))
		}
	}

	if verr.empty() {
		return nil
	}
	return verr
}

func (val *Validator) message(structType reflect.Type, fe validator.FieldError) string {
	if sf, ok := structType.FieldByName(baseField(fe.StructField())); ok {
		if custom := customMessage(sf.Tag.Get("msg"), fe.Tag()); custom != "" {
			return custom
		}
	}
	// Casers are stateful, so one is built per message.
	label := cases.Title(language.English).String(baseField(fe.Field()))
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", label, fe.Param())
	case "email":
		return "Invalid email"
	default:
		return fmt.Sprintf("%s failed %s validation", label, fe.Tag())
	}
}

// customMessage reads overrides written as msg:"min=At least one;email=Bad".
func customMessage(tag, rule string) string {
	if tag == "" {
		return ""
	}
	for _, entry := range strings.Split(tag, ";") {
		key, value, ok := strings.Cut(entry, "=")
		if ok && strings.TrimSpace(key) == rule {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func jsonName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return sf.Name
	}
	return name
}

// baseField strips the element index validator appends for dive errors.
func baseField(field string) string {
	if idx := strings.IndexByte(field, '['); idx >= 0 {
		return field[:idx]
	}
	return field
}

func kindName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.String {
			return "array of strings"
		}
		return "array"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	default:
		return "object"
	}
}
