package httpserver

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Skotchmaster/phone_shop/internal/transport"
)

// Validator plugs go-playground/validator into echo. Field names in errors
// are the JSON names the client sent.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	return &Validator{v: v}
}

// ValidationError lists every failed field; Error returns the first message.
type ValidationError struct {
	Fields []transport.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "Invalid request"
	}
	return e.Fields[0].Message
}

func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}
	out := &ValidationError{Fields: make([]transport.FieldError, 0, len(errs))}
	for _, fe := range errs {
		out.Fields = append(out.Fields, transport.FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: fieldMessage(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name: "CreateOrderRequest.shipping_address.city"
// becomes "shipping_address.city".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func label(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func fieldMessage(fe validator.FieldError) string {
	name := label(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return "Invalid email format"
	case "uuid":
		return "Invalid " + strings.ToLower(name)
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
		case reflect.Slice, reflect.Map:
			return fmt.Sprintf("%s must contain at least %s items", name, fe.Param())
		}
		if fe.Param() == "0" {
			return name + " cannot be negative"
		}
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
		case reflect.Slice, reflect.Map:
			return fmt.Sprintf("%s must contain at most %s items", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	}
	return name + " is invalid"
}
