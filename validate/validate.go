package validate

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

type Validator struct {
	*validator.Validate
}

func New() *Validator {
	return &Validator{
		Validate: validator.New(),
	}
}

type customErrors struct {
	Exported any `json:""` // Any is the actual struct to validate

	mu     sync.Mutex
	errors map[string]error
}

func (ce *customErrors) AddError(field string, err error) {
	ce.mu.Lock()
	defer ce.mu.Unlock()

	ce.errors[field] = err
}

// DetailedFieldError includes a custom "reason" error to explain why the
// validation failed.
type DetailedFieldError struct {
	Field  string
	Reason error
}

func (e DetailedFieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e DetailedFieldError) Unwrap() error {
	return e.Reason
}

// Struct validates value. Failures of plain tags come back as
// validator.FieldError values and failures of functions registered with
// RegisterValidation as DetailedFieldError values, all joined in a
// multierror.
func (v *Validator) Struct(value interface{}) error {
	c := &customErrors{
		errors:   make(map[string]error),
		Exported: value,
	}
	err := v.Validate.Struct(c)

	var (
		merr        *multierror.Error
		validErrors validator.ValidationErrors
	)
	if err != nil {
		if !xerrors.As(err, &validErrors) {
			return err
		}
		for _, ve := range validErrors {
			merr = multierror.Append(merr, ve)
		}
	}

	fields := make([]string, 0, len(c.errors))
	for field := range c.errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		merr = multierror.Append(merr, DetailedFieldError{
			Field:  field,
			Reason: c.errors[field],
		})
	}
	return merr.ErrorOrNil()
}

type FuncWithError func(fl validator.FieldLevel) error

// RegisterValidation adds a validation with the given tag
//
// NOTES:
// - if the key already exists, the previous validation function will be replaced.
// - this method is not thread-safe it is intended that these all be registered prior to any validation
func (v *Validator) RegisterValidation(tag string, fn FuncWithError, callValidationEvenIfNull ...bool) error {
	return v.Validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		err := fn(fl)
		if err != nil {
			top := fl.Top().Interface()
			ce, ok := (top).(*customErrors)
			if ok {
				// We cannot get the full namespace resolution. So hopefully
				// the field name with the parent type is unique enough.
				namespace := fmt.Sprintf("%s.%s=%v",
					parentName(fl), fl.FieldName(), fl.Field().Interface())
				ce.AddError(namespace, err)
				// The error is reported from the custom errors instead.
				return true
			}
			return false
		}
		return true
	}, callValidationEvenIfNull...)
}

func parentName(fl validator.FieldLevel) string {
	t := fl.Parent().Type()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
