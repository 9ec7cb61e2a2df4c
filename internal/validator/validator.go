// Package validator wraps go-playground/validator for quote input structs.
package validator

import (
	"reflect"
	"sort"
	"strings"
	"sync"

	crdb "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	ierr "wireless-quote/internal/errors"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Get returns the shared validator, building it on first use.
// validator.Validate caches struct metadata and is safe for concurrent use.
func Get() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	})
	return validate
}

// ValidateStruct validates s and reports failures as an InvalidRequest error
// whose context maps each failing field namespace to the violated tag.
func ValidateStruct(s interface{}) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}

	var validateErrs validator.ValidationErrors
	if !crdb.As(err, &validateErrs) {
		return ierr.Wrap(ierr.TypeInvalidRequest, "request validation failed", err)
	}

	fields := make([]string, 0, len(validateErrs))
	out := ierr.InvalidRequest("request validation failed")
	for _, fe := range validateErrs {
		out.WithContext(fe.Namespace(), fe.Tag())
		fields = append(fields, fe.Namespace())
	}
	sort.Strings(fields)
	out.Message = "request validation failed: " + strings.Join(fields, ", ")
	return out
}

// decimalValue lets numeric tags such as gte=0 apply to decimal.Decimal fields
func decimalValue(v reflect.Value) interface{} {
	d, ok := v.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	f, _ := d.Float64()
	return f
}
