package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func validateStruct(payload interface{}) *[]error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var invalidErr *validator.InvalidValidationError
	if errors.As(err, &invalidErr) {
		errs := []error{errors.New("invalid payload structure")}
		return &errs
	}
	errs := []error{}
	for _, fieldErr := range err.(validator.ValidationErrors) {
		errs = append(errs, fmt.Errorf("%s failed validation for rule %s", strings.ToLower(fieldErr.Field()), fieldErr.Tag()))
	}
	if len(errs) == 0 {
		return nil
	}
	return &errs
}

func validateField(value any, rules string) error {
	return validate.Var(value, rules)
}
