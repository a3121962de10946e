package dto

import (
	"errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/elena/open-accounting/internal/core/domain"
)

// accountRef accepts the two account identifier shapes requests may carry:
// a structured code like "01-0101" or an account UUID.
func accountRef(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if domain.IsAccountCode(value) {
		return true
	}
	_, err := uuid.Parse(value)
	return err == nil
}

// RegisterValidations adds the custom binding rules to gin's validator.
// Must run before any request binds a tagged field.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding validator engine is not *validator.Validate")
	}
	return v.RegisterValidation("accountref", accountRef)
}
