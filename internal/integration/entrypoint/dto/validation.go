package dto

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

// ExpenseCategoryTag is the binding rule for category fields.
const ExpenseCategoryTag = "expense_category"

// RegisterValidations adds the custom rules to gin's validator engine.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation(ExpenseCategoryTag, validateExpenseCategory)
}

func validateExpenseCategory(fl validator.FieldLevel) bool {
	return entity.Category(fl.Field().String()).IsValid()
}
