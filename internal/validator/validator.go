// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"cardwise/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("txn_category", validateCategory)
		_ = v.RegisterValidation("benefit_type", validateBenefitType)
		_ = v.RegisterValidation("statement_kind", validateStatementKind)
		_ = v.RegisterValidation("recommendation_priority", validatePriority)
	}
}

func validateCategory(fl validator.FieldLevel) bool {
	return models.IsValidCategory(fl.Field().String())
}

func validateBenefitType(fl validator.FieldLevel) bool {
	return models.IsValidBenefitType(fl.Field().String())
}

func validateStatementKind(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "pdf", "csv", "xlsx":
		return true
	}
	return false
}

func validatePriority(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "high", "medium", "low":
		return true
	}
	return false
}
