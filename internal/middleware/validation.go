package middleware

import (
	"encoding/json"
	"net/http"

	"farma-shop/internal/validation"

	"github.com/go-playground/validator/v10"
)

// Validator instance, with the storefront's document checks registered as
// custom tags so DTOs and the validation package share one implementation.
var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		return validation.CPF(fl.Field().String())
	})
	validate.RegisterValidation("ddd", func(fl validator.FieldLevel) bool {
		return validation.AreaCode(fl.Field().String())
	})
	validate.RegisterValidation("telefone", func(fl validator.FieldLevel) bool {
		return validation.Phone(fl.Field().String())
	})
	validate.RegisterValidation("senha", func(fl validator.FieldLevel) bool {
		return validation.Password(fl.Field().String())
	})
	validate.RegisterValidation("nascimento", func(fl validator.FieldLevel) bool {
		return validation.BirthDate(fl.Field().String())
	})
}

// ValidateRequest validates a struct against its validation tags
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// DecodeAndValidate decodes a JSON request body and validates it
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return ValidateRequest(v)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors converts validator errors to a readable format
func FormatValidationErrors(err error) []ValidationError {
	var errors []ValidationError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			errors = append(errors, ValidationError{
				Field:   e.Field(),
				Message: getErrorMessage(e),
			})
		}
	}

	return errors
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "lte":
		return "Value must be less than or equal to " + e.Param()
	case "cpf":
		return "Invalid CPF"
	case "ddd":
		return "Invalid area code"
	case "telefone":
		return "Phone must have 9 digits"
	case "senha":
		return "Password must be 6 to 20 characters with an uppercase letter, a digit and a special character"
	case "nascimento":
		return "Invalid birth date"
	default:
		return "Invalid value"
	}
}
