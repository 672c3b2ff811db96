// Package validation provides enhanced validation with go-playground/validator integration
package validation

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Enhanced validator instance with custom validations
var (
	// Validate is the main validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validation functions
	Validate.RegisterValidation("exercise_id", validateExerciseID)
	Validate.RegisterValidation("link_type", validateLinkType)
	Validate.RegisterValidation("muscle_role", validateMuscleRole)
	Validate.RegisterValidation("uuid4", validateUUID4)

	// Register tag name function to use JSON tags for field names
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// ValidateWithPlayground validates using go-playground/validator
func ValidateWithPlayground(s interface{}) error {
	err := Validate.Struct(s)
	if err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// formatValidationErrors converts validator errors to our custom format
func formatValidationErrors(err error) ValidationErrors {
	var errors ValidationErrors

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			errors = append(errors, ValidationError{
				Field:   fieldError.Field(),
				Value:   fieldError.Value(),
				Message: getErrorMessage(fieldError),
			})
		}
	}

	return errors
}

// getErrorMessage returns a human-readable error message
func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("minimum value/length is %s", fe.Param())
	case "max":
		return fmt.Sprintf("maximum value/length is %s", fe.Param())
	case "gte":
		return fmt.Sprintf("value must be >= %s", fe.Param())
	case "len":
		return fmt.Sprintf("length must be exactly %s", fe.Param())
	case "uuid":
		return "must be a valid UUID"
	case "exercise_id":
		return "must be a valid exercise identifier (alphanumeric, underscore, hyphen)"
	case "link_type":
		return "must be a valid link type (Warmup, Cooldown, Alternative)"
	case "muscle_role":
		return "must be a valid muscle role (Primary, Secondary)"
	default:
		return fmt.Sprintf("validation failed: %s", fe.Tag())
	}
}

// Custom validation functions for exercise-link rules

// validateExerciseID validates exercise identifier format
func validateExerciseID(fl validator.FieldLevel) bool {
	exerciseID := fl.Field().String()
	if exerciseID == "" {
		return false
	}

	// Exercise ID must be alphanumeric with underscores and hyphens
	matched, _ := regexp.MatchString(`^[a-zA-Z0-9_-]+$`, exerciseID)
	return matched && len(exerciseID) >= 1 && len(exerciseID) <= 100
}

// validateLinkType validates link type values, case-insensitively to match
// the store's own parsing.
func validateLinkType(fl validator.FieldLevel) bool {
	linkType := fl.Field().String()
	validTypes := []string{"warmup", "cooldown", "alternative"}

	for _, validType := range validTypes {
		if strings.EqualFold(linkType, validType) {
			return true
		}
	}
	return false
}

// validateMuscleRole validates muscle assignment role values
func validateMuscleRole(fl validator.FieldLevel) bool {
	role := fl.Field().String()
	validRoles := []string{"primary", "secondary"}

	for _, validRole := range validRoles {
		if strings.EqualFold(role, validRole) {
			return true
		}
	}
	return false
}

// validateUUID4 validates UUID v4 format
func validateUUID4(fl validator.FieldLevel) bool {
	uuid := fl.Field().String()
	if uuid == "" {
		return false
	}

	// UUID v4 regex pattern
	matched, _ := regexp.MatchString(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`, uuid)
	return matched
}

// ValidationConfig holds validation configuration
type ValidationConfig struct {
	StrictMode  bool `json:"strict_mode"`
	SkipMissing bool `json:"skip_missing"`
	MaxErrors   int  `json:"max_errors"`
}

// DefaultValidationConfig returns default validation configuration
func DefaultValidationConfig() *ValidationConfig {
	return &ValidationConfig{
		StrictMode:  true,
		SkipMissing: false,
		MaxErrors:   10,
	}
}

// ValidateWithConfig validates with specific configuration
func ValidateWithConfig(s interface{}, config *ValidationConfig) error {
	if config == nil {
		config = DefaultValidationConfig()
	}

	err := ValidateWithPlayground(s)
	if err != nil {
		if validationErrors, ok := err.(ValidationErrors); ok {
			if config.MaxErrors > 0 && len(validationErrors) > config.MaxErrors {
				return ValidationErrors(validationErrors[:config.MaxErrors])
			}
		}
		return err
	}

	return nil
}

// MarshalValidationErrors marshals validation errors to JSON
func MarshalValidationErrors(errors ValidationErrors) ([]byte, error) {
	type ErrorResponse struct {
		Errors []ValidationError `json:"errors"`
		Count  int               `json:"count"`
	}

	response := ErrorResponse{
		Errors: errors,
		Count:  len(errors),
	}

	return json.Marshal(response)
}

// UnmarshalValidationErrors unmarshals validation errors from JSON
func UnmarshalValidationErrors(data []byte) (ValidationErrors, error) {
	type ErrorResponse struct {
		Errors []ValidationError `json:"errors"`
		Count  int               `json:"count"`
	}

	var response ErrorResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, err
	}

	return ValidationErrors(response.Errors), nil
}
