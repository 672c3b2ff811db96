package dto

// Validation failure codes. Validation failures are expected control flow,
// carried as values rather than errors.
const (
	CodeExerciseNull        = "EXERCISE_NULL"
	CodeSourceExerciseNull  = "SOURCE_EXERCISE_NULL"
	CodeTargetExerciseNull  = "TARGET_EXERCISE_NULL"
	CodeMissingSourceTypes  = "MISSING_SOURCE_TYPES"
	CodeMissingTargetTypes  = "MISSING_TARGET_TYPES"
	CodeNoSharedTypes       = "NO_SHARED_TYPES"
	CodeInvalidExerciseType = "INVALID_EXERCISE_TYPE"
	CodeSelfReference       = "SELF_REFERENCE"
	CodeCircularReference   = "CIRCULAR_REFERENCE"
	CodeMaxLinksReached     = "MAX_LINKS_REACHED"
	CodeDuplicateLink       = "DUPLICATE_LINK"
	CodeInvalidExerciseID   = "INVALID_EXERCISE_ID"
)

// ValidationResult is the structured (message, code) outcome of a pre-flight
// link check.
type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// ValidationSuccess returns a passing result.
func ValidationSuccess() ValidationResult {
	return ValidationResult{Valid: true}
}

// ValidationFailure returns a failing result with a user-facing message and a
// stable machine code.
func ValidationFailure(message, code string) ValidationResult {
	return ValidationResult{Valid: false, Message: message, Code: code}
}
