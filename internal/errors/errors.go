package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrInvalidJSON    = errors.New("invalid JSON format")
	ErrFileNotFound   = errors.New("file not found")
	ErrFolderNotFound = errors.New("folder not found")
	ErrNoFiles        = errors.New("no JSON files found")
	ErrNoReports      = errors.New("no schema report files found")
	ErrMissingInput   = errors.New("required input report not found")
	ErrEmptyInput     = errors.New("input is empty or contains only whitespace")
)

// ErrorType categorizes errors by pipeline stage
type ErrorType string

const (
	ErrorTypeInput    ErrorType = "input"
	ErrorTypeParsing  ErrorType = "parsing"
	ErrorTypeScan     ErrorType = "scan"
	ErrorTypeAnalysis ErrorType = "analysis"
	ErrorTypeReport   ErrorType = "report"
	ErrorTypeOutput   ErrorType = "output"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewParsingError creates a new error related to JSON parsing
func NewParsingError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParsing,
		Message: message,
		Err:     err,
	}
}

// NewScanError creates a new error related to locating corpus files
func NewScanError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeScan,
		Message: message,
		Err:     err,
	}
}

// NewAnalysisError creates a new error related to schema analysis
func NewAnalysisError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeAnalysis,
		Message: message,
		Err:     err,
	}
}

// NewReportError creates a new error related to report generation
func NewReportError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeReport,
		Message: message,
		Err:     err,
	}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOutput,
		Message: message,
		Err:     err,
	}
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			return fmt.Sprintf("JSON parsing error: %s", appErr.Message)
		case ErrorTypeScan:
			return fmt.Sprintf("Scan error: %s", appErr.Message)
		case ErrorTypeAnalysis:
			return fmt.Sprintf("Schema analysis error: %s", appErr.Message)
		case ErrorTypeReport:
			return fmt.Sprintf("Report error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFolderNotFound) {
		return "Error: The specified folder could not be found. Please check the folder path."
	}
	if errors.Is(err, ErrNoFiles) {
		return "Error: No JSON files found for the corpus. Check the folder and ignore patterns."
	}
	if errors.Is(err, ErrNoReports) {
		return "Error: No schema report files found. Run 'jsonprof schema' first."
	}
	if errors.Is(err, ErrMissingInput) {
		return "Error: A required input report is missing. Run 'jsonprof metadata' first."
	}
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide valid JSON data."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}
