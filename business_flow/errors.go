// Package businessflow contains the business logic for the shipping rates service
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Upload validation errors (fail before any row is processed)
	ErrFileRequired         = errors.New("spreadsheet file is required")
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	ErrStudentFlagMismatch  = errors.New("student flag does not match file type")
	ErrFileTooLarge         = errors.New("uploaded file exceeds the size limit")
	ErrSheetIndexInvalid    = errors.New("sheet index is out of range")
	ErrEmptySheet           = errors.New("sheet contains no rows")

	// Structural sheet errors
	ErrMissingColumn = errors.New("required column or label is missing")

	// Store errors
	ErrProvinceRequired = errors.New("province is required")

	// Processing errors
	ErrImportAborted = errors.New("import aborted before all rows were processed")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

// Error codes carried on BusinessError; handlers map these to HTTP
// statuses. Validation and structure codes are client errors, the rest
// are server errors.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeUnknownProvince = "UNKNOWN_PROVINCE"
	CodeSheetStructure  = "SHEET_STRUCTURE_ERROR"
	CodeImportFailed    = "IMPORT_PROCESSING_FAILED"
	CodeQueryFailed     = "QUERY_FAILED"
	CodeClearFailed     = "CLEAR_FAILED"
)

// IsClientError reports whether the business error should surface as a
// client-side (4xx) failure.
func IsClientError(err error) bool {
	var be *BusinessError
	if !errors.As(err, &be) {
		return false
	}
	switch be.Code {
	case CodeValidationError, CodeUnknownProvince, CodeSheetStructure:
		return true
	}
	return false
}

func IsStudentFlagMismatch(err error) bool {
	return errors.Is(err, ErrStudentFlagMismatch)
}

func IsMissingColumn(err error) bool {
	return errors.Is(err, ErrMissingColumn)
}

func IsSheetIndexInvalid(err error) bool {
	return errors.Is(err, ErrSheetIndexInvalid)
}
