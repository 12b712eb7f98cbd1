// Package errors provides structured error handling for LoadSearch.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (file, disk)
//   - 3XX: Extraction errors
//   - 4XX: Query errors
//   - 5XX: Store and internal errors
package errors

import "strings"

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryExtraction indicates document extraction errors.
	CategoryExtraction Category = "EXTRACTION"
	// CategoryQuery indicates query parsing and execution errors.
	CategoryQuery Category = "QUERY"
	// CategoryStore indicates index store errors.
	CategoryStore Category = "STORE"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort the operation.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates the item failed but the run can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigInvalid = "ERR_101_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeFileNotFound   = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFilePermission = "ERR_202_FILE_PERMISSION"

	// Extraction errors (300-399)
	ErrCodeExtractionFailed = "ERR_301_EXTRACTION_FAILED"
	ErrCodeTruncated        = "ERR_302_TRUNCATED"
	ErrCodeUnsupported      = "ERR_303_UNSUPPORTED_FORMAT"

	// Query errors (400-499)
	ErrCodeInvalidQuery = "ERR_401_INVALID_QUERY"

	// Store and internal errors (500-599)
	ErrCodeStoreCorrupt = "ERR_501_STORE_CORRUPT"
	ErrCodeInternal     = "ERR_503_INTERNAL"
)

// categoryFromCode extracts the category from an error code.
func categoryFromCode(code string) Category {
	switch {
	case strings.HasPrefix(code, "ERR_1"):
		return CategoryConfig
	case strings.HasPrefix(code, "ERR_2"):
		return CategoryIO
	case strings.HasPrefix(code, "ERR_3"):
		return CategoryExtraction
	case strings.HasPrefix(code, "ERR_4"):
		return CategoryQuery
	default:
		return CategoryStore
	}
}

// severityFromCode derives the default severity for an error code.
// Only store-level integrity problems are fatal: per-file and per-query
// conditions are contained at the item level and never abort a run.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeStoreCorrupt, ErrCodeConfigInvalid:
		return SeverityFatal
	case ErrCodeTruncated, ErrCodeUnsupported:
		return SeverityWarning
	default:
		return SeverityError
	}
}
