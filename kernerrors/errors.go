package kernerrors

import (
	"errors"
	"strings"
)

// Vector allocation (V) errors. Both are detected in debug
// configurations only; with debug checks disabled the allocator skips
// them entirely.
var (
	ErrVPriorityOutOfRange = errors.New("V1|PriorityOutOfRange: Requested priority maps to vectors beyond the configured table size.")
	ErrVNoVectorAvailable  = errors.New("V2|NoVectorAvailable: Every vector in the requested priority level is already allocated.")
)

// GetErrorName extracts the error name from the error message.
func GetErrorName(err error) string {
	if err == nil {
		return "No Error"
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "|") || !strings.Contains(errStr, ":") {
		return errStr
	}
	parts := strings.SplitN(errStr, "|", 2)
	if len(parts) < 2 {
		return errStr
	}
	nameDesc := parts[1]
	nameParts := strings.SplitN(nameDesc, ":", 2)
	if len(nameParts) < 1 {
		return errStr
	}
	return strings.TrimSpace(nameParts[0])
}

// GetErrorCode extracts the error code from the error message.
func GetErrorCode(err error) string {
	if err == nil {
		return ""
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "|") {
		return ""
	}
	parts := strings.SplitN(errStr, "|", 2)
	return strings.TrimSpace(parts[0])
}
