package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/diewo77/invoice-manager/validation"
)

var (
	// ErrNotFound is returned when a record does not exist or belongs to another user.
	ErrNotFound = errors.New("not_found")
	// ErrInUse is returned when a record cannot be deleted while others reference it.
	ErrInUse = errors.New("in_use")
	// ErrInvalidCredentials is returned by UserService.Authenticate.
	ErrInvalidCredentials = errors.New("invalid_credentials")
)

// ValidationError carries the field violations that rejected an input.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f, code := range e.Violations {
		fields = append(fields, f+"="+code)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

func invalid(v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Violations: v}
}
