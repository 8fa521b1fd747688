// Package services holds the storefront and back-office operations. Every
// call takes the caller's access.Session and checks it before touching the
// store.
package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"shaaban-furniture-backend/access"
	"shaaban-furniture-backend/store"
)

var (
	ErrNotFound          = store.ErrNotFound
	ErrUnauthenticated   = errors.New("sign-in required")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotCancellable    = errors.New("only pending orders can be cancelled")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrSelfRevoke        = errors.New("admins cannot remove their own admin role")
)

// ValidationError lists rejected input fields and why.
type ValidationError struct {
	Fields map[string]string
}

func (e ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " " + e.Fields[k]
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// IsValidation lets handlers tell rejected input from other failures.
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

// AsValidation extracts the field messages of a ValidationError.
func AsValidation(err error) (map[string]string, bool) {
	var v ValidationError
	if errors.As(err, &v) {
		return v.Fields, true
	}
	return nil, false
}

func invalid(field, msg string) error {
	return ValidationError{Fields: map[string]string{field: msg}}
}

func requireIdentity(s access.Session) error {
	if !s.AuthResolved || s.Identity == nil {
		return ErrUnauthenticated
	}
	return nil
}

func requireSignedIn(s access.Session) error {
	if err := requireIdentity(s); err != nil {
		return err
	}
	if s.Identity.Anonymous {
		return fmt.Errorf("%w: guest sessions cannot do this", ErrUnauthenticated)
	}
	return nil
}

func requireAdmin(s access.Session) error {
	if err := requireIdentity(s); err != nil {
		return err
	}
	if !s.IsAdmin() {
		return ErrPermissionDenied
	}
	return nil
}
