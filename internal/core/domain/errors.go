package domain

import "errors"

// Loan lifecycle errors.
var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidTransition   = errors.New("invalid state transition")
	ErrInvalidOperation    = errors.New("invalid operation")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrForbidden           = errors.New("access forbidden")
	ErrDuplicateRequest    = errors.New("duplicate request")
	ErrInvalidLoanStatus   = errors.New("invalid loan status")
	ErrInvalidDueDate      = errors.New("invalid due date")
	ErrNonPositiveDuration = errors.New("loan period must be positive")
)

// Identity errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrUserDisabled       = errors.New("user disabled")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
