package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the acting user lacks the required membership.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates a lost race on a unique constraint that internal
// retries could not resolve (e.g. repeated join code collisions).
var ErrConflict = errors.New("conflict")

// ErrAlreadyMember indicates the user already belongs to the group.
var ErrAlreadyMember = errors.New("user is already a member")

// ErrAlreadyRequested indicates the user already has a pending join request for the group.
var ErrAlreadyRequested = errors.New("join request already pending")

// ErrAlreadyApproved indicates the user already approved the expense.
// Callers treat this as idempotent success rather than a failure.
var ErrAlreadyApproved = errors.New("expense already approved by user")
