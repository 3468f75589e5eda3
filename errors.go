package accessmatrix

import (
	"errors"

	"github.com/xraph/accessmatrix/rule"
)

var (
	// ErrValidation is returned when a request carries an empty module,
	// an unrecognized permission, or an invalid page.
	ErrValidation = errors.New("accessmatrix: validation failed")

	// ErrInvalidSubjectType is returned when a subject type is neither
	// "role" nor "user".
	ErrInvalidSubjectType = errors.New("accessmatrix: invalid subject type")

	// ErrSubjectNotFound is returned when no role or user matches a subject
	// reference.
	ErrSubjectNotFound = errors.New("accessmatrix: subject not found")

	// ErrAmbiguousSubject is returned when more than one role or user
	// matches a subject reference.
	ErrAmbiguousSubject = errors.New("accessmatrix: subject is ambiguous")

	// ErrDirectoryUnavailable is returned when a role or user directory
	// lookup fails for a reason other than a missing entry.
	ErrDirectoryUnavailable = errors.New("accessmatrix: directory lookup failed")

	// ErrDuplicateRule is returned by a store when a rule with the same
	// tuple already exists. Grant absorbs it.
	ErrDuplicateRule = rule.ErrDuplicate

	// ErrRuleNotFound is returned when a rule cannot be found.
	// Revoke never returns it.
	ErrRuleNotFound = rule.ErrNotFound
)
