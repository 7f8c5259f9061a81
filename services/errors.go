package services

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindConflict
	KindNotFound
)

// DomainError lets handlers map service failures onto HTTP statuses without
// string matching: validation -> 400, conflict -> 409, not found -> 404.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func validationError(format string, args ...interface{}) error {
	return &DomainError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func conflictError(format string, args ...interface{}) error {
	return &DomainError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(format string, args ...interface{}) error {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func isKind(err error, kind ErrorKind) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Kind == kind
}

func IsValidation(err error) bool { return isKind(err, KindValidation) }
func IsConflict(err error) bool   { return isKind(err, KindConflict) }
func IsNotFound(err error) bool   { return isKind(err, KindNotFound) }
