package georef

import (
	"errors"
	"fmt"
)

type ErrorCode int

const (
	InvalidArgument ErrorCode = iota
	NotFound
	Cancelled
	NotImplemented
	ShouldNeverHappen
)

// Access details
const (
	DetailInvalidArgumentName = 0
	DetailNotFoundEntity      = 0
	DetailNotFoundID          = 1
)

type GeorefError struct {
	code    ErrorCode
	desc    string
	details []string
}

// NewInvalidArgument creates a new error stating that a construction parameter is invalid
func NewInvalidArgument(argument, desc string, a ...interface{}) error {
	return GeorefError{code: InvalidArgument, desc: fmt.Sprintf(desc, a...), details: []string{argument}}
}

// NewNotFound creates a new error stating that an entity has not been found
func NewNotFound(entity, id, desc string, a ...interface{}) error {
	if desc == "" {
		desc = entity + " not found: " + id
	}
	return GeorefError{code: NotFound, desc: fmt.Sprintf(desc, a...), details: []string{entity, id}}
}

// NewCancelled creates a new error stating that a long-running construction has been cancelled
func NewCancelled(desc string, a ...interface{}) error {
	return GeorefError{code: Cancelled, desc: fmt.Sprintf(desc, a...)}
}

// NewNotImplemented creates a new error stating that an operation is not supported
func NewNotImplemented(desc string, a ...interface{}) error {
	return GeorefError{code: NotImplemented, desc: fmt.Sprintf(desc, a...)}
}

// NewShouldNeverHappen creates a new error that should never happen...
func NewShouldNeverHappen(desc string, a ...interface{}) error {
	return GeorefError{code: ShouldNeverHappen, desc: fmt.Sprintf(desc, a...)}
}

// Error implements error
func (e GeorefError) Error() string {
	var s string
	switch e.code {
	case InvalidArgument:
		s = "InvalidArgument"
	case NotFound:
		s = "NotFound"
	case Cancelled:
		s = "Cancelled"
	case NotImplemented:
		s = "NotImplemented"
	case ShouldNeverHappen:
		s = "ShouldNeverHappen"
	}
	return s + ": " + e.desc
}

// Desc returns a description of the error
func (e GeorefError) Desc() string {
	return e.desc
}

// Code returns the code of the error
func (e GeorefError) Code() ErrorCode {
	return e.code
}

// Detail returns a detail of the error (see const above)
func (e GeorefError) Detail(i int) string {
	if i >= len(e.details) {
		return ""
	}
	return e.details[i]
}

// IsError tests whether error is a GeorefError with the given code
func IsError(err error, code ErrorCode) bool {
	var gerr GeorefError
	return errors.As(err, &gerr) && gerr.Code() == code
}

// AsError tests whether error is a GeorefError and returns it
func AsError(err error, code ErrorCode) (GeorefError, bool) {
	var gerr GeorefError
	return gerr, errors.As(err, &gerr) && gerr.Code() == code
}
