package utils

import (
	"context"
	"errors"
	"fmt"
	"syscall"
)

type temporary interface{ Temporary() bool }

type temporaryError struct{ error }

func (e temporaryError) Temporary() bool { return true }
func (e temporaryError) Unwrap() error   { return e.error }

// MakeTemporary marks err as transient: the operation may succeed if it is retried
func MakeTemporary(err error) error {
	if err == nil {
		return nil
	}
	return temporaryError{err}
}

// Temporary returns true if err, or any error it wraps, is transient:
// an I/O failure of the storage, an error marked with MakeTemporary, a cancelled or expired context.
func Temporary(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EIO, syscall.EAGAIN, syscall.EBUSY, syscall.ECONNABORTED, syscall.ECONNRESET, syscall.ETIMEDOUT, syscall.EPIPE:
			return true
		}
	}
	var tmp temporary
	if errors.As(err, &tmp) {
		return tmp.Temporary()
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// MergeErrors appends the texts of newErrs to err. The first error that is wrapped is:
// - if priorityToError: the permanent error, then the temporary one
// - otherwise: no error (a nil newErr resets the result), then the temporary error, then the permanent one.
func MergeErrors(priorityToError bool, err error, newErrs ...error) error {
	for _, newErr := range newErrs {
		switch {
		case err == nil:
			err = newErr
		case newErr == nil:
			if !priorityToError {
				err = nil
			}
		case priorityToError != Temporary(newErr):
			err = fmt.Errorf("%w\n %v", newErr, err)
		default:
			err = fmt.Errorf("%w\n %v", err, newErr)
		}
	}
	return err
}
