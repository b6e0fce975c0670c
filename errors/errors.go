// Package errors wraps github.com/pkg/errors so that every error leaving a
// mailgate package carries exactly one stack trace.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Er wraps an error with a formatted message and keeps the innermost stack
// trace. If e already has a stack trace nothing is added.
func Er(e error, str string, options ...interface{}) error {
	if e == nil {
		return nil
	}
	return &errWithStack{
		message: fmt.Sprintf(str, options...) + " : " + e.Error(),
		err:     e,
	}
}

// E wraps an error with a stack trace. If err already carries one it is
// returned unchanged; nil stays nil.
func E(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(StackTracer); ok {
		return err
	}
	return errors.WithStack(err)
}

// Is wraps the standard Is from package errors.
func Is(err error, target error) bool {
	return errors.Is(err, target)
}

// As wraps the standard As from package errors.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Errorf returns an error with a formatted message and stack trace.
func Errorf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

// New returns a new error with the given message and stack trace.
func New(s string) error {
	return errors.New(s)
}

func Wrap(err error, s string, options ...interface{}) error {
	return Er(err, s, options...)
}
