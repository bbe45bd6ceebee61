package relicvm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidHandle   = errors.New("invalid handle")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrStackUnderflow  = errors.New("stack underflow")
	ErrStackImbalance  = errors.New("stack imbalance")
	ErrUnboundVariable = errors.New("unbound variable")
	ErrDuplicateRoot   = errors.New("duplicate root")
	ErrUnknownRoot     = errors.New("unknown root")
	ErrArityMismatch   = errors.New("arity mismatch")
	ErrNotCallable     = errors.New("not callable")
	ErrBadOperand      = errors.New("bad operand")
	ErrUnknownPackage  = errors.New("unknown package")
	ErrMissingBody     = errors.New("missing body")
	ErrSyntax          = errors.New("syntax error")
)

// OpError records the operation and the handle or name that failed.
type OpError struct {
	Op     string
	Handle Handle
	Name   string
	Detail string
	Err    error
}

func (e *OpError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Name != "" {
		b.WriteString(" ")
		b.WriteString(e.Name)
	}
	if e.Handle != NoHandle {
		fmt.Fprintf(&b, " %v", e.Handle)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func fail(op string, h Handle, err error) error {
	return &OpError{
		Op:     op,
		Handle: h,
		Err:    err,
	}
}

func failName(op string, name string, err error) error {
	return &OpError{
		Op:   op,
		Name: name,
		Err:  err,
	}
}

func failf(op string, h Handle, err error, format string, args ...any) error {
	return &OpError{
		Op:     op,
		Handle: h,
		Err:    err,
		Detail: fmt.Sprintf(format, args...),
	}
}

var fatalErrors = []error{
	ErrInvalidHandle,
	ErrTypeMismatch,
	ErrStackUnderflow,
	ErrStackImbalance,
	ErrMissingBody,
}

// IsFatal reports whether err indicates a broken heap or stack discipline,
// after which the calling Context can not continue.
func IsFatal(err error) bool {
	for _, target := range fatalErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
