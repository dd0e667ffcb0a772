package util

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// error

type Error struct {
	orig error
	msg  string
	code error
}

func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s", e.msg)
	}

	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

func WrapErrorf(orig error, code error, format string, a ...interface{}) error {
	return &Error{
		code: code,
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
	}
}

func (e *Error) Code() error {
	return e.code
}

var (
	// ErrConfig: parameter out of range or inconsistent bounds, fatal at construction.
	ErrConfig = errors.New("invalid configuration")
	// ErrData: malformed benchmark file or inconsistent instance data.
	ErrData = errors.New("invalid problem data")
	// ErrState: a solver invariant was broken, always an engine bug.
	ErrState = errors.New("solver state violation")
	// ErrConvergence: the fleet-growth phase failed to place a request.
	ErrConvergence = errors.New("fleet growth did not converge")

	ErrInternalServerError = errors.New("internal Server Error")
	ErrNotFound            = errors.New("your requested Item is not found")
	ErrBadParamInput       = errors.New("given Param is not valid")
)

var MessageInternalServerError string = "internal server error"

func HasCode(err, code error) bool {
	var e *Error
	if errors.As(err, &e) {
		return errors.Is(e.Code(), code)
	}
	return false
}

const epsilon = 1e-9

func Eq(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

func Abs[T constraints.Integer | constraints.Float](a T) T {
	if a < 0 {
		return -a
	}
	return a
}

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}
