package calc

import (
	"errors"
	"fmt"
)

// Kind classifies a calculation failure.
type Kind int

const (
	// KindValidation means the request is wrong and the caller must fix it.
	KindValidation Kind = iota + 1
	// KindResolution means the external handover source could not be used.
	KindResolution
	// KindComputation means the engine hit a degenerate numeric condition.
	KindComputation
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindResolution:
		return "resolution"
	case KindComputation:
		return "computation"
	default:
		return "unknown"
	}
}

// Error is the error type returned by Prepare, Compute and Service.Calculate.
type Error struct {
	Kind Kind
	// Entity identifies the offending district or station type, e.g.
	// `district "north"` or "station type 3". Empty for request-level rules.
	Entity string
	// Field is the offending field name in the request document.
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Entity != "" {
		msg = e.Entity + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationf(entity, field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Entity: entity, Field: field, Msg: fmt.Sprintf(format, args...)}
}

func resolutionf(err error, format string, args ...any) *Error {
	return &Error{Kind: KindResolution, Msg: fmt.Sprintf(format, args...), Err: err}
}

func computationf(entity, format string, args ...any) *Error {
	return &Error{Kind: KindComputation, Entity: entity, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsResolution reports whether err is a handover resolution failure.
func IsResolution(err error) bool { return KindOf(err) == KindResolution }

// IsComputation reports whether err is a computation failure.
func IsComputation(err error) bool { return KindOf(err) == KindComputation }

func districtEntity(id string) string {
	return fmt.Sprintf("district %q", id)
}

func stationEntity(id int) string {
	return fmt.Sprintf("station type %d", id)
}
