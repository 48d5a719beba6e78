package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the pipeline the error occurred.
type Phase string

const (
	PhaseParse    Phase = "parse"    // class file header
	PhaseDecode   Phase = "decode"   // constant pool entry decoding
	PhaseResolve  Phase = "resolve"  // reference fixed-point resolution
	PhaseValidate Phase = "validate" // reference type checking
)

// Kind categorizes the error.
type Kind string

const (
	KindTruncation    Kind = "truncation"
	KindMalformedUTF8 Kind = "malformed_utf8"
	KindUnknownTag    Kind = "unknown_tag"
	KindSelfReference Kind = "self_reference"
	KindOutOfBounds   Kind = "out_of_bounds"
	KindUnresolvable  Kind = "unresolvable"
	KindTypeMismatch  Kind = "type_mismatch"
	KindInvalidData   Kind = "invalid_data"
)

// Error is the structured error type used throughout the module. Callers are
// expected to surface Error() text directly; the class file being diagnosed
// is malformed or adversarial and the message is the diagnostic.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction.
type Builder struct {
	err Error
}

// New creates a new error builder.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Cause sets the underlying error.
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error.
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the constant pool error taxonomy.

// Truncation creates an error for a buffer that ends before a declared field.
func Truncation(phase Phase, offset int, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTruncation,
		Detail: fmt.Sprintf("unexpected end of stream at offset %d", offset),
		Cause:  cause,
	}
}

// MalformedUTF8 creates an error for an invalid modified UTF-8 payload,
// reported with the byte range it occupies.
func MalformedUTF8(start, end int, cause error) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindMalformedUTF8,
		Detail: fmt.Sprintf("invalid modified UTF-8 at offsets %d..%d", start, end),
		Cause:  cause,
	}
}

// UnknownTag creates an error for an unrecognized constant pool tag byte.
func UnknownTag(tag byte, offset int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnknownTag,
		Detail: fmt.Sprintf("unexpected constant pool entry type %d at offset %d", tag, offset),
	}
}

// SelfReference creates an error for an entry referencing its own index.
func SelfReference(index int) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindSelfReference,
		Detail: fmt.Sprintf("constant pool entry at index %d could not be resolved due to self-reference", index),
	}
}

// OutOfBounds creates an error for a reference index past the pool length.
func OutOfBounds(index, target, length int) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("constant pool entry at index %d references out-of-bounds index %d (pool length %d)", index, target, length),
	}
}

// Unresolvable creates the fixed-point stall error: a full resolution pass
// made no progress while unresolved references remain.
func Unresolvable() *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindUnresolvable,
		Detail: "unable to resolve all constant pool entries",
	}
}

// TypeMismatch creates an error for a reference whose target kind is not in
// the allowed set, annotated with the referring entry's index.
func TypeMismatch(index int) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindTypeMismatch,
		Detail: fmt.Sprintf("unexpected constant pool reference type for constant pool entry %d", index),
	}
}

// InvalidData creates a generic invalid data error.
func InvalidData(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
