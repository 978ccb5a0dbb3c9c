package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseConfigure Phase = "configure" // view/bridge setup
	PhaseLoad      Phase = "load"      // memory to host
	PhaseStore     Phase = "store"     // host to memory
	PhaseEncode    Phase = "encode"    // event record encoding
	PhaseDecode    Phase = "decode"    // event record decoding
	PhaseDispatch  Phase = "dispatch"  // event dispatch into the guest
	PhaseRegister  Phase = "register"  // listener registration
	PhaseHost      Phase = "host"      // host module construction
	PhaseRuntime   Phase = "runtime"   // runtime operations
	PhaseParse     Phase = "parse"     // config and script parsing
)

// Kind categorizes the error
type Kind string

const (
	KindOutOfBounds      Kind = "out_of_bounds"
	KindUnbound          Kind = "unbound"
	KindUnsupportedWidth Kind = "unsupported_width"
	KindNoActiveEvent    Kind = "no_active_event"
	KindMisaligned       Kind = "misaligned"
	KindOverflow         Kind = "overflow"
	KindInvalidData      Kind = "invalid_data"
	KindInvalidInput     Kind = "invalid_input"
	KindNotFound         Kind = "not_found"
	KindNotInitialized   Kind = "not_initialized"
	KindUnsupported      Kind = "unsupported"
	KindInstantiation    Kind = "instantiation"
	KindGuestTrap        Kind = "guest_trap"
)

// Sentinels match any error of their Kind, whatever the Phase.
var (
	ErrOutOfBounds      = &Error{Kind: KindOutOfBounds}
	ErrUnbound          = &Error{Kind: KindUnbound}
	ErrUnsupportedWidth = &Error{Kind: KindUnsupportedWidth}
	ErrNoActiveEvent    = &Error{Kind: KindNoActiveEvent}
	ErrMisaligned       = &Error{Kind: KindMisaligned}
	ErrOverflow         = &Error{Kind: KindOverflow}
	ErrNotFound         = &Error{Kind: KindNotFound}
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Type != "" {
		b.WriteString(": type ")
		b.WriteString(e.Type)
	}

	if e.Detail != "" {
		if e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target without a Phase matches on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Join returns an error wrapping errs, or nil if every entry is nil.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the memory type name
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// OutOfBounds creates an error for an access of size bytes at addr that does
// not fit a buffer of length bytes.
func OutOfBounds(phase Phase, typ string, addr uint64, size, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Type:   typ,
		Detail: fmt.Sprintf("access [%d, %d) exceeds buffer of %d bytes", addr, addr+uint64(size), length),
		Value:  addr,
	}
}

// Unbound creates an error for an operation on a view with no buffer
func Unbound(phase Phase, typ string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnbound,
		Type:   typ,
		Detail: "view is not bound to a buffer",
	}
}

// NotConfigured creates an error for an access through a view that has no
// native width
func NotConfigured(phase Phase, typ string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnbound,
		Type:   typ,
		Detail: "view has no native width configured",
	}
}

// UnsupportedWidth creates an error for a native width other than 4 or 8
func UnsupportedWidth(phase Phase, width uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupportedWidth,
		Detail: fmt.Sprintf("native width %d, expected 4 or 8", width),
		Value:  width,
	}
}

// NoActiveEvent creates an error for an encode request outside a dispatch
func NoActiveEvent() *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindNoActiveEvent,
		Detail: "no event is being dispatched",
	}
}

// Misaligned creates an error for an array window at an unaligned address
func Misaligned(phase Phase, typ string, addr uint32, align uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMisaligned,
		Type:   typ,
		Detail: fmt.Sprintf("address %d is not a multiple of %d", addr, align),
		Value:  addr,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, value any, targetType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Type:   targetType,
		Detail: fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:  value,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Runtime package convenience constructors

// NotInitialized creates a not-initialized error for missing module/instance
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindInstantiation,
		Detail: "instantiate module",
		Cause:  cause,
	}
}

// GuestTrap creates an error for a guest that trapped during a callback
func GuestTrap(export string, cause error) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindGuestTrap,
		Detail: fmt.Sprintf("guest export %q trapped", export),
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
