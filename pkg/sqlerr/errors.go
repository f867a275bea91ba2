// Package sqlerr classifies low-level driver and network failures into a
// small closed taxonomy of error kinds.
//
// Every database-facing operation in this module returns either a result or
// an *Error. Classification happens once, at the connection or execution
// boundary; callers inspect Kind to decide whether a retry makes sense.
package sqlerr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is one member of the closed error taxonomy.
type Kind int

const (
	// KindDatabaseError is the generic execution-time failure.
	KindDatabaseError Kind = iota
	// KindConnectionError is the generic connect-time failure.
	KindConnectionError
	KindConnectionRefused
	KindAccessDenied
	KindHostNotFound
	KindHostNotReachable
	KindInvalidConnection
	KindUniqueViolation
	KindDeadlock
	KindForeignKeyViolation
	// KindUnsupportedOperation is raised before any network call when a
	// capability-gated feature is requested.
	KindUnsupportedOperation
	// KindConstructionError is raised while building a statement or bind
	// value, e.g. for an invalid time zone.
	KindConstructionError
)

var kindNames = map[Kind]string{
	KindDatabaseError:        "DatabaseError",
	KindConnectionError:      "ConnectionError",
	KindConnectionRefused:    "ConnectionRefused",
	KindAccessDenied:         "AccessDenied",
	KindHostNotFound:         "HostNotFound",
	KindHostNotReachable:     "HostNotReachable",
	KindInvalidConnection:    "InvalidConnection",
	KindUniqueViolation:      "UniqueViolation",
	KindDeadlock:             "Deadlock",
	KindForeignKeyViolation:  "ForeignKeyViolation",
	KindUnsupportedOperation: "UnsupportedOperation",
	KindConstructionError:    "ConstructionError",
}

// String returns the taxonomy name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Retryable reports whether a caller may reasonably retry an operation that
// failed with this kind. Deadlocks and transient connection failures qualify.
func (k Kind) Retryable() bool {
	switch k {
	case KindDeadlock, KindConnectionRefused, KindHostNotReachable:
		return true
	default:
		return false
	}
}

// Sentinels for errors.Is checks. Only Kind is compared.
var (
	ErrDatabase          = &Error{Kind: KindDatabaseError}
	ErrConnection        = &Error{Kind: KindConnectionError}
	ErrConnectionRefused = &Error{Kind: KindConnectionRefused}
	ErrAccessDenied      = &Error{Kind: KindAccessDenied}
	ErrHostNotFound      = &Error{Kind: KindHostNotFound}
	ErrHostNotReachable  = &Error{Kind: KindHostNotReachable}
	ErrInvalidConnection = &Error{Kind: KindInvalidConnection}
	ErrUniqueViolation   = &Error{Kind: KindUniqueViolation}
	ErrDeadlock          = &Error{Kind: KindDeadlock}
	ErrForeignKey        = &Error{Kind: KindForeignKeyViolation}
	ErrUnsupported       = &Error{Kind: KindUnsupportedOperation}
	ErrConstruction      = &Error{Kind: KindConstructionError}
)

// Error is a classified failure. It keeps the original low-level code and
// message and, for execution failures, the statement and its parameters.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	SQL     string
	Params  []any
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Code != "" {
		b.WriteString(" [")
		b.WriteString(e.Code)
		b.WriteString("]")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.SQL != "" {
		b.WriteString(" (sql: ")
		b.WriteString(e.SQL)
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap exposes the raw driver error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the Err* sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Retryable reports whether the failure is a retry candidate.
func (e *Error) Retryable() bool {
	return e.Kind.Retryable()
}

// WithStatement returns a copy of e carrying the offending SQL and parameters.
func (e *Error) WithStatement(sql string, params []any) *Error {
	c := *e
	c.SQL = sql
	c.Params = params
	return &c
}

// New classifies err as the given kind without consulting a rule table.
// Use it where the boundary already knows the kind, e.g. a failed detach.
func New(kind Kind, err error) *Error {
	if err == nil {
		return &Error{Kind: kind}
	}
	if classified, ok := As(err); ok {
		return classified
	}
	return &Error{Kind: kind, Message: err.Error(), Err: err}
}

// Unsupported reports a capability-gated feature.
func Unsupported(format string, args ...any) *Error {
	return &Error{Kind: KindUnsupportedOperation, Message: fmt.Sprintf(format, args...)}
}

// Construction reports a failure while building a statement or bind value.
func Construction(msg string, err error) *Error {
	e := &Error{Kind: KindConstructionError, Message: msg, Err: err}
	if err != nil {
		e.Message = msg + ": " + err.Error()
	}
	return e
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of a classified error, or KindDatabaseError for
// anything else.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindDatabaseError
}

// IsKind reports whether err is a classified error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

// IsRetryable reports whether err is a classified, retryable failure.
func IsRetryable(err error) bool {
	e, ok := As(err)
	return ok && e.Retryable()
}
