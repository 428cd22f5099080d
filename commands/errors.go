// Package commands implements the dispatch and handler surface of spec.md
// §6: case-insensitive command lookup, arity validation, and the typed
// error taxonomy of §7, built the way AKJUS-bsc-erigon wraps sentinel
// errors with github.com/pkg/errors throughout its RPC and state-transition
// packages.
package commands

import "github.com/pkg/errors"

// Kind is one of spec.md §7's typed error kinds, surfaced to the
// connection as a typed error reply.
type Kind int

const (
	WrongType Kind = iota
	Syntax
	Range
	Overflow
	NoKey
	ExecAbort
	ClusterMode
	ReadOnly
	Loading
)

func (k Kind) String() string {
	switch k {
	case WrongType:
		return "WRONGTYPE"
	case Syntax:
		return "SYNTAX"
	case Range:
		return "RANGE"
	case Overflow:
		return "OVERFLOW"
	case NoKey:
		return "NOKEY"
	case ExecAbort:
		return "EXECABORT"
	case ClusterMode:
		return "CLUSTERMODE"
	case ReadOnly:
		return "READONLY"
	case Loading:
		return "LOADING"
	default:
		return "ERR"
	}
}

// TypedError pairs a Kind with a message, the unit commands.Dispatch
// returns to the caller as an error-kind Reply.
type TypedError struct {
	Kind Kind
	msg  string
}

func (e *TypedError) Error() string { return e.Kind.String() + " " + e.msg }

// newErr constructs a TypedError wrapped with a stack trace via
// pkg/errors, matching the corpus's error-origination idiom.
func newErr(kind Kind, msg string) error {
	return errors.WithStack(&TypedError{Kind: kind, msg: msg})
}

// AsTypedError extracts the *TypedError cause from err, if any — handlers
// return errors.WithStack-wrapped TypedErrors, errReply stores them
// unchanged in Reply.Err, and this looks through the wrapping.
func AsTypedError(err error) (*TypedError, bool) {
	te, ok := errors.Cause(err).(*TypedError)
	return te, ok
}

func errWrongType() error { return newErr(WrongType, "Operation against a key holding the wrong kind of value") }
func errSyntax() error    { return newErr(Syntax, "syntax error") }
func errRange(msg string) error { return newErr(Range, msg) }
func errOverflow(msg string) error { return newErr(Overflow, msg) }
func errNoKey(msg string) error { return newErr(NoKey, msg) }
func errExecAbort(msg string) error { return newErr(ExecAbort, msg) }
func errReadOnly() error { return newErr(ReadOnly, "You can't write against a read only replica.") }
