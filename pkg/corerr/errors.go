// Package corerr defines the closed error taxonomy used across the core
//: Configuration, IO, Corruption, NotFound, EmptyQuery,
// ClusterUnavailable, Deadline, and Upstream. The HTTP-facing translation
// to status codes happens outside this module's scope; callers branch on
// Kind instead of string-matching errors.
package corerr

import "fmt"

// Kind is the closed taxonomy of error categories the core raises.
type Kind int

const (
	// KindConfiguration signals a bad or missing configuration value.
	KindConfiguration Kind = iota
	// KindIO signals a failure reading or writing a durable store.
	KindIO
	// KindCorruption signals an invariant violated in a persisted
	// artifact; never recovered locally, always surfaced with identity.
	KindCorruption
	// KindNotFound signals an absent node, edge, or document.
	KindNotFound
	// KindEmptyQuery signals a query with no usable terms.
	KindEmptyQuery
	// KindClusterUnavailable signals the cluster could not be reached.
	KindClusterUnavailable
	// KindDeadline signals an RPC missed its deadline.
	KindDeadline
	// KindUpstream wraps an error returned by a shard.
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindIO:
		return "io"
	case KindCorruption:
		return "corruption"
	case KindNotFound:
		return "not_found"
	case KindEmptyQuery:
		return "empty_query"
	case KindClusterUnavailable:
		return "cluster_unavailable"
	case KindDeadline:
		return "deadline"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// CoreError is a typed error carrying a Kind plus optional shard/segment
// identity, so the fan-out coordinator (pkg/fanout) can branch on category
// instead of matching strings, and so Corruption errors keep the identity
// of the segment that raised them through to the caller.
type CoreError struct {
	Kind    Kind
	Op      string // operation that failed, e.g. "edgestore.GetWithoutLabel"
	Subject string // shard/segment identity, when relevant
	Err     error
}

func (e *CoreError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s: %s (%s): %v", e.Kind, e.Op, e.Subject, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *CoreError) Unwrap() error { return e.Err }

// New constructs a CoreError.
func New(kind Kind, op string, err error) *CoreError {
	return &CoreError{Kind: kind, Op: op, Err: err}
}

// WithSubject attaches shard/segment identity to a CoreError.
func WithSubject(kind Kind, op, subject string, err error) *CoreError {
	return &CoreError{Kind: kind, Op: op, Subject: subject, Err: err}
}

// Is reports whether err is a CoreError of the given Kind.
func Is(err error, kind Kind) bool {
	var ce *CoreError
	for err != nil {
		if c, ok := err.(*CoreError); ok {
			ce = c
			break
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return ce != nil && ce.Kind == kind
}
