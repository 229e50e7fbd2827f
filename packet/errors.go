package packet

import "fmt"

// ErrorKind classifies a HeaderParseError.
type ErrorKind int

const (
	// TruncatedHeader: fewer bytes remain than a fixed-size header needs.
	TruncatedHeader ErrorKind = iota + 1
	// TruncatedOption: an NDP option header or value runs past the buffer.
	TruncatedOption
	// MalformedOption: an NDP option field violates a protocol constraint.
	MalformedOption
	// TruncatedBody: not enough bytes to fold a checksum over.
	TruncatedBody
)

func (k ErrorKind) String() string {
	switch k {
	case TruncatedHeader:
		return "TruncatedHeader"
	case TruncatedOption:
		return "TruncatedOption"
	case MalformedOption:
		return "MalformedOption"
	case TruncatedBody:
		return "TruncatedBody"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// HeaderParseError is returned by every parse and decode in this package.
// errors.Is matches any two HeaderParseErrors of the same Kind, so the
// Err* sentinels below can be used to test for a kind.
type HeaderParseError struct {
	Kind ErrorKind
	Msg  string
}

func (e *HeaderParseError) Error() string {
	return e.Msg
}

func (e *HeaderParseError) Is(target error) bool {
	t, ok := target.(*HeaderParseError)
	return ok && t.Kind == e.Kind
}

var (
	ErrTruncatedHeader = &HeaderParseError{Kind: TruncatedHeader, Msg: "truncated header"}
	ErrTruncatedOption = &HeaderParseError{Kind: TruncatedOption, Msg: "truncated NDP option"}
	ErrMalformedOption = &HeaderParseError{Kind: MalformedOption, Msg: "malformed NDP option"}
	ErrTruncatedBody   = &HeaderParseError{Kind: TruncatedBody, Msg: "truncated checksum body"}
)

func parseError(kind ErrorKind, format string, args ...any) error {
	return &HeaderParseError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
