package stmtcache

import "github.com/cockroachdb/errors"

var (
	// ErrNilConfig is returned by constructors given a nil *Config.
	ErrNilConfig = errors.New("stmtcache: config can't be nil")
	// ErrMalformedQuery is returned when a query can't be rendered, e.g. it
	// contains an unclosed literal.
	ErrMalformedQuery = errors.New("stmtcache: malformed query")
	// ErrParamCount is returned when a query declares a number of bind
	// parameters different from the markers found in its text.
	ErrParamCount = errors.New("stmtcache: bind parameter count mismatch")
	// ErrConnClosed is returned when using a closed Conn.
	ErrConnClosed = errors.New("stmtcache: connection is closed")
)
