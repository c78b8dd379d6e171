package cache

import (
	"io"
)

// Mode reports how a Strategy retains prepared statements.
type Mode int

const (
	// Unbounded keeps every prepared statement for the life of the owning
	// connection.
	Unbounded Mode = iota
	// Disabled never keeps a prepared statement.
	Disabled
	// Bounded keeps at most a fixed number of prepared statements, evicting
	// the ones least likely to be reused.
	Bounded
)

func (m Mode) String() string {
	switch m {
	case Unbounded:
		return "unbounded"
	case Disabled:
		return "disabled"
	case Bounded:
		return "bounded"
	default:
		return "unknown"
	}
}

// PrepareSignal tells the prepare operation whether the statement it
// produces is going to be cached. Some backends plan a statement differently
// when the plan will be reused.
type PrepareSignal int

const (
	// WillCache means the prepared statement will be retained and reused.
	WillCache PrepareSignal = iota
	// WontCache means the prepared statement is used once.
	WontCache
)

func (p PrepareSignal) String() string {
	if p == WillCache {
		return "will-cache"
	}
	return "wont-cache"
}

// Backend renders the backend specific parts of a query: bind parameter
// markers and the type metadata of bound values.
type Backend interface {
	// Name identifies the backend, e.g. "postgres".
	Name() string
	// BindParam returns the marker of the n-th bind parameter, starting at 1.
	BindParam(n int) string
	// BindType returns the metadata the backend associates with a bound
	// value. Keys built from the same SQL but different bind types are
	// distinct.
	BindType(v any) any
}

// QuerySource renders a query shape into SQL text for a backend.
type QuerySource interface {
	ToSQL(b Backend) (string, error)
}

// StaticQuery is implemented by query sources whose SQL text is fully
// determined by a stable identity. Such queries are keyed by that identity
// and only rendered on a cache miss.
type StaticQuery interface {
	QueryID() (string, bool)
}

// CacheSafe is implemented by query sources that may not be safe to keep
// prepared, e.g. queries whose SQL text changes with the number of bound
// values.
type CacheSafe interface {
	SafeToCachePrepared(b Backend) bool
}

// PrepareFunc prepares sql on the owning connection. signal reports whether
// the resulting statement will be cached.
type PrepareFunc[S any] func(sql string, signal PrepareSignal) (S, error)

// Strategy decides whether prepared statements are retained.
//
// A Strategy belongs to exactly one connection and is not safe for
// concurrent use.
type Strategy[S any] interface {
	// Mode returns which caching mode is implemented. It never changes for
	// a given instance.
	Mode() Mode
	// Get resolves key to a prepared statement, calling prepare when the
	// strategy has no reusable statement for it. Errors from rendering or
	// preparing are returned unchanged and leave the strategy untouched.
	Get(key Key, b Backend, source QuerySource, prepare PrepareFunc[S]) (MaybeCached[S], error)
}

// MaybeCached wraps a prepared statement and tells whether it is owned by a
// Strategy (cached) or by the caller.
//
// A cached statement must not be closed by the caller and must not be
// retained past the statement execution that follows Get. A statement that
// is not cached belongs to the caller, see Release.
type MaybeCached[S any] struct {
	stmt   S
	cached bool
}

// Cached returns a MaybeCached for a statement owned by a Strategy.
func Cached[S any](stmt S) MaybeCached[S] {
	return MaybeCached[S]{stmt: stmt, cached: true}
}

// NotCached returns a MaybeCached for a statement now owned by the caller.
func NotCached[S any](stmt S) MaybeCached[S] {
	return MaybeCached[S]{stmt: stmt}
}

// Statement returns the prepared statement.
func (m MaybeCached[S]) Statement() S {
	return m.stmt
}

// IsCached reports whether the statement is owned by the Strategy.
func (m MaybeCached[S]) IsCached() bool {
	return m.cached
}

// Release closes a statement that is not cached when it implements
// io.Closer. Cached statements are left alone.
func (m MaybeCached[S]) Release() error {
	if m.cached {
		return nil
	}
	if c, ok := any(m.stmt).(io.Closer); ok {
		return c.Close()
	}
	return nil
}
