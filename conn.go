package stmtcache

import (
	"context"
	"database/sql"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/prashanthpai/stmtcache/cache"
)

// Conn is a single database connection whose prepared statements are
// managed by a StatementCache.
//
// Like the *sql.Conn it wraps, a Conn is meant to be used by one goroutine
// at a time.
type Conn struct {
	conn    *sql.Conn
	backend cache.Backend
	stmts   *StatementCache[*sql.Stmt]
	onErr   func(error)
	stats   Stats
	closed  bool
}

// ConnConfig is the configuration passed to Open.
type ConnConfig struct {
	Config
	// Strategy, when set, is used instead of the strategy selected by
	// Mode.
	Strategy cache.Strategy[*sql.Stmt]
}

// Open takes a connection from db and returns a Conn using it. The
// connection is returned to db's pool by Close.
func Open(ctx context.Context, db *sql.DB, config *ConnConfig) (*Conn, error) {
	if config == nil {
		return nil, ErrNilConfig
	}
	if config.Backend == nil {
		return nil, errors.New("stmtcache: Backend must be set in Config")
	}

	var stmts *StatementCache[*sql.Stmt]
	if config.Strategy != nil {
		stmts = NewStatementCacheWithStrategy(config.Strategy)
		stmts.onErr = config.OnError
	} else {
		var err error
		stmts, err = NewStatementCache[*sql.Stmt](&config.Config)
		if err != nil {
			return nil, err
		}
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = stmts.Close()
		return nil, errors.Wrap(err, "stmtcache: acquiring connection")
	}

	return &Conn{
		conn:    conn,
		backend: config.Backend,
		stmts:   stmts,
		onErr:   config.OnError,
	}, nil
}

// ExecContext executes q with args on a statement obtained from the cache.
func (c *Conn) ExecContext(ctx context.Context, q cache.QuerySource, args ...any) (sql.Result, error) {
	m, err := c.statement(ctx, q, args)
	if err != nil {
		return nil, err
	}

	res, err := m.Statement().ExecContext(ctx, args...)
	c.release(m)
	return res, err
}

// QueryContext runs q with args on a statement obtained from the cache. The
// returned Rows must be closed.
func (c *Conn) QueryContext(ctx context.Context, q cache.QuerySource, args ...any) (*Rows, error) {
	m, err := c.statement(ctx, q, args)
	if err != nil {
		return nil, err
	}

	rows, err := m.Statement().QueryContext(ctx, args...)
	if err != nil {
		c.release(m)
		return nil, err
	}

	return &Rows{
		Rows:    rows,
		release: m.Release,
	}, nil
}

func (c *Conn) statement(ctx context.Context, q cache.QuerySource, args []any) (cache.MaybeCached[*sql.Stmt], error) {
	if c.closed {
		return cache.MaybeCached[*sql.Stmt]{}, ErrConnClosed
	}

	prepared := false
	prepare := func(query string, _ cache.PrepareSignal) (*sql.Stmt, error) {
		prepared = true
		return c.conn.PrepareContext(ctx, query)
	}

	m, err := c.stmts.CachedStatement(q, c.backend, bindTypes(c.backend, args), prepare)
	if err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return m, errors.Wrap(err, "stmtcache: preparing statement")
	}

	switch {
	case !m.IsCached():
		atomic.AddUint64(&c.stats.Uncached, 1)
	case prepared:
		atomic.AddUint64(&c.stats.Misses, 1)
	default:
		atomic.AddUint64(&c.stats.Hits, 1)
	}

	return m, nil
}

func (c *Conn) release(m cache.MaybeCached[*sql.Stmt]) {
	if err := m.Release(); err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		if c.onErr != nil {
			c.onErr(errors.Wrap(err, "stmtcache: closing statement"))
		}
	}
}

// Mode returns the caching mode in use.
func (c *Conn) Mode() cache.Mode {
	return c.stmts.Mode()
}

// SetMode switches the connection to a new caching mode, closing the
// statements cached so far.
func (c *Conn) SetMode(mode cache.Mode, maxStatements int64) error {
	return c.stmts.SetMode(mode, maxStatements)
}

// Close closes the cached statements and returns the connection to the
// pool. Calling Close more than once is a no-op.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	err := c.stmts.Close()
	return errors.CombineErrors(err, c.conn.Close())
}

// Stats contains statement cache statistics of a Conn.
type Stats struct {
	// Hits counts statements served from the cache.
	Hits uint64
	// Misses counts statements prepared and then cached.
	Misses uint64
	// Uncached counts statements prepared for a single use.
	Uncached uint64
	// Errors counts failures to prepare or release statements.
	Errors uint64
}

// Stats returns statement cache stats.
func (c *Conn) Stats() *Stats {
	return &Stats{
		Hits:     atomic.LoadUint64(&c.stats.Hits),
		Misses:   atomic.LoadUint64(&c.stats.Misses),
		Uncached: atomic.LoadUint64(&c.stats.Uncached),
		Errors:   atomic.LoadUint64(&c.stats.Errors),
	}
}
