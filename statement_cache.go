package stmtcache

import (
	"io"

	"github.com/prashanthpai/stmtcache/cache"
)

// StatementCache routes the statements of one connection through a
// cache.Strategy. It is owned by that connection and is not safe for
// concurrent use.
type StatementCache[S any] struct {
	strategy cache.Strategy[S]
	onErr    func(error)
}

// NewStatementCache returns a StatementCache using the strategy selected by
// config.
func NewStatementCache[S any](config *Config) (*StatementCache[S], error) {
	strategy, err := NewStrategy[S](config)
	if err != nil {
		return nil, err
	}

	return &StatementCache[S]{
		strategy: strategy,
		onErr:    config.OnError,
	}, nil
}

// NewStatementCacheWithStrategy returns a StatementCache using strategy,
// e.g. one wrapped for introspection in tests.
func NewStatementCacheWithStrategy[S any](strategy cache.Strategy[S]) *StatementCache[S] {
	return &StatementCache[S]{
		strategy: strategy,
	}
}

// Mode returns the mode of the current strategy.
func (sc *StatementCache[S]) Mode() cache.Mode {
	return sc.strategy.Mode()
}

// Strategy returns the current strategy.
func (sc *StatementCache[S]) Strategy() cache.Strategy[S] {
	return sc.strategy
}

// CachedStatement returns a prepared statement for source. Sources that
// report themselves unsafe to cache are prepared with cache.WontCache
// without consulting the strategy. Everything else is keyed with
// cache.ForSource and resolved by the strategy.
func (sc *StatementCache[S]) CachedStatement(source cache.QuerySource, b cache.Backend, bindTypes []any, prepare cache.PrepareFunc[S]) (cache.MaybeCached[S], error) {
	if cs, ok := source.(cache.CacheSafe); ok && !cs.SafeToCachePrepared(b) {
		sql, err := source.ToSQL(b)
		if err != nil {
			return cache.MaybeCached[S]{}, err
		}
		stmt, err := prepare(sql, cache.WontCache)
		if err != nil {
			return cache.MaybeCached[S]{}, err
		}
		return cache.NotCached(stmt), nil
	}

	key, err := cache.ForSource(source, b, bindTypes)
	if err != nil {
		return cache.MaybeCached[S]{}, err
	}

	return sc.strategy.Get(key, b, source, prepare)
}

// SetMode replaces the strategy with a fresh one for mode. The statements
// held by the previous strategy are closed. Nothing happens when mode is
// already in use, unless a Bounded strategy is asked for a different
// capacity.
func (sc *StatementCache[S]) SetMode(mode cache.Mode, maxStatements int64) error {
	if sc.strategy.Mode() == mode && !sc.resized(maxStatements) {
		return nil
	}

	strategy, err := newStrategy[S](mode, maxStatements, sc.onErr)
	if err != nil {
		return err
	}

	old := sc.strategy
	sc.strategy = strategy
	if c, ok := old.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (sc *StatementCache[S]) resized(maxStatements int64) bool {
	b, ok := sc.strategy.(*Bounded[S])
	return ok && b.MaxStatements() != maxStatements
}

// Close closes the statements held by the strategy.
func (sc *StatementCache[S]) Close() error {
	if c, ok := sc.strategy.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
