package stmtcache

import (
	"github.com/cockroachdb/errors"
	"github.com/prashanthpai/stmtcache/cache"
)

type slot[S any] struct {
	key  cache.Key
	stmt S
}

// WithCache implements cache.Strategy by keeping every prepared statement
// for as long as the owning connection is alive.
type WithCache[S any] struct {
	slots map[uint64][]*slot[S]
	n     int
}

// NewWithCache returns an empty unbounded strategy.
func NewWithCache[S any]() *WithCache[S] {
	return &WithCache[S]{
		slots: make(map[uint64][]*slot[S]),
	}
}

// entry is the result of a single lookup: either the occupied slot for a
// key or the position where it would be inserted.
type entry[S any] struct {
	c    *WithCache[S]
	key  cache.Key
	slot *slot[S]
}

func (c *WithCache[S]) entry(key cache.Key) entry[S] {
	for _, s := range c.slots[key.Hash()] {
		if s.key.Equal(key) {
			return entry[S]{c: c, key: key, slot: s}
		}
	}
	return entry[S]{c: c, key: key}
}

func (e entry[S]) occupied() bool {
	return e.slot != nil
}

func (e entry[S]) insert(stmt S) *slot[S] {
	s := &slot[S]{key: e.key, stmt: stmt}
	h := e.key.Hash()
	e.c.slots[h] = append(e.c.slots[h], s)
	e.c.n++
	return s
}

// Mode returns cache.Unbounded.
func (c *WithCache[S]) Mode() cache.Mode {
	return cache.Unbounded
}

// Get returns the cached statement for key. On a miss the SQL is rendered,
// prepared with cache.WillCache and stored; nothing is stored when either
// step fails.
func (c *WithCache[S]) Get(key cache.Key, b cache.Backend, source cache.QuerySource, prepare cache.PrepareFunc[S]) (cache.MaybeCached[S], error) {
	e := c.entry(key)
	if e.occupied() {
		return cache.Cached(e.slot.stmt), nil
	}

	sql, err := key.SQL(source, b)
	if err != nil {
		return cache.MaybeCached[S]{}, err
	}
	stmt, err := prepare(sql, cache.WillCache)
	if err != nil {
		return cache.MaybeCached[S]{}, err
	}

	return cache.Cached(e.insert(stmt).stmt), nil
}

// Len returns the number of cached statements.
func (c *WithCache[S]) Len() int {
	return c.n
}

// Close closes every cached statement implementing io.Closer and empties
// the cache.
func (c *WithCache[S]) Close() error {
	var err error
	for _, bucket := range c.slots {
		for _, s := range bucket {
			err = errors.CombineErrors(err, closeStmt(s.stmt))
		}
	}
	c.slots = make(map[uint64][]*slot[S])
	c.n = 0
	return err
}

// WithoutCache implements cache.Strategy by preparing every statement
// afresh and never keeping it.
type WithoutCache[S any] struct{}

// Mode returns cache.Disabled.
func (WithoutCache[S]) Mode() cache.Mode {
	return cache.Disabled
}

// Get renders and prepares key with cache.WontCache. The statement is
// handed to the caller.
func (WithoutCache[S]) Get(key cache.Key, b cache.Backend, source cache.QuerySource, prepare cache.PrepareFunc[S]) (cache.MaybeCached[S], error) {
	sql, err := key.SQL(source, b)
	if err != nil {
		return cache.MaybeCached[S]{}, err
	}
	stmt, err := prepare(sql, cache.WontCache)
	if err != nil {
		return cache.MaybeCached[S]{}, err
	}
	return cache.NotCached(stmt), nil
}
