package stmtcache

import (
	"io"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dgraph-io/ristretto"
	"github.com/prashanthpai/stmtcache/cache"
)

// Bounded implements cache.Strategy on top of ristretto, keeping at most a
// fixed number of prepared statements.
//
// Statements evicted or rejected by ristretto are not closed right away:
// a caller may still be executing one. They are closed at the start of the
// next Get, or by Close.
type Bounded[S any] struct {
	c     *ristretto.Cache
	max   int64
	onErr func(error)

	mu      sync.Mutex
	live    map[*slot[S]]struct{}
	retired []*slot[S]
}

// NewBounded creates a strategy keeping at most maxStatements prepared
// statements. onErr, when set, receives errors from closing evicted
// statements.
func NewBounded[S any](maxStatements int64, onErr func(error)) (*Bounded[S], error) {
	if maxStatements <= 0 {
		return nil, errors.Newf("stmtcache: max statements must be positive, got %d", maxStatements)
	}

	b := &Bounded[S]{
		max:   maxStatements,
		onErr: onErr,
		live:  make(map[*slot[S]]struct{}),
	}

	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        10 * maxStatements,
		MaxCost:            maxStatements,
		BufferItems:        64,
		IgnoreInternalCost: true,
		OnEvict:            b.retire,
		OnReject:           b.retire,
	})
	if err != nil {
		return nil, errors.Wrap(err, "stmtcache: creating ristretto cache")
	}
	b.c = c

	return b, nil
}

func (b *Bounded[S]) retire(item *ristretto.Item) {
	s, ok := item.Value.(*slot[S])
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.live[s]; !ok {
		return
	}
	delete(b.live, s)
	b.retired = append(b.retired, s)
}

// Mode returns cache.Bounded.
func (b *Bounded[S]) Mode() cache.Mode {
	return cache.Bounded
}

// Get returns the cached statement for key, preparing and admitting it on a
// miss. A statement ristretto refuses to buffer is returned as not cached.
func (b *Bounded[S]) Get(key cache.Key, backend cache.Backend, source cache.QuerySource, prepare cache.PrepareFunc[S]) (cache.MaybeCached[S], error) {
	b.closeRetired()

	signal := cache.WillCache
	if v, ok := b.c.Get(key.Hash()); ok {
		s, ok := v.(*slot[S])
		if ok && s.key.Equal(key) {
			return cache.Cached(s.stmt), nil
		}
		// another key owns this hash
		signal = cache.WontCache
	}

	sql, err := key.SQL(source, backend)
	if err != nil {
		return cache.MaybeCached[S]{}, err
	}
	stmt, err := prepare(sql, signal)
	if err != nil {
		return cache.MaybeCached[S]{}, err
	}
	if signal == cache.WontCache {
		return cache.NotCached(stmt), nil
	}

	s := &slot[S]{key: key, stmt: stmt}
	b.mu.Lock()
	b.live[s] = struct{}{}
	b.mu.Unlock()

	if !b.c.Set(key.Hash(), s, 1) {
		b.mu.Lock()
		delete(b.live, s)
		b.mu.Unlock()
		return cache.NotCached(stmt), nil
	}
	b.c.Wait()

	return cache.Cached(stmt), nil
}

// MaxStatements returns the capacity the strategy was created with.
func (b *Bounded[S]) MaxStatements() int64 {
	return b.max
}

// Len returns the number of statements currently held, including evicted
// ones that are not closed yet.
func (b *Bounded[S]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.live) + len(b.retired)
}

func (b *Bounded[S]) closeRetired() {
	b.mu.Lock()
	retired := b.retired
	b.retired = nil
	b.mu.Unlock()

	for _, s := range retired {
		if err := closeStmt(s.stmt); err != nil && b.onErr != nil {
			b.onErr(errors.Wrapf(err, "stmtcache: closing evicted statement %s", s.key))
		}
	}
}

// Close stops ristretto and closes every statement held by the strategy.
func (b *Bounded[S]) Close() error {
	b.c.Close()

	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	for s := range b.live {
		err = errors.CombineErrors(err, closeStmt(s.stmt))
	}
	for _, s := range b.retired {
		err = errors.CombineErrors(err, closeStmt(s.stmt))
	}
	b.live = make(map[*slot[S]]struct{})
	b.retired = nil

	return err
}

func closeStmt(stmt any) error {
	if c, ok := stmt.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
