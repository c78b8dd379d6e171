// Package stmtcachetest provides utilities to introspect statement caching
// in tests.
package stmtcachetest

import (
	"github.com/prashanthpai/stmtcache/cache"
)

// Strategy wraps a cache.Strategy and records the outcome of every
// successful call to Get in a Log.
type Strategy[S any] struct {
	inner cache.Strategy[S]
	log   *Log
}

// New wraps inner, recording into log. The log is cleared so that calls made
// before the new strategy existed don't leak into it.
func New[S any](inner cache.Strategy[S], log *Log) *Strategy[S] {
	log.Consume()
	return &Strategy[S]{
		inner: inner,
		log:   log,
	}
}

// Wrap wraps inner, recording into the package log drained by
// ConsumeCalls.
func Wrap[S any](inner cache.Strategy[S]) *Strategy[S] {
	return New(inner, &defaultLog)
}

// Mode returns the mode of the wrapped strategy.
func (s *Strategy[S]) Mode() cache.Mode {
	return s.inner.Mode()
}

// Get forwards to the wrapped strategy, watching which signal, if any, it
// prepares the statement with.
func (s *Strategy[S]) Get(key cache.Key, b cache.Backend, source cache.QuerySource, prepare cache.PrepareFunc[S]) (cache.MaybeCached[S], error) {
	sql, err := key.SQL(source, b)
	if err != nil {
		return cache.MaybeCached[S]{}, err
	}

	outcome := UseCached
	res, err := s.inner.Get(key, b, source, func(sql string, signal cache.PrepareSignal) (S, error) {
		if signal == cache.WillCache {
			outcome = Cache
		} else {
			outcome = DontCache
		}
		return prepare(sql, signal)
	})
	if err != nil {
		return res, err
	}

	s.log.record(Call{SQL: sql, Outcome: outcome})
	return res, nil
}
