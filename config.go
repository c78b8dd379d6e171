package stmtcache

import (
	"github.com/cockroachdb/errors"
	"github.com/prashanthpai/stmtcache/cache"
)

// Config is the configuration passed to NewStatementCache and Open.
type Config struct {
	// Mode selects the caching strategy. Defaults to cache.Unbounded.
	Mode cache.Mode
	// MaxStatements is the number of prepared statements kept per
	// connection. Required when Mode is cache.Bounded, ignored otherwise.
	MaxStatements int64
	// Backend renders bind parameters and describes bound values. Required
	// by Open.
	Backend cache.Backend
	// OnError is called for failures that can't be returned to a caller,
	// such as closing a statement evicted in the background. Since stmtcache
	// does not log, use this hook to log or count them.
	OnError func(error)
}

func (c *Config) validate() error {
	if c == nil {
		return ErrNilConfig
	}
	switch c.Mode {
	case cache.Unbounded, cache.Disabled:
	case cache.Bounded:
		if c.MaxStatements <= 0 {
			return errors.Newf("stmtcache: MaxStatements must be positive in %s mode", c.Mode)
		}
	default:
		return errors.Newf("stmtcache: unknown mode %d", int(c.Mode))
	}
	return nil
}

// NewStrategy returns the strategy selected by config.
func NewStrategy[S any](config *Config) (cache.Strategy[S], error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return newStrategy[S](config.Mode, config.MaxStatements, config.OnError)
}

func newStrategy[S any](mode cache.Mode, maxStatements int64, onErr func(error)) (cache.Strategy[S], error) {
	switch mode {
	case cache.Unbounded:
		return NewWithCache[S](), nil
	case cache.Disabled:
		return WithoutCache[S]{}, nil
	case cache.Bounded:
		b, err := NewBounded[S](maxStatements, onErr)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, errors.Newf("stmtcache: unknown mode %d", int(mode))
	}
}
