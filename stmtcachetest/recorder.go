package stmtcachetest

import (
	"sync"
)

// Outcome of a call to cache.Strategy.Get.
type Outcome int

const (
	// UseCached means the statement was taken from the cache.
	UseCached Outcome = iota
	// Cache means the statement was prepared and put in the cache.
	Cache
	// DontCache means the statement was prepared and not cached.
	DontCache
)

func (o Outcome) String() string {
	switch o {
	case UseCached:
		return "UseCached"
	case Cache:
		return "Cache"
	case DontCache:
		return "DontCache"
	default:
		return "Unknown"
	}
}

// Call records one successful call to cache.Strategy.Get.
type Call struct {
	SQL     string
	Outcome Outcome
}

// Calls is the set of calls drained from a Log.
type Calls struct {
	Calls []Call
}

// Count returns how many calls had outcome o.
func (c Calls) Count(o Outcome) int {
	n := 0
	for _, call := range c.Calls {
		if call.Outcome == o {
			n++
		}
	}
	return n
}

// IsEmpty reports whether no call was recorded.
func (c Calls) IsEmpty() bool {
	return len(c.Calls) == 0
}

// Log is an ordered record of calls made through observing strategies.
// The zero value is ready to use.
type Log struct {
	mu    sync.Mutex
	calls []Call
}

func (l *Log) record(call Call) {
	l.mu.Lock()
	l.calls = append(l.calls, call)
	l.mu.Unlock()
}

// Consume returns every call recorded so far and clears the log.
func (l *Log) Consume() Calls {
	l.mu.Lock()
	defer l.mu.Unlock()

	calls := l.calls
	l.calls = nil
	return Calls{Calls: calls}
}

var defaultLog Log

// ConsumeCalls drains the log used by strategies created with Wrap.
func ConsumeCalls() Calls {
	return defaultLog.Consume()
}
