package stmtcachetest_test

import (
	"errors"
	"testing"

	"github.com/prashanthpai/stmtcache"
	"github.com/prashanthpai/stmtcache/cache"
	"github.com/prashanthpai/stmtcache/stmtcachetest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type stmt struct {
	sql string
}

func prepare(sql string, _ cache.PrepareSignal) (*stmt, error) {
	return &stmt{sql: sql}, nil
}

func get(t *testing.T, s cache.Strategy[*stmt], text string) cache.MaybeCached[*stmt] {
	q := stmtcache.Query{Text: text}
	key, err := cache.ForSource(q, stmtcache.Postgres, nil)
	require.NoError(t, err)

	m, err := s.Get(key, stmtcache.Postgres, q, prepare)
	require.NoError(t, err)
	return m
}

func TestObservingUnbounded(t *testing.T) {
	assert := require.New(t)

	var log stmtcachetest.Log
	s := stmtcachetest.New[*stmt](stmtcache.NewWithCache[*stmt](), &log)
	assert.Equal(cache.Unbounded, s.Mode())

	get(t, s, "SELECT 1")
	get(t, s, "SELECT 1")
	get(t, s, "SELECT name FROM users WHERE id = ?")

	calls := log.Consume()
	want := []stmtcachetest.Call{
		{SQL: "SELECT 1", Outcome: stmtcachetest.Cache},
		{SQL: "SELECT 1", Outcome: stmtcachetest.UseCached},
		{SQL: "SELECT name FROM users WHERE id = $1", Outcome: stmtcachetest.Cache},
	}
	if diff := cmp.Diff(want, calls.Calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(2, calls.Count(stmtcachetest.Cache))
	assert.Equal(1, calls.Count(stmtcachetest.UseCached))
	assert.Equal(0, calls.Count(stmtcachetest.DontCache))

	// draining clears the log
	assert.True(log.Consume().IsEmpty())
}

func TestObservingWithoutCache(t *testing.T) {
	assert := require.New(t)

	s := stmtcachetest.Wrap[*stmt](stmtcache.WithoutCache[*stmt]{})
	assert.Equal(cache.Disabled, s.Mode())

	for i := 0; i < 3; i++ {
		m := get(t, s, "SELECT 1")
		assert.False(m.IsCached())
	}

	calls := stmtcachetest.ConsumeCalls()
	assert.Len(calls.Calls, 3)
	assert.Equal(3, calls.Count(stmtcachetest.DontCache))
	assert.True(stmtcachetest.ConsumeCalls().IsEmpty())
}

func TestObservingClearsLogOnCreation(t *testing.T) {
	assert := require.New(t)

	var log stmtcachetest.Log
	s := stmtcachetest.New[*stmt](stmtcache.NewWithCache[*stmt](), &log)
	get(t, s, "SELECT 1")

	s = stmtcachetest.New[*stmt](stmtcache.NewWithCache[*stmt](), &log)
	assert.True(log.Consume().IsEmpty())

	get(t, s, "SELECT 1")
	assert.Equal(1, log.Consume().Count(stmtcachetest.Cache))
}

func TestObservingFailuresAreNotRecorded(t *testing.T) {
	assert := require.New(t)

	var log stmtcachetest.Log
	s := stmtcachetest.New[*stmt](stmtcache.NewWithCache[*stmt](), &log)

	prepareErr := errors.New("rejected")
	q := stmtcache.Query{Text: "SELECT 1"}
	key, err := cache.ForSource(q, stmtcache.Postgres, nil)
	assert.Nil(err)

	_, err = s.Get(key, stmtcache.Postgres, q, func(string, cache.PrepareSignal) (*stmt, error) {
		return nil, prepareErr
	})
	assert.Equal(prepareErr, err)

	// query id keys render when observed, and rendering can fail
	bad := stmtcache.Query{ID: "bad", Text: "SELECT 'unterminated"}
	key, err = cache.ForSource(bad, stmtcache.Postgres, nil)
	assert.Nil(err)
	_, err = s.Get(key, stmtcache.Postgres, bad, prepare)
	assert.ErrorIs(err, stmtcache.ErrMalformedQuery)

	assert.True(log.Consume().IsEmpty())
}

func TestOutcomeString(t *testing.T) {
	assert := require.New(t)

	assert.Equal("UseCached", stmtcachetest.UseCached.String())
	assert.Equal("Cache", stmtcachetest.Cache.String())
	assert.Equal("DontCache", stmtcachetest.DontCache.String())
	assert.Equal("Unknown", stmtcachetest.Outcome(9).String())
}
