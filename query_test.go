package stmtcache

import (
	"testing"

	"github.com/prashanthpai/stmtcache/mocks"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestQueryToSQL(t *testing.T) {
	assert := require.New(t)

	tests := map[string]struct {
		text     string
		postgres string
		sqlite   string
	}{
		"no params": {
			text:     "SELECT 1",
			postgres: "SELECT 1",
			sqlite:   "SELECT 1",
		},
		"positional params": {
			text:     "SELECT name FROM books WHERE pages > ? AND year < ?",
			postgres: "SELECT name FROM books WHERE pages > $1 AND year < $2",
			sqlite:   "SELECT name FROM books WHERE pages > ?1 AND year < ?2",
		},
		"markers in literals are kept": {
			text:     `SELECT '?', "a?b", ` + "`c?`" + ` FROM t WHERE x = ?`,
			postgres: `SELECT '?', "a?b", ` + "`c?`" + ` FROM t WHERE x = $1`,
			sqlite:   `SELECT '?', "a?b", ` + "`c?`" + ` FROM t WHERE x = ?1`,
		},
		"escaped quotes": {
			text:     `SELECT 'it\'s ?' WHERE x = ?`,
			postgres: `SELECT 'it\'s ?' WHERE x = $1`,
			sqlite:   `SELECT 'it\'s ?' WHERE x = ?1`,
		},
		"markers in dollar quotes are kept": {
			text:     "SELECT $$a?b$$, $fn$ ? $$ $fn$ WHERE x = ?",
			postgres: "SELECT $$a?b$$, $fn$ ? $$ $fn$ WHERE x = $1",
			sqlite:   "SELECT $$a?b$$, $fn$ ? $$ $fn$ WHERE x = ?1",
		},
		"markers in comments are kept": {
			text:     "-- who? \nSELECT /* why? */ ? ",
			postgres: "-- who? \nSELECT /* why? */ $1 ",
			sqlite:   "-- who? \nSELECT /* why? */ ?1 ",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			q := Query{Text: tc.text}

			sql, err := q.ToSQL(Postgres)
			assert.Nil(err)
			if diff := cmp.Diff(tc.postgres, sql); diff != "" {
				t.Errorf("postgres mismatch (-want +got):\n%s", diff)
			}

			sql, err = q.ToSQL(SQLite)
			assert.Nil(err)
			if diff := cmp.Diff(tc.sqlite, sql); diff != "" {
				t.Errorf("sqlite mismatch (-want +got):\n%s", diff)
			}

			// mysql markers are already '?'
			sql, err = q.ToSQL(MySQL)
			assert.Nil(err)
			assert.Equal(tc.text, sql)
		})
	}
}

func TestQueryToSQLBackendMarkers(t *testing.T) {
	assert := require.New(t)

	backend := new(mocks.Backend)
	backend.On("BindParam", 1).Return(":a").Once()
	backend.On("BindParam", 2).Return(":b").Once()

	sql, err := Query{Text: "UPDATE t SET x = ? WHERE id = ? AND y <> '?'", Params: 2}.ToSQL(backend)
	assert.Nil(err)
	assert.Equal("UPDATE t SET x = :a WHERE id = :b AND y <> '?'", sql)

	backend.On("BindType", int64(7)).Return("int").Once()
	assert.Equal([]any{"int"}, bindTypes(backend, []any{int64(7)}))

	backend.AssertExpectations(t)
}

func TestQueryToSQLErrors(t *testing.T) {
	assert := require.New(t)

	tests := map[string]struct {
		query Query
		err   error
	}{
		"unclosed literal":        {Query{Text: "SELECT 'abc"}, ErrMalformedQuery},
		"unclosed identifier":     {Query{Text: `SELECT "abc FROM t`}, ErrMalformedQuery},
		"unclosed comment":        {Query{Text: "SELECT 1 /* trailing"}, ErrMalformedQuery},
		"unclosed dollar quote":   {Query{Text: "SELECT $body$ ? $$"}, ErrMalformedQuery},
		"too few markers":         {Query{Text: "SELECT ?", Params: 2}, ErrParamCount},
		"too many markers":        {Query{Text: "SELECT ?, ?, ?", Params: 2}, ErrParamCount},
		"markers hidden in quote": {Query{Text: "SELECT '?'", Params: 1}, ErrParamCount},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			sql, err := tc.query.ToSQL(Postgres)
			assert.Empty(sql)
			assert.ErrorIs(err, tc.err)
		})
	}

	sql, err := Query{Text: "SELECT ?, ?", Params: 2}.ToSQL(Postgres)
	assert.Nil(err)
	assert.Equal("SELECT $1, $2", sql)
}

func TestNewQueryAttrs(t *testing.T) {
	assert := require.New(t)

	tests := map[string]struct {
		text    string
		id      string
		noCache bool
	}{
		"no attributes": {
			text: `SELECT name FROM users WHERE age > ?`,
		},
		"id": {
			text: `-- @stmt-id users.by_age
				SELECT name FROM users WHERE age > ?`,
			id: "users.by_age",
		},
		"nocache": {
			text: `-- @stmt-nocache
				SELECT name FROM users WHERE id IN (?, ?)`,
			noCache: true,
		},
		"both, first id wins": {
			text: `/* @stmt-id a.b @stmt-nocache @stmt-id c.d */
				SELECT 1`,
			id:      "a.b",
			noCache: true,
		},
		"id without a name": {
			text: `-- @stmt-id
				SELECT 1`,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			q := NewQuery(tc.text)
			id, ok := q.QueryID()
			assert.Equal(tc.id, id)
			assert.Equal(tc.id != "", ok)
			assert.Equal(!tc.noCache, q.SafeToCachePrepared(Postgres))
			assert.Equal(tc.text, q.Text)
		})
	}
}

func TestDialectBindTypes(t *testing.T) {
	assert := require.New(t)

	args := []any{int64(1), "a", 2.5, []byte("x"), nil, true}

	assert.Equal([]any{uint32(20), uint32(25), uint32(701), uint32(17), uint32(0), uint32(16)}, bindTypes(Postgres, args))
	assert.Equal([]any{"INTEGER", "TEXT", "REAL", "BLOB", "NULL", "INTEGER"}, bindTypes(SQLite, args))
	assert.Equal([]any{"int64", "string", "float64", "slice", "nil", "bool"}, bindTypes(MySQL, args))
	assert.Nil(bindTypes(Postgres, nil))

	assert.Equal("postgres", Postgres.Name())
	assert.Equal("$3", Postgres.BindParam(3))
	assert.Equal("?3", SQLite.BindParam(3))
	assert.Equal("?", MySQL.BindParam(3))
}
