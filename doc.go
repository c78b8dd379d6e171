/*
Package stmtcache keeps prepared statements around for the lifetime of a
database connection so that a query executed repeatedly is prepared only once.

Statements are looked up by a cache.Key: either a stable query id, which
avoids rendering SQL on a hit, or the rendered SQL text together with the
types of its bind parameters. A strategy decides what is kept: WithCache
keeps everything, WithoutCache keeps nothing and Bounded keeps a fixed number
of statements using ristretto.

Usage:

	import (
		"database/sql"

		"github.com/jackc/pgx/v4/stdlib"
		"github.com/prashanthpai/stmtcache"
	)

	func main() {
		...
		// observe driver level prepares and closes
		interceptor, err := stmtcache.NewInterceptor(&stmtcache.InterceptorConfig{})
		...
		sql.Register("pgx-stmtcache", interceptor.Driver(stdlib.GetDefaultDriver()))

		db, err := sql.Open("pgx-stmtcache", dsn)
		...

		conn, err := stmtcache.Open(ctx, db, &stmtcache.ConnConfig{
			Config: stmtcache.Config{Backend: stmtcache.Postgres},
		})
		...
		defer conn.Close()

		rows, err := conn.QueryContext(ctx, stmtcache.NewQuery(`
			SELECT name, pages FROM books WHERE pages > ?`), 100)
		...
	}

Queries use '?' markers which are rewritten for the backend. Caching can be
tuned with attributes, which are SQL comments starting with the `@stmt-`
prefix:

	-- @stmt-id books.by_pages
	-- @stmt-nocache

`@stmt-id` gives the query a stable identity, `@stmt-nocache` prepares it
afresh on every execution.
*/
package stmtcache
