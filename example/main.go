package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/prashanthpai/stmtcache"
	"github.com/prashanthpai/stmtcache/cache"

	"github.com/jackc/pgx/v4/stdlib"
)

const (
	defaultMaxStatements = 100
)

func main() {

	interceptor, err := stmtcache.NewInterceptor(&stmtcache.InterceptorConfig{
		OnError: func(err error) {
			log.Printf("driver error: %v", err)
		},
	})
	if err != nil {
		log.Fatalf("stmtcache.NewInterceptor() failed: %v", err)
	}

	defer func() {
		fmt.Printf("\nDriver metrics: %+v\n", interceptor.Stats())
	}()

	// install the wrapper which wraps pgx driver
	sql.Register("pgx-stmtcache", interceptor.Driver(stdlib.GetDefaultDriver()))

	if err := run(); err != nil {
		log.Fatalf("run() failed: %v", err)
	}
}

func run() error {

	db, err := sql.Open("pgx-stmtcache",
		"host=127.0.0.1 port=5432 user=prashanthpai dbname=postgres sslmode=disable")
	if err != nil {
		return err
	}
	defer db.Close()

	if err = db.PingContext(context.TODO()); err != nil {
		return fmt.Errorf("db.PingContext() failed: %w", err)
	}

	conn, err := stmtcache.Open(context.TODO(), db, &stmtcache.ConnConfig{
		Config: stmtcache.Config{
			Mode:          cache.Bounded, // or cache.Unbounded, cache.Disabled
			MaxStatements: defaultMaxStatements,
			Backend:       stmtcache.Postgres,
			OnError: func(err error) {
				log.Printf("statement error: %v", err)
			},
		},
	})
	if err != nil {
		return fmt.Errorf("stmtcache.Open() failed: %w", err)
	}
	defer func() {
		fmt.Printf("\nStatement cache metrics: %+v\n", conn.Stats())
		conn.Close()
	}()

	q := stmtcache.NewQuery(`
		-- @stmt-id books.by_pages
		SELECT name, pages FROM books WHERE pages > ?`)

	for i := 0; i < 15; i++ {
		start := time.Now()
		if err := doQuery(conn, q); err != nil {
			return fmt.Errorf("doQuery() failed: %w", err)
		}
		fmt.Printf("i=%d; t=%s\n", i, time.Since(start))
		time.Sleep(1 * time.Second)
	}

	return nil
}

func doQuery(conn *stmtcache.Conn, q stmtcache.Query) error {

	rows, err := conn.QueryContext(context.TODO(), q, 10)
	if err != nil {
		return fmt.Errorf("conn.QueryContext() failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var pages int
		if err := rows.Scan(&name, &pages); err != nil {
			return fmt.Errorf("rows.Scan() failed: %w", err)
		}
	}

	return rows.Err()
}
