package stmtcache

import (
	"context"
	"database/sql/driver"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/ngrok/sqlmw"
)

// InterceptorConfig is the configuration passed to NewInterceptor for
// creating new Interceptor instances.
type InterceptorConfig struct {
	// OnPrepare is called with the query text of every statement the
	// driver prepares.
	OnPrepare func(query string)
	// OnError is called whenever the driver fails to prepare or close a
	// statement. The error is also returned to database/sql.
	OnError func(error)
}

// Interceptor is a ngrok/sqlmw interceptor that observes statement
// preparation at the driver level.
type Interceptor struct {
	onPrepare func(string)
	onErr     func(error)
	stats     DriverStats
	sqlmw.NullInterceptor
}

// NewInterceptor returns a new instance of Interceptor initialised with the
// provided config.
func NewInterceptor(config *InterceptorConfig) (*Interceptor, error) {
	if config == nil {
		return nil, ErrNilConfig
	}

	return &Interceptor{
		onPrepare: config.OnPrepare,
		onErr:     config.OnError,
	}, nil
}

// Driver wraps d so that its statements are observed by the interceptor.
func (i *Interceptor) Driver(d driver.Driver) driver.Driver {
	return sqlmw.Driver(d, i)
}

// ConnPrepareContext intercepts driver level statement preparation.
func (i *Interceptor) ConnPrepareContext(ctx context.Context, conn driver.ConnPrepareContext, query string) (driver.Stmt, error) {
	stmt, err := conn.PrepareContext(ctx, query)
	if err != nil {
		i.fail(errors.Wrap(err, "driver prepare failed"))
		return nil, err
	}

	atomic.AddUint64(&i.stats.Prepares, 1)
	if i.onPrepare != nil {
		i.onPrepare(query)
	}

	return stmt, nil
}

// StmtClose intercepts driver level statement closing.
func (i *Interceptor) StmtClose(ctx context.Context, stmt driver.Stmt) error {
	if err := stmt.Close(); err != nil {
		i.fail(errors.Wrap(err, "driver statement close failed"))
		return err
	}

	atomic.AddUint64(&i.stats.Closes, 1)
	return nil
}

func (i *Interceptor) fail(err error) {
	atomic.AddUint64(&i.stats.Errors, 1)
	if i.onErr != nil {
		i.onErr(err)
	}
}

// DriverStats contains driver level statement statistics.
type DriverStats struct {
	Prepares uint64
	Closes   uint64
	Errors   uint64
}

// Stats returns driver level statement stats.
func (i *Interceptor) Stats() *DriverStats {
	return &DriverStats{
		Prepares: atomic.LoadUint64(&i.stats.Prepares),
		Closes:   atomic.LoadUint64(&i.stats.Closes),
		Errors:   atomic.LoadUint64(&i.stats.Errors),
	}
}
