package stmtcache

import (
	"database/sql"

	"github.com/cockroachdb/errors"
)

// Rows wraps *sql.Rows returned by Conn.QueryContext. Close must be called:
// a statement that was not cached is closed along with the rows.
type Rows struct {
	*sql.Rows
	release func() error
}

// Close closes the rows, then the statement when it was not cached.
func (r *Rows) Close() error {
	err := r.Rows.Close()
	if r.release != nil {
		err = errors.CombineErrors(err, r.release())
		r.release = nil
	}
	return err
}
