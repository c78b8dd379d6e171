package cache

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/mitchellh/hashstructure/v2"
)

// Key identifies the shape of a query: either a static query identity, or
// SQL text together with the type metadata of its bind parameters.
//
// Keys are immutable. Equal keys always have equal hashes.
type Key struct {
	queryID   string
	sql       string
	bindTypes []any
	hash      uint64
}

// identity holds the exported view of a Key that is fed to hashstructure.
type identity struct {
	QueryID   string
	SQL       string
	BindTypes []any
}

var equalOpts = []cmp.Option{
	cmpopts.EquateEmpty(),
	cmp.Exporter(func(reflect.Type) bool { return true }),
}

// ForQueryID returns a key for a query whose SQL text is fully determined by
// id, bound with values described by bindTypes.
func ForQueryID(id string, bindTypes ...any) (Key, error) {
	if id == "" {
		return Key{}, errors.New("cache: empty query id")
	}
	return newKey(identity{QueryID: id, BindTypes: copyTypes(bindTypes)})
}

// ForSQL returns a key for sql bound with values described by bindTypes.
func ForSQL(sql string, bindTypes ...any) (Key, error) {
	return newKey(identity{SQL: sql, BindTypes: copyTypes(bindTypes)})
}

func copyTypes(bindTypes []any) []any {
	if len(bindTypes) == 0 {
		return nil
	}
	bt := make([]any, len(bindTypes))
	copy(bt, bindTypes)
	return bt
}

// ForSource returns a query ID key when source is a StaticQuery with an
// identity, otherwise it renders source for b and returns a SQL key.
func ForSource(source QuerySource, b Backend, bindTypes []any) (Key, error) {
	if sq, ok := source.(StaticQuery); ok {
		if id, ok := sq.QueryID(); ok {
			return ForQueryID(id, bindTypes...)
		}
	}
	sql, err := source.ToSQL(b)
	if err != nil {
		return Key{}, err
	}
	return ForSQL(sql, bindTypes...)
}

func newKey(id identity) (Key, error) {
	h, err := hashstructure.Hash(id, hashstructure.FormatV2, nil)
	if err != nil {
		return Key{}, errors.Wrap(err, "cache: hashing key")
	}
	return Key{
		queryID:   id.QueryID,
		sql:       id.SQL,
		bindTypes: id.BindTypes,
		hash:      h,
	}, nil
}

// Hash returns the hash computed when the key was built.
func (k Key) Hash() uint64 {
	return k.hash
}

// Equal reports whether k and o identify the same query shape.
func (k Key) Equal(o Key) bool {
	if k.hash != o.hash || k.queryID != o.queryID || k.sql != o.sql {
		return false
	}
	return cmp.Equal(k.bindTypes, o.bindTypes, equalOpts...)
}

// SQL returns the SQL text for the key. Query ID keys render source for b,
// SQL keys return their stored text.
func (k Key) SQL(source QuerySource, b Backend) (string, error) {
	if k.queryID != "" {
		return source.ToSQL(b)
	}
	return k.sql, nil
}

func (k Key) String() string {
	var b strings.Builder
	b.Grow(len(k.queryID) + len(k.sql) + len(k.bindTypes)*8)
	if k.queryID != "" {
		b.WriteString("id:")
		b.WriteString(k.queryID)
	} else {
		b.WriteString("sql:")
		b.WriteString(k.sql)
	}
	if len(k.bindTypes) > 0 {
		b.WriteString(fmt.Sprintf(" %v", k.bindTypes))
	}
	return b.String()
}
