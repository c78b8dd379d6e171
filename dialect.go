package stmtcache

import (
	"reflect"
	"strconv"
	"time"

	"github.com/jackc/pgtype"
	"github.com/prashanthpai/stmtcache/cache"
)

// Dialect implements cache.Backend for a SQL database.
type Dialect struct {
	name      string
	bindParam func(n int) string
	bindType  func(v any) any
}

// Name implements cache.Backend.
func (d Dialect) Name() string {
	return d.name
}

// BindParam implements cache.Backend.
func (d Dialect) BindParam(n int) string {
	return d.bindParam(n)
}

// BindType implements cache.Backend.
func (d Dialect) BindType(v any) any {
	return d.bindType(v)
}

var (
	// Postgres uses $n markers. Bound values are described by the OID of
	// the type they are sent as, 0 when the server has to infer it.
	Postgres = Dialect{
		name:      "postgres",
		bindParam: func(n int) string { return "$" + strconv.Itoa(n) },
		bindType:  postgresOID,
	}
	// SQLite uses ?n markers. Bound values are described by their storage
	// class.
	SQLite = Dialect{
		name:      "sqlite",
		bindParam: func(n int) string { return "?" + strconv.Itoa(n) },
		bindType:  sqliteClass,
	}
	// MySQL uses ? markers. Bound values are described by their Go kind.
	MySQL = Dialect{
		name:      "mysql",
		bindParam: func(int) string { return "?" },
		bindType:  goKind,
	}
)

func postgresOID(v any) any {
	switch v.(type) {
	case bool:
		return uint32(pgtype.BoolOID)
	case int8, int16:
		return uint32(pgtype.Int2OID)
	case int32, uint8, uint16:
		return uint32(pgtype.Int4OID)
	case int, int64, uint32:
		return uint32(pgtype.Int8OID)
	case uint, uint64:
		return uint32(pgtype.NumericOID)
	case float32:
		return uint32(pgtype.Float4OID)
	case float64:
		return uint32(pgtype.Float8OID)
	case string:
		return uint32(pgtype.TextOID)
	case []byte:
		return uint32(pgtype.ByteaOID)
	case time.Time:
		return uint32(pgtype.TimestamptzOID)
	default:
		return uint32(0)
	}
}

func sqliteClass(v any) any {
	switch v.(type) {
	case nil:
		return "NULL"
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "INTEGER"
	case float32, float64:
		return "REAL"
	case []byte:
		return "BLOB"
	default:
		return "TEXT"
	}
}

func goKind(v any) any {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).Kind().String()
}

// bindTypes describes args for b.
func bindTypes(b cache.Backend, args []any) []any {
	if len(args) == 0 {
		return nil
	}
	types := make([]any, len(args))
	for i, arg := range args {
		types[i] = b.BindType(arg)
	}
	return types
}
