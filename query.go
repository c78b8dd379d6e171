package stmtcache

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/prashanthpai/stmtcache/cache"
)

// Query is a cache.QuerySource written with '?' bind parameter markers,
// which are rewritten into the markers of the backend when rendered.
//
// Statement attributes can also be given as SQL comments:
//
//	-- @stmt-id users.by_email
//	-- @stmt-nocache
//
// They are read by NewQuery.
//
// Every '?' outside of literals, dollar-quoted strings and comments is taken
// as a marker, so the Postgres jsonb operators ?, ?| and ?& can't be written
// in Text. Use jsonb_exists, jsonb_exists_any and jsonb_exists_all instead.
type Query struct {
	// ID, when set, identifies the query shape. The query is then keyed by
	// ID and its text is rendered only when the statement is not cached.
	ID string
	// Text is the SQL text.
	Text string
	// Params, when positive, is the number of bind parameters Text must
	// contain.
	Params int
	// NoCache marks the query as unsafe to keep prepared.
	NoCache bool
}

// NewQuery returns a Query for text, honouring @stmt-id and @stmt-nocache
// attributes.
func NewQuery(text string) Query {
	attrs := getAttrs(text)
	return Query{
		ID:      attrs.id,
		Text:    text,
		NoCache: attrs.noCache,
	}
}

// QueryID implements cache.StaticQuery.
func (q Query) QueryID() (string, bool) {
	return q.ID, q.ID != ""
}

// SafeToCachePrepared implements cache.CacheSafe.
func (q Query) SafeToCachePrepared(cache.Backend) bool {
	return !q.NoCache
}

// ToSQL implements cache.QuerySource.
func (q Query) ToSQL(b cache.Backend) (string, error) {
	sql, n, err := bindMarkers(q.Text, b)
	if err != nil {
		return "", err
	}
	if q.Params > 0 && n != q.Params {
		return "", errors.Wrapf(ErrParamCount, "query declares %d parameters but contains %d", q.Params, n)
	}
	return sql, nil
}

// bindMarkers replaces every '?' outside of literals and comments with the
// bind parameter marker of b. It returns the rewritten text and the number
// of markers found.
func bindMarkers(sql string, b cache.Backend) (string, int, error) {
	var out strings.Builder
	out.Grow(len(sql) + 8)

	n := 0
	pos := 0
	for pos < len(sql) {
		c := sql[pos]
		switch {
		case c == '?':
			n++
			out.WriteString(b.BindParam(n))
			pos++
			continue
		case c == '\'' || c == '"' || c == '`':
			end, err := skipQuoted(sql, pos, c)
			if err != nil {
				return "", 0, err
			}
			out.WriteString(sql[pos:end])
			pos = end
			continue
		case c == '$':
			tag := dollarTag(sql, pos)
			if tag == "" {
				break
			}
			end, err := skipDollarQuoted(sql, pos, tag)
			if err != nil {
				return "", 0, err
			}
			out.WriteString(sql[pos:end])
			pos = end
			continue
		case c == '-' && pos+1 < len(sql) && sql[pos+1] == '-':
			end := skipSingleLineComment(sql, pos+2)
			out.WriteString(sql[pos:end])
			pos = end
			continue
		case c == '/' && pos+1 < len(sql) && sql[pos+1] == '*':
			end, err := skipMultiLineComment(sql, pos)
			if err != nil {
				return "", 0, err
			}
			out.WriteString(sql[pos:end])
			pos = end
			continue
		}
		out.WriteByte(c)
		pos++
	}

	return out.String(), n, nil
}

func skipQuoted(sql string, pos int, quote byte) (int, error) {
	start := pos
	pos++
	for pos < len(sql) {
		c := sql[pos]
		if c == quote {
			return pos + 1, nil
		}
		if c == '\\' && pos+1 < len(sql) && sql[pos+1] == quote {
			pos++
		}
		pos++
	}
	return 0, errors.Wrapf(ErrMalformedQuery, "unclosed literal at offset %d", start)
}

// dollarTag returns the opening tag of a dollar-quoted string starting at
// pos, such as "$$" or "$body$", or "" when there is none. Positional
// parameters like $1 are not tags.
func dollarTag(sql string, pos int) string {
	for i := pos + 1; i < len(sql); i++ {
		c := sql[i]
		switch {
		case c == '$':
			return sql[pos : i+1]
		case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case c >= '0' && c <= '9' && i > pos+1:
		default:
			return ""
		}
	}
	return ""
}

func skipDollarQuoted(sql string, pos int, tag string) (int, error) {
	body := pos + len(tag)
	if i := strings.Index(sql[body:], tag); i >= 0 {
		return body + i + len(tag), nil
	}
	return 0, errors.Wrapf(ErrMalformedQuery, "unclosed dollar-quoted string at offset %d", pos)
}

func skipSingleLineComment(sql string, pos int) int {
	if i := strings.IndexByte(sql[pos:], '\n'); i >= 0 {
		return pos + i + 1
	}
	return len(sql)
}

func skipMultiLineComment(sql string, pos int) (int, error) {
	if i := strings.Index(sql[pos+2:], "*/"); i >= 0 {
		return pos + 2 + i + 2, nil
	}
	return 0, errors.Wrapf(ErrMalformedQuery, "unclosed comment at offset %d", pos)
}
