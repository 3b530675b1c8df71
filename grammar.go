package orakit

import (
	"fmt"
	"strings"
	"sync"
)

// Grammar generates Oracle-flavored SQL fragments for the query and schema
// builders. A grammar is built once per connection with the resolved schema
// and table prefixes and injected into every builder it hands out.
//
// Identifier quoting follows the usual Oracle driver compromise: only
// reserved words are quoted, every other identifier is left bare so the
// server upper-cases it. Quoting everything would force callers to quote
// identifiers in their own SQL strings as well.
type Grammar struct {
	schemaPrefix string
	tablePrefix  string
}

// NewGrammar creates a grammar with the given schema and table prefixes.
func NewGrammar(schemaPrefix, tablePrefix string) *Grammar {
	return &Grammar{schemaPrefix: schemaPrefix, tablePrefix: tablePrefix}
}

// ResolvePrefix is the effective prefix applied to every table reference,
// schema prefix outermost.
func (g *Grammar) ResolvePrefix() string {
	return g.schemaPrefix + g.tablePrefix
}

// WrapTable applies the resolved prefix to a table name and quotes any
// reserved-word segment.
func (g *Grammar) WrapTable(name string) string {
	full := g.ResolvePrefix() + name
	if !strings.Contains(full, ".") {
		return g.Wrap(full)
	}
	segments := strings.Split(full, ".")
	for i, s := range segments {
		segments[i] = g.Wrap(s)
	}
	return strings.Join(segments, ".")
}

// Wrap will only quote Oracle reserved words, all other identifiers are
// upper cased by the server automatically
func (g *Grammar) Wrap(key string) string {
	if IsReservedWord(key) {
		return fmt.Sprintf(`"%s"`, key)
	}
	return key
}

// BindVar returns the placeholder for the i-th bind variable (1-based).
func (g *Grammar) BindVar(i int) string {
	return fmt.Sprintf(":%d", i)
}

// SelectFromDummyTable returns the dummy-table clause for value-only selects.
func (g *Grammar) SelectFromDummyTable() string {
	return "FROM DUAL"
}

// LimitAndOffsetSQL renders the 12c OFFSET/FETCH clause. A zero limit means
// no limit; a zero offset is omitted.
func (g *Grammar) LimitAndOffsetSQL(limit, offset int) string {
	var sql string
	if offset > 0 {
		sql += fmt.Sprintf(" OFFSET %d ROWS", offset)
	}
	if limit > 0 {
		sql += fmt.Sprintf(" FETCH NEXT %d ROWS ONLY", limit)
	}
	return sql
}

var setupReserved sync.Once
var reservedWords map[string]struct{}

// IsReservedWord reports whether w collides with an Oracle reserved word
// and therefore needs quoting.
func IsReservedWord(w string) bool {
	setupReserved.Do(
		func() {
			words := strings.Split(reserved, "\n")
			reservedWords = make(map[string]struct{}, len(words))
			for _, s := range words {
				reservedWords[s] = struct{}{}
			}
		},
	)
	_, ok := reservedWords[strings.ToUpper(w)]
	return ok
}

const reserved = `ACCESS
ADD
ALL
ALTER
AND
ANY
AS
ASC
AUDIT
BETWEEN
BY
CHAR
CHECK
CLUSTER
COLUMN
COMMENT
COMPRESS
CONNECT
CREATE
CURRENT
DATE
DECIMAL
DEFAULT
DELETE
DESC
DISTINCT
DROP
ELSE
EXCLUSIVE
EXISTS
FILE
FLOAT
FOR
FROM
GRANT
GROUP
HAVING
IDENTIFIED
IMMEDIATE
IN
INCREMENT
INDEX
INITIAL
INSERT
INTEGER
INTERSECT
INTO
IS
LEVEL
LIKE
LOCK
LONG
MAXEXTENTS
MINUS
MLSLABEL
MODE
MODIFY
NOAUDIT
NOCOMPRESS
NOT
NOWAIT
NULL
NUMBER
OF
OFFLINE
ON
ONLINE
OPTION
OR
ORDER
PCTFREE
PRIOR
PUBLIC
RAW
RENAME
RESOURCE
REVOKE
ROW
ROWID
ROWNUM
ROWS
SELECT
SESSION
SET
SHARE
SIZE
SMALLINT
START
SUCCESSFUL
SYNONYM
SYSDATE
TABLE
THEN
TO
TRIGGER
UID
UNION
UNIQUE
UPDATE
USER
VALIDATE
VALUES
VARCHAR
VARCHAR2
VIEW
WHENEVER
WHERE
WITH`
