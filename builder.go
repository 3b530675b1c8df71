package orakit

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Assignment one column/value pair for Insert and Update. A slice keeps the
// column order stable, which a map would not.
type Assignment struct {
	Column string
	Value  driver.Value
}

type whereClause struct {
	column string
	op     string
	value  driver.Value
}

// QueryBuilder composes Oracle SQL for one table through the connection's
// grammar and runs it on the owning connection.
type QueryBuilder struct {
	conn    *Connection
	grammar *Grammar
	table   string
	columns []string
	wheres  []whereClause
	orders  []string
	groups  []string
	limit   int
	offset  int
}

// Table returns a query builder bound to @name, wired to this connection's
// grammar and processor.
func (c *Connection) Table(name string) *QueryBuilder {
	return &QueryBuilder{
		conn:    c,
		grammar: c.grammar,
		table:   name,
	}
}

// TableFor returns a query builder for an entity name run through the
// configured naming strategy, e.g. "CreditCard" to credit_cards.
func (c *Connection) TableFor(entity string) *QueryBuilder {
	return c.Table(c.Config.Naming.TableName(entity))
}

// Select sets the projected columns, all of them when never called.
func (q *QueryBuilder) Select(columns ...string) *QueryBuilder {
	q.columns = append(q.columns, columns...)
	return q
}

// Where adds one AND-ed condition.
func (q *QueryBuilder) Where(column, op string, value driver.Value) *QueryBuilder {
	q.wheres = append(q.wheres, whereClause{column: column, op: op, value: value})
	return q
}

// OrderBy adds an order clause to the query.
func (q *QueryBuilder) OrderBy(column, dir string) *QueryBuilder {
	q.orders = append(q.orders, fmt.Sprintf("%s %s", q.grammar.Wrap(column), strings.ToUpper(dir)))
	return q
}

// GroupBy adds a group by clause to the query.
func (q *QueryBuilder) GroupBy(columns ...string) *QueryBuilder {
	for _, c := range columns {
		q.groups = append(q.groups, q.grammar.Wrap(c))
	}
	return q
}

// Limit sets the limit for the query.
func (q *QueryBuilder) Limit(limit int) *QueryBuilder {
	q.limit = limit
	return q
}

// Offset sets the offset for the query.
func (q *QueryBuilder) Offset(offset int) *QueryBuilder {
	q.offset = offset
	return q
}

// ToSQL renders the SELECT statement and its bind values without running it.
func (q *QueryBuilder) ToSQL() (string, []driver.Value) {
	var buf strings.Builder
	buf.WriteString("SELECT ")
	if len(q.columns) == 0 {
		buf.WriteString("*")
	} else {
		wrapped := make([]string, len(q.columns))
		for i, c := range q.columns {
			wrapped[i] = q.grammar.Wrap(c)
		}
		buf.WriteString(strings.Join(wrapped, ", "))
	}
	buf.WriteString(" FROM ")
	buf.WriteString(q.grammar.WrapTable(q.table))

	sqlText, values := q.compileWheres(&buf)

	if len(q.groups) > 0 {
		sqlText += " GROUP BY " + strings.Join(q.groups, ", ")
	}
	if len(q.orders) > 0 {
		sqlText += " ORDER BY " + strings.Join(q.orders, ", ")
	}
	sqlText += q.grammar.LimitAndOffsetSQL(q.limit, q.offset)
	return sqlText, values
}

// compileWheres appends the WHERE clause to buf and returns the full text
// plus the bind values in placeholder order.
func (q *QueryBuilder) compileWheres(buf *strings.Builder) (string, []driver.Value) {
	values := make([]driver.Value, 0, len(q.wheres))
	for i, w := range q.wheres {
		if i == 0 {
			buf.WriteString(" WHERE ")
		} else {
			buf.WriteString(" AND ")
		}
		buf.WriteString(q.grammar.Wrap(w.column))
		buf.WriteByte(' ')
		buf.WriteString(w.op)
		buf.WriteByte(' ')
		buf.WriteString(q.grammar.BindVar(len(values) + 1))
		values = append(values, w.value)
	}
	return buf.String(), values
}

// Get executes the built query and returns every row.
func (q *QueryBuilder) Get() Result {
	sqlText, values := q.ToSQL()
	return q.conn.Select(sqlText, wrapValues(q.conn, values))
}

// First executes the built query limited to a single row.
func (q *QueryBuilder) First() Result {
	q.limit = 1
	return q.Get()
}

// Insert renders and executes an INSERT for the given assignments.
func (q *QueryBuilder) Insert(assignments []Assignment) Result {
	sqlText, values := q.InsertSQL(assignments)
	return q.conn.Exec(sqlText, wrapValues(q.conn, values))
}

// InsertSQL renders the INSERT statement and its bind values.
func (q *QueryBuilder) InsertSQL(assignments []Assignment) (string, []driver.Value) {
	columns := make([]string, len(assignments))
	placeholders := make([]string, len(assignments))
	values := make([]driver.Value, len(assignments))
	for i, a := range assignments {
		columns[i] = q.grammar.Wrap(a.Column)
		placeholders[i] = q.grammar.BindVar(i + 1)
		values[i] = a.Value
	}
	sqlText := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		q.grammar.WrapTable(q.table),
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "))
	return sqlText, values
}

// Update renders and executes an UPDATE for the given assignments,
// constrained by any Where calls made on the builder.
func (q *QueryBuilder) Update(assignments []Assignment) Result {
	sqlText, values := q.UpdateSQL(assignments)
	return q.conn.Exec(sqlText, wrapValues(q.conn, values))
}

// UpdateSQL renders the UPDATE statement and its bind values.
func (q *QueryBuilder) UpdateSQL(assignments []Assignment) (string, []driver.Value) {
	var buf strings.Builder
	buf.WriteString("UPDATE ")
	buf.WriteString(q.grammar.WrapTable(q.table))
	buf.WriteString(" SET ")

	values := make([]driver.Value, 0, len(assignments)+len(q.wheres))
	for i, a := range assignments {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(q.grammar.Wrap(a.Column))
		buf.WriteString(" = ")
		buf.WriteString(q.grammar.BindVar(len(values) + 1))
		values = append(values, a.Value)
	}

	for i, w := range q.wheres {
		if i == 0 {
			buf.WriteString(" WHERE ")
		} else {
			buf.WriteString(" AND ")
		}
		buf.WriteString(q.grammar.Wrap(w.column))
		buf.WriteByte(' ')
		buf.WriteString(w.op)
		buf.WriteByte(' ')
		buf.WriteString(q.grammar.BindVar(len(values) + 1))
		values = append(values, w.value)
	}
	return buf.String(), values
}

// Delete renders and executes a DELETE constrained by any Where calls.
func (q *QueryBuilder) Delete() Result {
	var buf strings.Builder
	buf.WriteString("DELETE FROM ")
	buf.WriteString(q.grammar.WrapTable(q.table))
	sqlText, values := q.compileWheres(&buf)
	return q.conn.Exec(sqlText, wrapValues(q.conn, values))
}

// wrapValues lifts raw bind values into positional input Params.
func wrapValues(c *Connection, values []driver.Value) []*Param {
	params := make([]*Param, len(values))
	for i, v := range values {
		params[i] = c.NewParam(fmt.Sprintf("p%d", i+1), v)
	}
	return params
}

// SchemaBuilder answers catalog questions and runs DDL through the owning
// connection, with table names resolved by the same grammar the query
// builder uses.
type SchemaBuilder struct {
	conn    *Connection
	grammar *Grammar
}

// SchemaBuilder returns a schema builder wired to this connection.
func (c *Connection) SchemaBuilder() *SchemaBuilder {
	return &SchemaBuilder{conn: c, grammar: c.grammar}
}

// HasTable reports whether the (prefixed) table exists in the session's
// schema.
func (s *SchemaBuilder) HasTable(name string) (bool, error) {
	_, table := splitQualified(s.grammar.ResolvePrefix() + name)
	var count int
	err := s.conn.conn.QueryRow(
		"SELECT COUNT(*) FROM USER_TABLES WHERE TABLE_NAME = :1",
		strings.ToUpper(table),
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasColumn reports whether the column exists on the (prefixed) table.
func (s *SchemaBuilder) HasColumn(name, column string) (bool, error) {
	_, table := splitQualified(s.grammar.ResolvePrefix() + name)
	var count int
	err := s.conn.conn.QueryRow(
		"SELECT COUNT(*) FROM ALL_TAB_COLUMNS WHERE TABLE_NAME = :1 AND COLUMN_NAME = :2",
		strings.ToUpper(table), strings.ToUpper(column),
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DropTable issues a DROP TABLE for the (prefixed) table.
func (s *SchemaBuilder) DropTable(name string) Result {
	return s.conn.ExecuteDDL("DROP TABLE " + s.grammar.WrapTable(name))
}

// RenameTable issues an ALTER TABLE ... RENAME TO for the (prefixed) table.
func (s *SchemaBuilder) RenameTable(from, to string) Result {
	return s.conn.ExecuteDDL(fmt.Sprintf("ALTER TABLE %s RENAME TO %s",
		s.grammar.WrapTable(from), s.grammar.WrapTable(to)))
}

// splitQualified separates an optional schema qualifier from a table name.
func splitQualified(name string) (string, string) {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}
