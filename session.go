package orakit

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/orakit/orakit/logger"
)

// DefaultDateFormat is the NLS format applied by SetDateFormat when the
// caller passes an empty format string.
const DefaultDateFormat = "YYYY-MM-DD HH24:MI:SS"

// SessionVar is one session option. Order matters when several variables go
// into a single ALTER SESSION statement, so the manager takes a slice rather
// than a map.
type SessionVar struct {
	Name  string
	Value string
}

// execer is the slice of the database handle the session manager and the
// routine invoker need.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SessionManager mutates server-side session state through ALTER SESSION
// statements. Changes persist for the remainder of the connection's
// lifetime or until overridden.
type SessionManager struct {
	exec execer
	log  logger.Interface
}

func newSessionManager(exec execer, log logger.Interface) *SessionManager {
	return &SessionManager{exec: exec, log: log}
}

// Set issues exactly one ALTER SESSION SET statement listing every variable,
// or nothing when vars is empty.
func (m *SessionManager) Set(ctx context.Context, vars []SessionVar) error {
	stmt := BuildSessionStmt(vars)
	if stmt == "" {
		return nil
	}

	begin := time.Now()
	_, err := m.exec.ExecContext(ctx, stmt)
	m.log.Trace(ctx, begin, func() (string, int64) { return stmt, 0 }, err)
	return err
}

// BuildSessionStmt renders the ALTER SESSION statement for the given
// variables. CURRENT_SCHEMA is an identifier and stays unquoted; every other
// value is a single-quoted literal with embedded quotes doubled. Returns ""
// for an empty set.
func BuildSessionStmt(vars []SessionVar) string {
	if len(vars) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString("ALTER SESSION SET")
	for _, v := range vars {
		buf.WriteByte(' ')
		buf.WriteString(v.Name)
		buf.WriteString(" = ")
		if strings.EqualFold(v.Name, "CURRENT_SCHEMA") {
			buf.WriteString(v.Value)
		} else {
			buf.WriteByte('\'')
			buf.WriteString(strings.ReplaceAll(v.Value, "'", "''"))
			buf.WriteByte('\'')
		}
	}
	return buf.String()
}

// SetSessionVars mutates live session state with a single ALTER SESSION
// statement listing every variable in order.
func (c *Connection) SetSessionVars(vars []SessionVar) error {
	ctx, cancel := c.timeoutContext()
	defer cancel()
	return c.session.Set(ctx, vars)
}

// SetSchema switches the session's current schema. The cached schema value
// is updated before the server sees the statement, so a rejected ALTER
// SESSION leaves the cached value ahead of the server; callers must treat a
// failure here as requiring a reconnect or an explicit re-sync.
func (c *Connection) SetSchema(schema string) error {
	c.schema = schema
	return c.SetSessionVars([]SessionVar{{Name: "CURRENT_SCHEMA", Value: schema}})
}

// Schema returns the cached current schema.
func (c *Connection) Schema() string {
	return c.schema
}

// SetDateFormat sets NLS_DATE_FORMAT and NLS_TIMESTAMP_FORMAT to the same
// format in one statement. An empty format selects DefaultDateFormat.
func (c *Connection) SetDateFormat(format string) error {
	if format == "" {
		format = DefaultDateFormat
	}
	return c.SetSessionVars([]SessionVar{
		{Name: "NLS_DATE_FORMAT", Value: format},
		{Name: "NLS_TIMESTAMP_FORMAT", Value: format},
	})
}
