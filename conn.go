package orakit

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goOra "github.com/sijms/go-ora/v2"

	"github.com/orakit/orakit/logger"
)

// Connector interface that define a connection
type Connector interface {
	Select(stmt string, params []*Param) Result
	Exec(stmt string, params []*Param) Result
	ExecuteFunction(expression string, in []*Param, out []*Param, ret ReturnType) Result
	ExecuteProcedure(name string, in []*Param, out []*Param) Result
	SetSessionVars(vars []SessionVar) error
	SetSchema(schema string) error
	SetDateFormat(format string) error
	BeginTx() error
	Commit() error
	Rollback() error
	Close()
	Ping() error
	ReConnect() error
}

// ConnectionConfiguration represents the minimum configuration required for the connection pool
type ConnectionConfiguration struct {
	ConfigurationSet      bool
	MaxOpenConnections    int
	MaxIdleConnections    int
	ContextTimeout        int
	MaxConnectionLifeTime time.Duration
	MaxIdleConnectionTime time.Duration
}

// Config carries the dialect and session options of one logical connection.
type Config struct {
	// Schema to switch to right after connecting; empty leaves the logon
	// schema in place.
	Schema string

	// TablePrefix is prepended to every table name the grammar wraps.
	TablePrefix string

	// SchemaPrefix is composed outermost of TablePrefix, e.g. "APP." with
	// table prefix "T_" resolves users to APP.T_users.
	SchemaPrefix string

	// SessionVars are applied in one ALTER SESSION right after connecting.
	SessionVars []SessionVar

	// Naming converts entity names into table names for TableFor.
	Naming NamingStrategy

	// Logger defaults to logger.Default.
	Logger logger.Interface
}

// Connection represents an object connection for Oracle. It owns the
// session manager and the grammar every builder it creates is wired to.
//
// One logical session serves one logical caller at a time: session state
// (current schema, NLS formats) is connection-global, so concurrent use of
// the same Connection needs external synchronization.
type Connection struct {
	Name          string
	ConStr        string
	Configuration *ConnectionConfiguration
	Config        *Config
	log           logger.Interface
	conn          *sql.DB
	exec          execer
	tx            driver.Tx
	lock          *sync.Mutex
	schema        string
	session       *SessionManager
	grammar       *Grammar
}

// NewConnectionWithParams create a new connection using every parameter independently
// Parameters:
// @server: Server Address - name or ip
// @port: Connection port
// @user: User name
// @password: password
// @service: Service Name for Oracle connection if SID is needed use @options
// @options: specified some options like TRACE, SID or conStr etc.
// @configuration: Specifies how connections parameters must be handled in ConnectionConfiguration
// @config: dialect and session options
// @name: Connection name
func NewConnectionWithParams(server string, port int, user, password, service string,
	options map[string]string,
	configuration *ConnectionConfiguration,
	config *Config,
	name string,
) (*Connection, error) {
	conStr := goOra.BuildUrl(server, port, service, user, password, options)
	return NewConnection(conStr, name, configuration, config)
}

// NewConnection create and open a pooled Oracle connection.
// Parameters:
// @constr: Connection String built with goOra.BuildUrl or given directly
// @name: Connection name, a random one is assigned when empty
// @configuration: Specifies how the pool must be handled with ConnectionConfiguration
// @config: dialect and session options, nil for defaults
func NewConnection(constr string, name string, configuration *ConnectionConfiguration, config *Config) (*Connection, error) {
	if config == nil {
		config = &Config{}
	}
	log := config.Logger
	if log == nil {
		log = logger.Default
	}
	if name == "" {
		name = uuid.NewString()
	}

	log.Info(context.Background(), "+++ new connection pool", name)
	if constr == "" {
		log.Error(context.Background(), "connection string without value")
		return nil, EmptyConStrErr
	}

	conn, err := createConnection(constr, configuration, log)
	if err != nil {
		log.Error(context.Background(), "pool connection could not be opened", err)
		return nil, err
	}

	c := &Connection{
		Name:          name,
		conn:          conn,
		exec:          conn,
		ConStr:        constr,
		Configuration: configuration,
		Config:        config,
		log:           log,
		lock:          &sync.Mutex{},
		grammar:       NewGrammar(config.SchemaPrefix, config.TablePrefix),
	}
	c.session = newSessionManager(conn, log)

	if err := c.applyInitialSession(); err != nil {
		conn.Close()
		return nil, err
	}

	log.Info(context.Background(), "+++ connection pool created", name)
	return c, nil
}

// applyInitialSession pushes the configured schema and session variables to
// the server right after connect.
func (c *Connection) applyInitialSession() error {
	if c.Config.Schema != "" {
		if err := c.SetSchema(c.Config.Schema); err != nil {
			return err
		}
	}
	return c.SetSessionVars(c.Config.SessionVars)
}

// Grammar returns the grammar wired to this connection's schema and table
// prefixes.
func (c *Connection) Grammar() *Grammar {
	return c.grammar
}

// DB exposes the standards-based handle for tooling that drives the
// connection directly (migrations, ORMs).
func (c *Connection) DB() *sql.DB {
	return c.conn
}

// Select takes a statement that could be a plain select or a procedure with
// ref-cursor return parameter and wrap in Result object
// Parameters:
// @stmt: Statement to execute
// @params: []*Params - list of parameters to be replaced by position in the @stmt
func (c *Connection) Select(stmt string, params []*Param) Result {
	c.log.Info(context.Background(), "+++ Hit Select", stmt, len(params))

	if err := c.Ping(); err != nil {
		c.log.Error(context.Background(), "error pinging the connection", err)
		return Result{
			Error:           fmt.Errorf("connection error [%s]", err.Error()),
			RecordsAffected: 0,
			HasData:         false,
		}
	}

	p := buildParamsList(params)

	// a ref-cursor parameter turns the select into an exec + cursor fetch
	if p.isRef {
		ctx, cancel := c.timeoutContext()
		defer cancel()

		begin := time.Now()
		_, err := c.exec.ExecContext(ctx, stmt, p.values...)
		c.log.Trace(ctx, begin, func() (string, int64) { return stmt, 0 }, err)
		if err != nil {
			return Result{Error: err}
		}

		if p.cursor == nil {
			return Result{Error: RefCursorNotFoundErr}
		}

		defer func(cursor *goOra.RefCursor) {
			if err := cursor.Close(); err != nil {
				c.log.Error(ctx, "error closing cursor", err)
			}
		}(p.cursor)

		rows, err := goOra.WrapRefCursor(ctx, c.conn, p.cursor)
		if err != nil {
			c.log.Error(ctx, "error executing the cursor", err)
			return Result{Error: err}
		}
		defer func() {
			if err := rows.Close(); err != nil {
				c.log.Error(ctx, "error closing rows", err)
			}
		}()

		records, err := c.unwrapRows(rows)
		rowsAffected := 0
		if err == nil {
			rowsAffected = len(records.Data)
		}
		return Result{
			Container:       records,
			Error:           err,
			RecordsAffected: int64(rowsAffected),
			HasData:         rowsAffected > 0,
		}
	}

	query, err := c.prepareStatement(stmt)
	if err != nil {
		c.log.Error(context.Background(), "error preparing the statement", err)
		return Result{Error: err}
	}
	defer func(s *sql.Stmt) {
		if err := s.Close(); err != nil {
			c.log.Error(context.Background(), "error closing statement", err)
		}
	}(query)

	ctx, cancel := c.timeoutContext()
	defer cancel()

	begin := time.Now()
	rows, err := query.QueryContext(ctx, p.values...)
	if err != nil {
		c.log.Trace(ctx, begin, func() (string, int64) { return stmt, 0 }, err)
		return Result{Error: err}
	}
	defer func(r *sql.Rows) {
		if err := r.Close(); err != nil {
			c.log.Error(ctx, "error closing rows", err)
		}
	}(rows)

	records, err := c.unwrapRows(rows)
	rowsAffected := 0
	if err == nil {
		rowsAffected = len(records.Data)
	}
	c.log.Trace(ctx, begin, func() (string, int64) { return stmt, int64(rowsAffected) }, err)
	return Result{
		Container:       records,
		Error:           err,
		RecordsAffected: int64(rowsAffected),
		HasData:         rowsAffected > 0,
	}
}

// ExecuteDDL execute a DDL command against the current connection
// Parameters:
// @stmt Statement to execute
func (c *Connection) ExecuteDDL(stmt string) Result {
	c.log.Info(context.Background(), "+++ Hit ExecuteDDL", stmt)

	if err := c.Ping(); err != nil {
		return Result{Error: err}
	}

	ctx, cancel := c.timeoutContext()
	defer cancel()

	begin := time.Now()
	result, err := c.exec.ExecContext(ctx, stmt)
	c.log.Trace(ctx, begin, func() (string, int64) { return stmt, 0 }, err)
	if err != nil {
		return Result{Error: err}
	}

	ra, err := result.RowsAffected()
	if err != nil {
		return Result{Error: err}
	}

	return Result{RecordsAffected: ra, Success: true}
}

// EnsureExec retries Exec up to @retries times. DML only; stored routine
// invocations stay exactly-once.
// Parameters:
// @stmt Statement to execute
// @params List of parameters to replace in @stmt
// @retries how many attempts before giving up
func (c *Connection) EnsureExec(stmt string, params []*Param, retries int) (result Result) {
	for i := 0; i < retries; i++ {
		result = c.Exec(stmt, params)
		if result.Error == nil {
			break
		}
	}
	return
}

// Exec used to execute non-returnable DML as insert, update, delete
// or a procedure without return values
// Parameters:
// @stmt Statement to execute
// @params List of parameters to replace in @stmt
func (c *Connection) Exec(stmt string, params []*Param) Result {
	c.log.Info(context.Background(), "+++ Hit Exec", stmt, len(params))

	if err := c.Ping(); err != nil {
		c.log.Error(context.Background(), "connection closed before exec", stmt, err)
		return Result{Error: err}
	}

	query, err := c.prepareStatement(stmt)
	if err != nil || query == nil {
		c.log.Error(context.Background(), "prepareStatement error", err)
		return Result{Error: err}
	}
	defer func() {
		if query != nil {
			defer func() {
				if r := recover(); r != nil {
					c.log.Warn(context.Background(), "query closing deferred error and recovery", r)
				}
			}()
			if err := query.Close(); err != nil {
				c.log.Error(context.Background(), "error closing statement", err)
			}
		}
	}()

	p := buildParamsList(params)

	ctx, cancel := c.timeoutContext()
	defer cancel()

	begin := time.Now()
	rows, err := query.ExecContext(ctx, p.values...)
	if err != nil {
		c.log.Trace(ctx, begin, func() (string, int64) { return stmt, 0 }, err)
		return Result{Error: err}
	}

	rowsAffected, err := rows.RowsAffected()
	c.log.Trace(ctx, begin, func() (string, int64) { return stmt, rowsAffected }, err)
	if err != nil {
		return Result{Error: err}
	}
	return Result{
		RecordsAffected: rowsAffected,
		HasData:         rowsAffected > 0,
		Success:         true,
	}
}

// BeginTx start a new transaction to allow commit or rollback if this was created
func (c *Connection) BeginTx() error {
	tx, err := c.conn.Begin()
	if err != nil {
		return fmt.Errorf("transaction couldn't begin %s", err.Error())
	}
	c.tx = tx
	return nil
}

// Commit set commit to the current transaction if this was created
func (c *Connection) Commit() error {
	if c.tx != nil {
		return c.tx.Commit()
	}
	c.log.Warn(context.Background(), "transaction not initialized")
	return nil
}

// Rollback set rollback to the current transaction if this was created
func (c *Connection) Rollback() error {
	if c.tx != nil {
		return c.tx.Rollback()
	}
	c.log.Warn(context.Background(), "transaction not initialized to rollback")
	return nil
}

// Close closes the current connection
func (c *Connection) Close() {
	if err := c.conn.Close(); err != nil {
		c.log.Error(context.Background(), "error closing connection", err)
	}
}

// Ping make a test to a current connection
func (c *Connection) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.conn.PingContext(ctx); err != nil {
		return CantPingConnection(err.Error())
	}
	return nil
}

// ReConnect execute a ping against database if error happens,
// a new connection is created. Session state set through SetSchema or
// SetSessionVars is re-applied on the fresh pool.
func (c *Connection) ReConnect() error {
	if err := c.Ping(); err != nil {
		conn, err := createConnection(c.ConStr, c.Configuration, c.log)
		if err != nil {
			return err
		}
		c.conn = conn
		c.exec = conn
		c.session = newSessionManager(conn, c.log)
		if c.schema != "" {
			if err := c.SetSchema(c.schema); err != nil {
				return err
			}
		}
		return c.SetSessionVars(c.Config.SessionVars)
	}

	return nil
}

// GetConnection creates and individual connection
func (c *Connection) GetConnection(ctx context.Context) (*sql.Conn, error) {
	return c.conn.Conn(ctx)
}

// -----------------------------------------------------
// Private
// -----------------------------------------------------

// timeoutContext builds the per-statement context from the configured
// timeout, defaulting to 120 seconds.
func (c *Connection) timeoutContext() (context.Context, context.CancelFunc) {
	timeout := 120 * time.Second
	if c.Configuration != nil && c.Configuration.ConfigurationSet && c.Configuration.ContextTimeout > 0 {
		timeout = time.Duration(c.Configuration.ContextTimeout) * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

// prepareStatement creates a new statement, we use named returned values
// to override response in defer
// Parameters:
// @statement This is what to execute
func (c *Connection) prepareStatement(statement string) (stmt *sql.Stmt, err error) {
	// a driver panic here must surface as an error, not kill the caller
	defer func() {
		if r := recover(); r != nil {
			c.log.Error(context.Background(), "panic detected on prepareStatement", r)
			stmt = nil
			err = r.(error)
		}
	}()

	if err = c.Ping(); err != nil {
		return nil, err
	}

	ctx, cancel := c.timeoutContext()
	defer cancel()

	stmt, err = c.conn.PrepareContext(ctx, statement)
	if err != nil {
		return nil, err
	}

	return
}

// unwrapRows takes sql.Rows and convert to Container
// Parameters
// @rows *sql.Rows inputs
func (c *Connection) unwrapRows(rows *sql.Rows) (*Container, error) {
	defer func() {
		if err := rows.Close(); err != nil {
			c.log.Error(context.Background(), "error closing rows", err)
		}
	}()

	container := newContainer()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	values := make([]any, len(columns))
	columnPointers := make([]any, len(columns))
	for i := range values {
		columnPointers[i] = &values[i]
	}

	for rows.Next() {
		if err = rows.Scan(columnPointers...); err != nil {
			c.log.Error(context.Background(), "error walking the rows", err)
			return nil, fmt.Errorf("error unwrapping rows [%s]", err.Error())
		}
		container.addToRows(columns, values)
	}
	if err := rows.Err(); err != nil {
		c.log.Error(context.Background(), "error at the end of the rows", err)
		return nil, fmt.Errorf("error unwrapping rows [%s]", err.Error())
	}

	return container, nil
}

// createConnection takes all the parameters a construct a new connection object to reuse as pool
// Parameters:
// @constr ConnectionString
// @configuration All The configurations that affect how the pool behaves
// @log logger used for pool lifecycle messages
func createConnection(constr string, configuration *ConnectionConfiguration, log logger.Interface) (*sql.DB, error) {
	conn, err := sql.Open("oracle", constr)
	if err != nil {
		return nil, CantCreateConnErr(err.Error())
	}

	timeout := 30 * time.Second

	if configuration != nil && configuration.ConfigurationSet {
		log.Info(context.Background(), "pool configuration",
			configuration.MaxOpenConnections,
			configuration.MaxIdleConnections,
			configuration.MaxConnectionLifeTime,
			configuration.MaxIdleConnectionTime,
		)

		conn.SetMaxOpenConns(configuration.MaxOpenConnections)
		conn.SetMaxIdleConns(configuration.MaxIdleConnections)
		conn.SetConnMaxLifetime(configuration.MaxConnectionLifeTime)
		conn.SetConnMaxIdleTime(configuration.MaxIdleConnectionTime)
		if configuration.ContextTimeout > 0 {
			timeout = time.Duration(configuration.ContextTimeout) * time.Second
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		return nil, CantPingConnection(fmt.Sprintf("PingContext %v", err.Error()))
	}

	return conn, nil
}
