package orakit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	goOra "github.com/sijms/go-ora/v2"
)

// buildFunctionBlock wraps a function call expression in an anonymous
// PL/SQL block assigning into the distinguished :result bind. The
// expression carries its own placeholders, e.g. "FN(:a, :b)".
func buildFunctionBlock(expression string) string {
	return fmt.Sprintf("begin :result := %s; end;", expression)
}

// buildProcedureBlock renders an anonymous PL/SQL block calling the named
// procedure with named-argument syntax, inputs before outputs, preserving
// each list's order.
func buildProcedureBlock(name string, in []*Param, out []*Param) string {
	args := make([]string, 0, len(in)+len(out))
	for _, p := range in {
		args = append(args, fmt.Sprintf("%s => :%s", p.Name, p.Name))
	}
	for _, p := range out {
		args = append(args, fmt.Sprintf("%s => :%s", p.Name, p.Name))
	}
	return fmt.Sprintf("begin %s(%s); end;", name, strings.Join(args, ", "))
}

// checkBindNames rejects invocations reusing a bind name, since inputs and
// outputs land in the same named-parameter list.
func checkBindNames(in []*Param, out []*Param) error {
	seen := make(map[string]struct{}, len(in)+len(out))
	for _, p := range append(append([]*Param{}, in...), out...) {
		if _, dup := seen[p.Name]; dup {
			return DuplicateBindErr(p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

// ExecuteFunction invokes a stored function through an anonymous PL/SQL
// block. Input parameters bind by name; every output parameter binds as a
// string with a MaxOutputSize buffer regardless of its declared type. The
// return value is handled per @ret:
//   - TypeCursor: the :result ref cursor is wrapped, fully fetched into
//     Result.Data and closed before returning.
//   - anything else: the scalar lands in Result.Value, and Result.Outputs
//     carries the post-execution output values when output bindings exist.
//
// Parameters:
// @expression: function call text including placeholders, e.g. "FN(:a)"
// @in: input parameters
// @out: output parameters
// @ret: declared return type
func (c *Connection) ExecuteFunction(expression string, in []*Param, out []*Param, ret ReturnType) Result {
	stmt := buildFunctionBlock(expression)
	c.log.Info(context.Background(), "+++ Hit ExecuteFunction", stmt, len(in), len(out))

	if err := checkBindNames(in, out); err != nil {
		return Result{Error: err}
	}
	if err := c.Ping(); err != nil {
		c.log.Error(context.Background(), "connection check failed before function call", err)
		return Result{Error: err}
	}

	args := make([]any, 0, len(in)+len(out)+1)
	for _, p := range in {
		args = append(args, namedBindValue(p))
	}
	slots := make([]*outSlot, 0, len(out))
	for _, p := range out {
		a, slot := namedOutValue(p)
		args = append(args, a)
		slots = append(slots, slot)
	}

	if ret == TypeCursor {
		return c.callFunctionCursor(stmt, args)
	}

	var strResult string
	var intResult int64
	switch ret {
	case TypeInt:
		args = append(args, sql.Named("result", goOra.Out{Dest: &intResult}))
	default:
		args = append(args, sql.Named("result", goOra.Out{Dest: &strResult, Size: MaxOutputSize}))
	}

	if err := c.execBlock(stmt, args); err != nil {
		return Result{Error: err}
	}

	var value any = strResult
	if ret == TypeInt {
		value = intResult
	}

	result := Result{Value: value, HasData: true}
	if len(slots) > 0 {
		result.Outputs = collectOutputs(slots)
	}
	return result
}

// callFunctionCursor executes the block with :result bound as a ref cursor,
// fetches every row and releases the cursor on all paths.
func (c *Connection) callFunctionCursor(stmt string, args []any) Result {
	var cursor goOra.RefCursor
	args = append(args, sql.Named("result", goOra.Out{Dest: &cursor}))

	if err := c.execBlock(stmt, args); err != nil {
		return Result{Error: err}
	}

	defer func() {
		c.log.Info(context.Background(), "closing cursor on deferred function - ExecuteFunction")
		if err := cursor.Close(); err != nil {
			c.log.Error(context.Background(), "error closing cursor", err)
		}
	}()

	ctx, cancel := c.timeoutContext()
	defer cancel()
	rows, err := goOra.WrapRefCursor(ctx, c.conn, &cursor)
	if err != nil {
		c.log.Error(context.Background(), "error executing the cursor", err)
		return Result{Error: err}
	}

	defer func() {
		if err := rows.Close(); err != nil {
			c.log.Error(context.Background(), "error closing rows", err)
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

// ExecuteProcedure invokes a stored procedure through an anonymous PL/SQL
// block with named-argument syntax. Slice-valued inputs bind as integer
// arrays sized to the slice; outputs bind as strings with a MaxOutputSize
// buffer. With output bindings the populated Outputs map is returned,
// otherwise only the execution outcome.
// Parameters:
// @name: procedure name, optionally package- or schema-qualified
// @in: input parameters
// @out: output parameters
func (c *Connection) ExecuteProcedure(name string, in []*Param, out []*Param) Result {
	stmt := buildProcedureBlock(name, in, out)
	c.log.Info(context.Background(), "+++ Hit ExecuteProcedure", stmt, len(in), len(out))

	if err := checkBindNames(in, out); err != nil {
		return Result{Error: err}
	}
	if err := c.Ping(); err != nil {
		c.log.Error(context.Background(), "connection check failed before procedure call", err)
		return Result{Error: err}
	}

	args := make([]any, 0, len(in)+len(out))
	for _, p := range in {
		args = append(args, namedBindValue(p))
	}
	slots := make([]*outSlot, 0, len(out))
	for _, p := range out {
		a, slot := namedOutValue(p)
		args = append(args, a)
		slots = append(slots, slot)
	}

	if err := c.execBlock(stmt, args); err != nil {
		return Result{Error: err}
	}

	result := Result{Success: true}
	if len(slots) > 0 {
		result.Outputs = collectOutputs(slots)
		result.HasData = true
	}
	return result
}

// execBlock runs one anonymous block. A single invocation is exactly-once
// from this layer's perspective; failures propagate without retry.
func (c *Connection) execBlock(stmt string, args []any) error {
	ctx, cancel := c.timeoutContext()
	defer cancel()

	begin := time.Now()
	_, err := c.exec.ExecContext(ctx, stmt, args...)
	c.log.Trace(ctx, begin, func() (string, int64) { return stmt, 0 }, err)
	return err
}

// collectOutputs copies each post-execution output value back into its
// Param and into the returned map.
func collectOutputs(slots []*outSlot) map[string]any {
	outputs := make(map[string]any, len(slots))
	for _, s := range slots {
		s.param.Value = s.dest
		outputs[s.param.Name] = s.dest
	}
	return outputs
}
