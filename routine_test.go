package orakit

import (
	"database/sql"
	"errors"
	"testing"

	goOra "github.com/sijms/go-ora/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFunctionBlock(t *testing.T) {
	if got := buildFunctionBlock("F(:a)"); got != "begin :result := F(:a); end;" {
		t.Errorf("buildFunctionBlock = %q", got)
	}
	if got := buildFunctionBlock("PKG.FN(:a, :b)"); got != "begin :result := PKG.FN(:a, :b); end;" {
		t.Errorf("buildFunctionBlock = %q", got)
	}
}

func TestBuildProcedureBlock(t *testing.T) {
	c := newTestConnection(&fakeConn{})

	results := []struct {
		Name   string
		In     []*Param
		Out    []*Param
		Result string
	}{
		{"P", nil, nil, "begin P(); end;"},
		{
			"P",
			[]*Param{c.NewParam("a", 1)},
			nil,
			"begin P(a => :a); end;",
		},
		{
			"P",
			[]*Param{c.NewParam("a", 1)},
			[]*Param{c.NewOutParam("b", TypeString)},
			"begin P(a => :a, b => :b); end;",
		},
		{
			// inputs listed before outputs, each list keeps its order
			"HR.ENROLL",
			[]*Param{c.NewParam("emp", 7), c.NewParam("dept", 10)},
			[]*Param{c.NewOutParam("msg", TypeString), c.NewOutParam("code", TypeString)},
			"begin HR.ENROLL(emp => :emp, dept => :dept, msg => :msg, code => :code); end;",
		},
	}

	for _, result := range results {
		if got := buildProcedureBlock(result.Name, result.In, result.Out); got != result.Result {
			t.Errorf("buildProcedureBlock(%q) = %q, want %q", result.Name, got, result.Result)
		}
	}
}

func TestCheckBindNamesRejectsDuplicates(t *testing.T) {
	c := newTestConnection(&fakeConn{})

	err := checkBindNames(
		[]*Param{c.NewParam("a", 1)},
		[]*Param{c.NewOutParam("a", TypeString)},
	)
	require.Error(t, err)

	err = checkBindNames(
		[]*Param{c.NewParam("a", 1), c.NewParam("b", 2)},
		[]*Param{c.NewOutParam("out1", TypeString)},
	)
	require.NoError(t, err)
}

func TestNamedBindValueArray(t *testing.T) {
	c := newTestConnection(&fakeConn{})

	arg := namedBindValue(c.NewParam("ids", []int{7, 8, 9}))
	named, ok := arg.(sql.NamedArg)
	require.True(t, ok)
	assert.Equal(t, "ids", named.Name)
	assert.Equal(t, []int64{7, 8, 9}, named.Value)

	arg = namedBindValue(c.NewParam("blob", []byte("raw")))
	named = arg.(sql.NamedArg)
	assert.Equal(t, []byte("raw"), named.Value)
}

func TestNamedOutValueSize(t *testing.T) {
	c := newTestConnection(&fakeConn{})

	arg, slot := namedOutValue(c.NewOutParam("out1", TypeInt))
	named := arg.(sql.NamedArg)
	out, ok := named.Value.(goOra.Out)
	require.True(t, ok)
	// output bindings are string/32767 regardless of declared type
	assert.Equal(t, MaxOutputSize, out.Size)
	assert.Same(t, &slot.dest, out.Dest)
}

func TestExecuteProcedureWithoutOutputs(t *testing.T) {
	fc := &fakeConn{}
	c := newTestConnection(fc)

	result := c.ExecuteProcedure("P", []*Param{c.NewParam("a", 1)}, nil)
	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.Nil(t, result.Outputs)

	stmt := lastStatement(t, fc)
	assert.Equal(t, "begin P(a => :a); end;", stmt.query)
	require.Len(t, stmt.args, 1)
	assert.Equal(t, "a", stmt.args[0].Name)
}

func TestExecuteProcedureWithOutputs(t *testing.T) {
	fc := &fakeConn{outValue: "CENTRAL"}
	c := newTestConnection(fc)

	out := c.NewOutParam("b", TypeString)
	result := c.ExecuteProcedure("P", []*Param{c.NewParam("a", 1)}, []*Param{out})
	require.NoError(t, result.Error)
	assert.Equal(t, map[string]any{"b": "CENTRAL"}, result.Outputs)
	// the out-slot is copied back into the parameter itself
	assert.Equal(t, "CENTRAL", out.Value)
	assert.Equal(t, "begin P(a => :a, b => :b); end;", lastStatement(t, fc).query)
}

func TestExecuteFunctionScalar(t *testing.T) {
	fc := &fakeConn{outValue: "42"}
	c := newTestConnection(fc)

	result := c.ExecuteFunction("F(:a)", []*Param{c.NewParam("a", 5)}, nil, TypeString)
	require.NoError(t, result.Error)
	assert.Equal(t, "42", result.Value)
	assert.Nil(t, result.Outputs)

	stmt := lastStatement(t, fc)
	assert.Equal(t, "begin :result := F(:a); end;", stmt.query)
	require.Len(t, stmt.args, 2)
	assert.Equal(t, "a", stmt.args[0].Name)
	assert.Equal(t, "result", stmt.args[1].Name)
}

func TestExecuteFunctionWithOutputs(t *testing.T) {
	fc := &fakeConn{outValue: "written"}
	c := newTestConnection(fc)

	out := c.NewOutParam("out1", TypeString)
	result := c.ExecuteFunction("F(:a)", []*Param{c.NewParam("a", 5)}, []*Param{out}, TypeString)
	require.NoError(t, result.Error)
	// two-element result: the populated outputs and the scalar return value
	assert.Equal(t, map[string]any{"out1": "written"}, result.Outputs)
	assert.Equal(t, "written", result.Value)
}

func TestExecuteFunctionDuplicateBind(t *testing.T) {
	fc := &fakeConn{}
	c := newTestConnection(fc)

	result := c.ExecuteFunction("F(:a)",
		[]*Param{c.NewParam("a", 5)},
		[]*Param{c.NewOutParam("a", TypeString)},
		TypeString)
	require.Error(t, result.Error)
	assert.Empty(t, fc.statements)
}

func TestExecuteFunctionCursorStatement(t *testing.T) {
	// the fake driver cannot produce a real ref cursor; failing the
	// execution still proves the anonymous block and the cursor bind that
	// were issued
	fc := &fakeConn{execErr: errors.New("ORA-00900")}
	c := newTestConnection(fc)

	result := c.ExecuteFunction("F(:a)", []*Param{c.NewParam("a", 5)}, nil, TypeCursor)
	require.Error(t, result.Error)

	stmt := lastStatement(t, fc)
	assert.Equal(t, "begin :result := F(:a); end;", stmt.query)
	require.Len(t, stmt.args, 2)
	out, ok := stmt.args[1].Value.(goOra.Out)
	require.True(t, ok)
	_, isCursor := out.Dest.(*goOra.RefCursor)
	assert.True(t, isCursor)
}
