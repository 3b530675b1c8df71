package orakit

import (
	"database/sql"
	"database/sql/driver"
	"reflect"

	goOra "github.com/sijms/go-ora/v2"
)

// ParameterDirection defines the direction of the parameter
type ParameterDirection int

const (
	Input ParameterDirection = iota
	Output
	InOut
)

func (p ParameterDirection) String() string {
	return [...]string{"Input", "Output", "InputOutput"}[p]
}

// ReturnType is the declared type of a routine return value or output
// binding, owned by this package and translated to go-ora binds internally.
type ReturnType int

const (
	TypeString ReturnType = iota
	TypeInt
	TypeClob
	TypeCursor
)

func (t ReturnType) String() string {
	return [...]string{"String", "Int", "Clob", "Cursor"}[t]
}

// MaxOutputSize is the buffer size used for every string output binding.
// The server truncates anything beyond it.
const MaxOutputSize = 32767

// Param used to Select / Exec a statement or bind a stored routine argument.
// For Output and InOut directions the post-execution value is written back
// into Value.
type Param struct {
	Name      string
	Value     driver.Value
	Size      int
	Direction ParameterDirection
	Type      ReturnType
	IsRef     bool
}

// NewParam creates and fill a new Input Parameter
// Parameters:
// @name: Parameter name - only for control
// @value: value to be passed
func (c *Connection) NewParam(name string, value driver.Value) *Param {
	return &Param{
		Name:      name,
		Value:     value,
		Size:      100,
		Direction: Input,
	}
}

// NewInOutParam creates and fill a new InOut Parameter
// Parameters:
// @name: Parameter name - only for control
// @value: value to be passed
func (c *Connection) NewInOutParam(name string, value driver.Value) *Param {
	return &Param{
		Name:      name,
		Value:     value,
		Size:      100,
		Direction: InOut,
	}
}

// NewOutParam creates a new Output parameter of the given type
// Parameters:
// @name: Parameter name - only for control
func (c *Connection) NewOutParam(name string, t ReturnType) *Param {
	return &Param{
		Name:      name,
		Value:     "",
		Size:      MaxOutputSize,
		Direction: Output,
		Type:      t,
	}
}

// NewCursorParam creates a new Output parameter of type sys_refcursor
// Parameters:
// @name: Parameter name - only for control
func (c *Connection) NewCursorParam(name string) *Param {
	return &Param{
		Name:      name,
		Value:     "",
		Size:      1000,
		Direction: Output,
		Type:      TypeCursor,
		IsRef:     true,
	}
}

// NewClobParam creates a new Output parameter of type CLOB
func (c *Connection) NewClobParam(name string) *Param {
	return &Param{
		Name:      name,
		Value:     "",
		Size:      100000,
		Direction: Output,
		Type:      TypeClob,
	}
}

// params parsed params list
type params struct {
	values []any
	isRef  bool
	isClob bool
	cursor *goOra.RefCursor
	clob   *goOra.Clob
}

// buildParamsList takes a list of @Param and convert to a list of
// values recognized by go_ora for positional replacement
// Parameters:
// @parameters List of parameters to convert
func buildParamsList(parameters []*Param) *params {
	l := &params{}
	var v []any
	var cursor goOra.RefCursor
	var clob goOra.Clob

	for _, p := range parameters {

		// for cursors a goOra.RefCursor is needed
		if p.IsRef || p.Type == TypeCursor {
			l.isRef = true
			l.cursor = &cursor
			v = append(v, goOra.Out{Dest: l.cursor})
			continue
		}

		// output CLOBs land in a shared goOra.Clob destination
		if p.Type == TypeClob && p.Direction != Input {
			l.isClob = true
			l.clob = &clob
			v = append(v, goOra.Out{Dest: l.clob, Size: p.Size})
			continue
		}

		v = append(v, p.Value)
	}

	l.values = v

	return l
}

// outSlot pairs an output Param with the destination go-ora writes into,
// so the value can be copied back after execution without aliasing.
type outSlot struct {
	param *Param
	dest  string
}

// namedBindValue converts an input Param into a sql.Named argument.
// Slice values bind as integer arrays sized to the slice length.
func namedBindValue(p *Param) any {
	rv := reflect.ValueOf(p.Value)
	if rv.Kind() == reflect.Slice {
		switch rv.Type().Elem().Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			arr := make([]int64, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				arr[i] = rv.Index(i).Int()
			}
			return sql.Named(p.Name, arr)
		}
	}
	return sql.Named(p.Name, p.Value)
}

// namedOutValue converts an output Param into a sql.Named argument and
// returns the slot its value will be read back from. Output bindings are
// always string typed with a MaxOutputSize buffer.
func namedOutValue(p *Param) (any, *outSlot) {
	slot := &outSlot{param: p}
	return sql.Named(p.Name, goOra.Out{Dest: &slot.dest, Size: MaxOutputSize}), slot
}
