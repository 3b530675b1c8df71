package orakit

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"
	"github.com/mitchellh/mapstructure"
)

// Record one row fetched from the server, keyed by column name
type Record map[string]any

// Container Data returned by Select and cursor-returning routines
type Container struct {
	Data []Record
}

// Result unique returning type
type Result struct {
	*Container
	Error           error
	RecordsAffected int64
	HasData         bool

	// Outputs holds the post-execution value of every output binding after
	// a stored routine invocation; nil when no output bindings were passed.
	Outputs map[string]any

	// Value holds the scalar :result value of a function invocation.
	Value any

	// Success is the raw execution outcome of a procedure invocation
	// without output bindings.
	Success bool
}

// Parser generic function to convert Result object to structure
// Parameters:
// @source: Result object that contains the data
func Parser[T any](source Result) (T, error) {
	var empty T
	var data T
	err := mapstructure.Decode(source.Data, &data)
	if err != nil {
		return empty, err
	}
	return data, nil
}

// Time reads a column as time.Time. DATE columns fetched through a session
// with a custom NLS format frequently arrive as strings, so string values
// are parsed flexibly.
func (r Record) Time(column string) (time.Time, error) {
	switch v := r[column].(type) {
	case time.Time:
		return v, nil
	case string:
		return now.Parse(v)
	case nil:
		return time.Time{}, fmt.Errorf("column [%s] is null or missing", column)
	default:
		return time.Time{}, fmt.Errorf("column [%s] is not a date value (%T)", column, v)
	}
}

// newContainer creates a new Container
func newContainer() *Container {
	return &Container{
		Data: make([]Record, 0, 1),
	}
}

// addToRows take the rows from the result and append the result
// to Container.Data
func (c *Container) addToRows(columns []string, values []any) {
	c.Data = append(c.Data, unwrapToRecord(columns, values))
}

// unwrapToRecord take every row and create a new Record
// Parameters:
// @columns Every column in the row set
// @values Every value in the row set
func unwrapToRecord(columns []string, values []any) Record {
	r := make(Record)
	for i, c := range values {
		r[columns[i]] = c
	}
	return r
}
