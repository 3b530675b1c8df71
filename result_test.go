package orakit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser(t *testing.T) {
	type agency struct {
		Code int    `mapstructure:"CODE"`
		Name string `mapstructure:"NAME"`
	}

	source := Result{
		Container: &Container{Data: []Record{
			{"CODE": 503, "NAME": "CENTRAL"},
			{"CODE": 502, "NAME": "NORTH"},
		}},
	}

	agencies, err := Parser[[]agency](source)
	require.NoError(t, err)
	require.Len(t, agencies, 2)
	assert.Equal(t, 503, agencies[0].Code)
	assert.Equal(t, "NORTH", agencies[1].Name)
}

func TestRecordTime(t *testing.T) {
	when := time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)
	r := Record{
		"CREATED_AT": when,
		"UPDATED_AT": "2024-05-17 10:30:00",
		"NAME":       "ana",
		"DELETED_AT": nil,
	}

	got, err := r.Time("CREATED_AT")
	require.NoError(t, err)
	assert.True(t, got.Equal(when))

	got, err = r.Time("UPDATED_AT")
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.May, got.Month())

	_, err = r.Time("NAME")
	require.Error(t, err)

	_, err = r.Time("DELETED_AT")
	require.Error(t, err)

	_, err = r.Time("MISSING")
	require.Error(t, err)
}

func TestContainerAddToRows(t *testing.T) {
	c := newContainer()
	c.addToRows([]string{"A", "B"}, []any{1, "x"})
	c.addToRows([]string{"A", "B"}, []any{2, "y"})

	require.Len(t, c.Data, 2)
	assert.Equal(t, 1, c.Data[0]["A"])
	assert.Equal(t, "y", c.Data[1]["B"])
}
