package orakit

import (
	"database/sql/driver"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuilder(schemaPrefix, tablePrefix, table string) *QueryBuilder {
	c := newTestConnection(&fakeConn{})
	c.grammar = NewGrammar(schemaPrefix, tablePrefix)
	return c.Table(table)
}

func TestQueryBuilderToSQL(t *testing.T) {
	results := []struct {
		Build  func() *QueryBuilder
		Result string
		Values []driver.Value
	}{
		{
			func() *QueryBuilder { return testBuilder("", "", "users") },
			"SELECT * FROM users", nil,
		},
		{
			func() *QueryBuilder {
				return testBuilder("S.", "T_", "users").Select("id", "name")
			},
			"SELECT id, name FROM S.T_users", nil,
		},
		{
			func() *QueryBuilder {
				return testBuilder("", "", "users").Where("id", "=", 7)
			},
			"SELECT * FROM users WHERE id = :1", []driver.Value{7},
		},
		{
			func() *QueryBuilder {
				return testBuilder("", "", "users").
					Where("age", ">", 18).
					Where("city", "=", "SS").
					OrderBy("name", "asc").
					Limit(10).
					Offset(20)
			},
			"SELECT * FROM users WHERE age > :1 AND city = :2 ORDER BY name ASC OFFSET 20 ROWS FETCH NEXT 10 ROWS ONLY",
			[]driver.Value{18, "SS"},
		},
		{
			func() *QueryBuilder {
				return testBuilder("", "", "payments").Select("count(*)").GroupBy("status")
			},
			"SELECT count(*) FROM payments GROUP BY status", nil,
		},
	}

	for _, result := range results {
		sqlText, values := result.Build().ToSQL()
		if sqlText != result.Result {
			t.Errorf("ToSQL() = %q, want %q", sqlText, result.Result)
		}
		if len(values) != len(result.Values) {
			t.Errorf("ToSQL() values = %v, want %v", values, result.Values)
			continue
		}
		for i := range values {
			if values[i] != result.Values[i] {
				t.Errorf("ToSQL() value[%d] = %v, want %v", i, values[i], result.Values[i])
			}
		}
	}
}

func TestQueryBuilderInsertSQL(t *testing.T) {
	q := testBuilder("S.", "T_", "users")
	sqlText, values := q.InsertSQL([]Assignment{
		{Column: "id", Value: 1},
		{Column: "name", Value: "ana"},
	})
	assert.Equal(t, "INSERT INTO S.T_users (id, name) VALUES (:1, :2)", sqlText)
	assert.Equal(t, []driver.Value{1, "ana"}, values)
}

func TestQueryBuilderUpdateSQL(t *testing.T) {
	q := testBuilder("", "", "users").Where("id", "=", 7)
	sqlText, values := q.UpdateSQL([]Assignment{{Column: "name", Value: "ana"}})
	assert.Equal(t, "UPDATE users SET name = :1 WHERE id = :2", sqlText)
	assert.Equal(t, []driver.Value{"ana", 7}, values)
}

func TestQueryBuilderDelete(t *testing.T) {
	fc := &fakeConn{}
	c := newTestConnection(fc)

	result := c.Table("users").Where("id", "=", 7).Delete()
	require.NoError(t, result.Error)
	assert.Equal(t, "DELETE FROM users WHERE id = :1", lastStatement(t, fc).query)
}

func TestTableForAppliesNaming(t *testing.T) {
	c := newTestConnection(&fakeConn{})
	c.Config.Naming = NamingStrategy{TablePrefix: "T_"}

	sqlText, _ := c.TableFor("CreditCard").ToSQL()
	assert.Equal(t, "SELECT * FROM T_credit_cards", sqlText)
}

func TestQueryBuilderReservedColumn(t *testing.T) {
	q := testBuilder("", "", "cards")
	sqlText, _ := q.Where("number", "=", "4111").ToSQL()
	assert.Equal(t, `SELECT * FROM cards WHERE "number" = :1`, sqlText)
}
