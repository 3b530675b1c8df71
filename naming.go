package orakit

import (
	"strings"

	"github.com/jinzhu/inflection"
)

// NamingStrategy converts Go-side names into table names before the grammar
// prefixes and quotes them.
type NamingStrategy struct {
	TablePrefix   string
	SingularTable bool
}

// TableName convert string to table name
func (ns NamingStrategy) TableName(str string) string {
	if ns.SingularTable {
		return ns.TablePrefix + toDBName(str)
	}
	return ns.TablePrefix + inflection.Plural(toDBName(str))
}

// ColumnName convert string to column name
func (ns NamingStrategy) ColumnName(column string) string {
	return toDBName(column)
}

// toDBName converts CamelCase names to snake_case.
func toDBName(name string) string {
	if name == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !lastUpper(name, i) {
				b.WriteByte('_')
			}
			b.WriteRune(r + 32)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// lastUpper reports whether the rune before index i is upper case, so runs
// of initialisms like "ID" stay together.
func lastUpper(name string, i int) bool {
	prev := name[i-1]
	return prev >= 'A' && prev <= 'Z'
}
