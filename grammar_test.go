package orakit

import "testing"

func TestWrapTable(t *testing.T) {
	results := []struct {
		SchemaPrefix string
		TablePrefix  string
		Table        string
		Result       string
	}{
		{"", "", "users", "users"},
		{"", "T_", "users", "T_users"},
		// schema prefix composes outermost
		{"S.", "T_", "users", "S.T_users"},
		{"HR.", "", "employees", "HR.employees"},
		// reserved words get quoted per segment
		{"", "", "session", `"session"`},
		{"HR.", "", "session", `HR."session"`},
	}

	for _, result := range results {
		g := NewGrammar(result.SchemaPrefix, result.TablePrefix)
		if got := g.WrapTable(result.Table); got != result.Result {
			t.Errorf("WrapTable(%q/%q, %q) = %q, want %q",
				result.SchemaPrefix, result.TablePrefix, result.Table, got, result.Result)
		}
	}
}

func TestResolvePrefix(t *testing.T) {
	g := NewGrammar("S.", "T_")
	if got := g.ResolvePrefix(); got != "S.T_" {
		t.Errorf("ResolvePrefix() = %q, want %q", got, "S.T_")
	}
}

func TestWrapReservedOnly(t *testing.T) {
	g := NewGrammar("", "")
	if got := g.Wrap("name"); got != "name" {
		t.Errorf("Wrap(name) = %q", got)
	}
	if got := g.Wrap("number"); got != `"number"` {
		t.Errorf("Wrap(number) = %q", got)
	}
	// matching is case-insensitive
	if got := g.Wrap("SELECT"); got != `"SELECT"` {
		t.Errorf("Wrap(SELECT) = %q", got)
	}
}

func TestBindVar(t *testing.T) {
	g := NewGrammar("", "")
	if got := g.BindVar(3); got != ":3" {
		t.Errorf("BindVar(3) = %q", got)
	}
}

func TestSelectFromDummyTable(t *testing.T) {
	g := NewGrammar("", "")
	if got := g.SelectFromDummyTable(); got != "FROM DUAL" {
		t.Errorf("SelectFromDummyTable() = %q", got)
	}
}

func TestLimitAndOffsetSQL(t *testing.T) {
	g := NewGrammar("", "")
	results := []struct {
		Limit  int
		Offset int
		Result string
	}{
		{0, 0, ""},
		{10, 0, " FETCH NEXT 10 ROWS ONLY"},
		{0, 5, " OFFSET 5 ROWS"},
		{10, 5, " OFFSET 5 ROWS FETCH NEXT 10 ROWS ONLY"},
	}
	for _, result := range results {
		if got := g.LimitAndOffsetSQL(result.Limit, result.Offset); got != result.Result {
			t.Errorf("LimitAndOffsetSQL(%d, %d) = %q, want %q", result.Limit, result.Offset, got, result.Result)
		}
	}
}
