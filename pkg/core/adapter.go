package core

import "database/sql"

// AdapterConfig holds configuration for connecting to a database.
// Engine-specific options travel in Options (string values from config files)
// and Params (typed values from host code).
type AdapterConfig struct {
	Type     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Options  map[string]string
	Params   map[string]any
}

// Column represents a column in a database table.
// It doubles as the column descriptor used to pick a value parser,
// TypeCode/Type being the engine-native type identifiers.
type Column struct {
	Name     string
	Type     string
	TypeCode int
	Nullable bool
	Position int
}

// TableMetadata holds metadata about a database table.
type TableMetadata struct {
	Schema      string
	Name        string
	Columns     []Column
	Constraints []Constraint
	Indexes     []Index
	RowCount    int64
}

// Constraint describes a table constraint as reported by the system catalog.
type Constraint struct {
	Name  string
	Type  string
	Index string
}

// Index describes a table index and the fields it covers, in segment order.
type Index struct {
	Name   string
	Table  string
	Fields []string
	// Unique is an approximation. The minimal catalog query does not read
	// RDB$UNIQUE_FLAG, so every index reports true.
	Unique bool
}

// ResultSet is a fully materialized query result. Row values have already
// been converted to host values.
type ResultSet struct {
	Columns []Column
	Rows    []map[string]any
}

// Len returns the number of rows.
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// ColumnNames returns the result column names in order.
func (r *ResultSet) ColumnNames() []string {
	names := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		names[i] = c.Name
	}
	return names
}

// TxOptions configures a transaction start.
type TxOptions struct {
	ReadOnly  bool
	Isolation sql.IsolationLevel
}
