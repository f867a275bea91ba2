package firebird

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	fbdialect "github.com/leapstack-labs/fbdialect/pkg/adapters/firebird/dialect"
	"github.com/leapstack-labs/fbdialect/pkg/adapters/firebird/fbtypes"
	"github.com/leapstack-labs/fbdialect/pkg/core"
	"github.com/leapstack-labs/fbdialect/pkg/sqlerr"
)

// ListSchemas returns the single pseudo-schema: the attached database.
func (a *Adapter) ListSchemas(ctx context.Context) ([]string, error) {
	rs, err := a.Run(ctx, a.gen.ListSchemasQuery())
	if err != nil {
		return nil, err
	}
	return stringColumn(rs, "SCHEMA_NAME"), nil
}

// ListTables lists user tables.
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	return a.ListRelations(ctx, fbdialect.ListTablesOptions{})
}

// ListRelations lists relations, optionally with system tables and views.
func (a *Adapter) ListRelations(ctx context.Context, opts fbdialect.ListTablesOptions) ([]string, error) {
	rs, err := a.Run(ctx, a.gen.ListTablesQuery(opts))
	if err != nil {
		return nil, err
	}
	return stringColumn(rs, "TABLE_NAME"), nil
}

// DescribeTable lists the columns of a table from RDB$RELATION_FIELDS.
func (a *Adapter) DescribeTable(ctx context.Context, table string) ([]core.Column, error) {
	rs, err := a.Run(ctx, a.gen.DescribeTableQuery(table))
	if err != nil {
		return nil, err
	}

	columns := make([]core.Column, 0, rs.Len())
	for _, row := range rs.Rows {
		code := intField(row, "FIELD_TYPE")
		columns = append(columns, core.Column{
			Name: stringField(row, "COLUMN_NAME"),
			Type: fbtypes.FieldTypeName(code,
				intField(row, "FIELD_SUB_TYPE"),
				intField(row, "FIELD_LENGTH"),
				intField(row, "FIELD_PRECISION"),
				intField(row, "FIELD_SCALE")),
			TypeCode: code,
			Nullable: intField(row, "NULL_FLAG") == 0,
			Position: intField(row, "FIELD_POSITION") + 1,
		})
	}
	return columns, nil
}

// ShowConstraints lists the constraints of a table.
func (a *Adapter) ShowConstraints(ctx context.Context, table string) ([]core.Constraint, error) {
	rs, err := a.Run(ctx, a.gen.ShowConstraintsQuery(table))
	if err != nil {
		return nil, err
	}
	out := make([]core.Constraint, 0, rs.Len())
	for _, row := range rs.Rows {
		out = append(out, core.Constraint{
			Name:  stringField(row, "CONSTRAINT_NAME"),
			Type:  stringField(row, "CONSTRAINT_TYPE"),
			Index: stringField(row, "INDEX_NAME"),
		})
	}
	return out, nil
}

// ShowIndexes lists the index names of a table.
func (a *Adapter) ShowIndexes(ctx context.Context, table string) ([]string, error) {
	rs, err := a.Run(ctx, a.gen.ShowIndexesQuery(table))
	if err != nil {
		return nil, err
	}
	return stringColumn(rs, "INDEX_NAME"), nil
}

// Indexes returns the indexes of a table with their fields in segment
// order. Unique is always true: the minimal catalog join does not read
// RDB$UNIQUE_FLAG, so callers must not rely on it.
func (a *Adapter) Indexes(ctx context.Context, table string) ([]core.Index, error) {
	rs, err := a.Run(ctx, a.gen.IndexDetailsQuery(table))
	if err != nil {
		return nil, err
	}
	return groupIndexes(rs), nil
}

func groupIndexes(rs *core.ResultSet) []core.Index {
	var (
		out []core.Index
		pos = map[string]int{}
	)
	for _, row := range rs.Rows {
		name := stringField(row, "INDEX_NAME")
		i, ok := pos[name]
		if !ok {
			i = len(out)
			pos[name] = i
			out = append(out, core.Index{
				Name:   name,
				Table:  stringField(row, "TABLE_NAME"),
				Unique: true,
			})
		}
		out[i].Fields = append(out[i].Fields, stringField(row, "FIELD_NAME"))
	}
	return out
}

// CountRows counts the rows of a table.
func (a *Adapter) CountRows(ctx context.Context, table string) (int64, error) {
	rs, err := a.Run(ctx, a.gen.CountRowsQuery(table))
	if err != nil {
		return 0, err
	}
	if rs.Len() == 0 {
		return 0, nil
	}
	return int64Field(rs.Rows[0], "ROW_COUNT"), nil
}

// GetTableMetadata retrieves columns, constraints, indexes and the row count.
func (a *Adapter) GetTableMetadata(ctx context.Context, table string) (*core.TableMetadata, error) {
	columns, err := a.DescribeTable(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, sqlerr.New(sqlerr.KindDatabaseError, fmt.Errorf("table %s not found", table))
	}
	constraints, err := a.ShowConstraints(ctx, table)
	if err != nil {
		return nil, err
	}
	indexes, err := a.Indexes(ctx, table)
	if err != nil {
		return nil, err
	}

	// Non-fatal, leave the count at 0
	count, err := a.CountRows(ctx, table)
	if err != nil {
		a.logger.Debug("row count failed", slog.String("table", table), slog.String("error", err.Error()))
	}

	return &core.TableMetadata{
		Name:        table,
		Columns:     columns,
		Constraints: constraints,
		Indexes:     indexes,
		RowCount:    count,
	}, nil
}

// field reads a catalog column whichever key case the session uses.
func field(row map[string]any, name string) any {
	if v, ok := row[name]; ok {
		return v
	}
	return row[strings.ToLower(name)]
}

func stringField(row map[string]any, name string) string {
	switch v := field(row, name).(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []byte:
		return strings.TrimSpace(string(v))
	default:
		return fmt.Sprint(v)
	}
}

func int64Field(row map[string]any, name string) int64 {
	switch v := field(row, name).(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n
	case decimal.Decimal:
		return v.IntPart()
	default:
		return 0
	}
}

func intField(row map[string]any, name string) int {
	return int(int64Field(row, name))
}

func stringColumn(rs *core.ResultSet, name string) []string {
	out := make([]string, 0, rs.Len())
	for _, row := range rs.Rows {
		out = append(out, stringField(row, name))
	}
	return out
}
