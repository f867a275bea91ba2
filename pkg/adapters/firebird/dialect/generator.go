package dialect

import (
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/fbdialect/pkg/adapters/firebird/fbtypes"
	"github.com/leapstack-labs/fbdialect/pkg/core"
	"github.com/leapstack-labs/fbdialect/pkg/dialect"
	"github.com/leapstack-labs/fbdialect/pkg/sqlerr"
)

// Statement is generated SQL with its positional parameters.
// Args may hold fbtypes.BoundValue entries; the executor binds them.
type Statement struct {
	SQL  string
	Args []any
}

// String returns the SQL text.
func (s Statement) String() string {
	return s.SQL
}

// Assignment is one column/value pair of an INSERT, UPDATE or MERGE.
// Wrap Value in fbtypes.BoundValue to bind it with a declared type.
type Assignment struct {
	Column string
	Value  any
}

// Order is one ORDER BY term.
type Order struct {
	Column string
	Desc   bool
}

// LockMode selects a row lock for SELECT.
type LockMode int

const (
	LockNone LockMode = iota
	// LockUpdate renders FOR UPDATE WITH LOCK.
	LockUpdate
	// LockShare renders the dialect's forShare keyword.
	LockShare
)

// Select describes a single-table query.
type Select struct {
	Table   string
	Columns []string
	Where   []Predicate
	OrderBy []Order
	// Limit and Offset are ignored when not positive.
	Limit  int
	Offset int
	Lock   LockMode
}

// Insert describes a single-row insert.
type Insert struct {
	Table            string
	Values           []Assignment
	Returning        []string
	IgnoreDuplicates bool
}

// Upsert describes an insert-or-update keyed on ConflictColumns.
// UpdateColumns defaults to every non-key column.
type Upsert struct {
	Table           string
	Values          []Assignment
	ConflictColumns []string
	UpdateColumns   []string
}

// Update describes an UPDATE.
type Update struct {
	Table     string
	Set       []Assignment
	Where     []Predicate
	Limit     int
	Returning []string
}

// Delete describes a DELETE.
type Delete struct {
	Table string
	Where []Predicate
	Limit int
}

// ColumnDef is a column in CREATE TABLE.
type ColumnDef struct {
	Name          string
	Type          fbtypes.ColumnType
	NotNull       bool
	Default       any
	HasDefault    bool
	PrimaryKey    bool
	Unique        bool
	AutoIncrement bool
}

// CreateTable describes a CREATE TABLE.
type CreateTable struct {
	Table   string
	Columns []ColumnDef
}

// TruncateOptions are the options a host may pass to truncate.
type TruncateOptions struct {
	Cascade         bool
	RestartIdentity bool
}

// ListTablesOptions filters the relation listing.
type ListTablesOptions struct {
	IncludeSystem bool
	IncludeViews  bool
}

// QueryGenerator renders abstract operations as Firebird SQL. Gated features
// fail with an UnsupportedOperation error and no SQL.
type QueryGenerator struct {
	dialect *dialect.Dialect
	types   *fbtypes.Marshaller
}

// NewQueryGenerator creates a generator. A nil dialect means Firebird.
func NewQueryGenerator(d *dialect.Dialect, types *fbtypes.Marshaller) *QueryGenerator {
	if d == nil {
		d = Firebird
	}
	return &QueryGenerator{dialect: d, types: types}
}

// Dialect returns the dialect the generator renders for.
func (g *QueryGenerator) Dialect() *dialect.Dialect {
	return g.dialect
}

func (g *QueryGenerator) quote(name string) string {
	return g.dialect.QuoteIdentifier(name)
}

func (g *QueryGenerator) quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = g.quote(n)
	}
	return strings.Join(quoted, ", ")
}

// ---------- Catalog queries ----------

// ListSchemasQuery returns the single pseudo-schema: the attached database.
func (g *QueryGenerator) ListSchemasQuery() Statement {
	return Statement{SQL: "SELECT RDB$GET_CONTEXT('SYSTEM', 'DB_NAME') AS SCHEMA_NAME FROM RDB$DATABASE"}
}

// ListTablesQuery lists relations from RDB$RELATIONS.
func (g *QueryGenerator) ListTablesQuery(opts ListTablesOptions) Statement {
	var where []string
	if !opts.IncludeSystem {
		where = append(where, "COALESCE(RDB$SYSTEM_FLAG, 0) = 0")
	}
	if !opts.IncludeViews {
		where = append(where, "RDB$VIEW_BLR IS NULL")
	}

	var b strings.Builder
	b.WriteString("SELECT TRIM(RDB$RELATION_NAME) AS TABLE_NAME FROM RDB$RELATIONS")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY RDB$RELATION_NAME")
	return Statement{SQL: b.String()}
}

// DescribeTableQuery lists the fields of a relation with their type codes
// and null flag, in field position order.
func (g *QueryGenerator) DescribeTableQuery(table string) Statement {
	return Statement{
		SQL: "SELECT TRIM(rf.RDB$FIELD_NAME) AS COLUMN_NAME, f.RDB$FIELD_TYPE AS FIELD_TYPE, " +
			"COALESCE(f.RDB$FIELD_SUB_TYPE, 0) AS FIELD_SUB_TYPE, COALESCE(f.RDB$CHARACTER_LENGTH, f.RDB$FIELD_LENGTH) AS FIELD_LENGTH, " +
			"COALESCE(f.RDB$FIELD_PRECISION, 0) AS FIELD_PRECISION, COALESCE(f.RDB$FIELD_SCALE, 0) AS FIELD_SCALE, " +
			"COALESCE(rf.RDB$NULL_FLAG, f.RDB$NULL_FLAG, 0) AS NULL_FLAG, rf.RDB$FIELD_POSITION AS FIELD_POSITION " +
			"FROM RDB$RELATION_FIELDS rf JOIN RDB$FIELDS f ON f.RDB$FIELD_NAME = rf.RDB$FIELD_SOURCE " +
			"WHERE rf.RDB$RELATION_NAME = ? ORDER BY rf.RDB$FIELD_POSITION",
		Args: []any{table},
	}
}

// ShowConstraintsQuery lists the constraints of a relation.
func (g *QueryGenerator) ShowConstraintsQuery(table string) Statement {
	return Statement{
		SQL: "SELECT TRIM(RDB$CONSTRAINT_NAME) AS CONSTRAINT_NAME, TRIM(RDB$CONSTRAINT_TYPE) AS CONSTRAINT_TYPE, " +
			"TRIM(RDB$INDEX_NAME) AS INDEX_NAME FROM RDB$RELATION_CONSTRAINTS WHERE RDB$RELATION_NAME = ? " +
			"ORDER BY RDB$CONSTRAINT_NAME",
		Args: []any{table},
	}
}

// ShowIndexesQuery lists the index names of a relation.
func (g *QueryGenerator) ShowIndexesQuery(table string) Statement {
	return Statement{
		SQL:  "SELECT TRIM(RDB$INDEX_NAME) AS INDEX_NAME FROM RDB$INDICES WHERE RDB$RELATION_NAME = ? ORDER BY RDB$INDEX_NAME",
		Args: []any{table},
	}
}

// IndexDetailsQuery joins index segments to their index and relation, one
// row per indexed field in segment order.
func (g *QueryGenerator) IndexDetailsQuery(table string) Statement {
	return Statement{
		SQL: "SELECT TRIM(s.RDB$INDEX_NAME) AS INDEX_NAME, TRIM(i.RDB$RELATION_NAME) AS TABLE_NAME, " +
			"TRIM(s.RDB$FIELD_NAME) AS FIELD_NAME, s.RDB$FIELD_POSITION AS FIELD_POSITION " +
			"FROM RDB$INDEX_SEGMENTS s JOIN RDB$INDICES i ON i.RDB$INDEX_NAME = s.RDB$INDEX_NAME " +
			"WHERE i.RDB$RELATION_NAME = ? ORDER BY s.RDB$INDEX_NAME, s.RDB$FIELD_POSITION",
		Args: []any{table},
	}
}

// CountRowsQuery counts the rows of a table.
func (g *QueryGenerator) CountRowsQuery(table string) Statement {
	return Statement{SQL: "SELECT COUNT(*) AS ROW_COUNT FROM " + g.quote(table)}
}

// ---------- Data manipulation ----------

// TruncateTableQuery emulates TRUNCATE, which Firebird lacks, with an
// unconditional DELETE. Identity columns and generators are not reset.
func (g *QueryGenerator) TruncateTableQuery(table string, opts TruncateOptions) (Statement, error) {
	if opts.Cascade {
		if err := g.dialect.Require(core.FeatureTruncateCascade); err != nil {
			return Statement{}, err
		}
	}
	if opts.RestartIdentity {
		if err := g.dialect.Require(core.FeatureTruncateRestartIdentity); err != nil {
			return Statement{}, err
		}
	}
	return Statement{SQL: "DELETE FROM " + g.quote(table)}, nil
}

// SelectQuery renders a SELECT. Pagination uses FIRST/SKIP, which Firebird
// requires directly after the SELECT keyword.
func (g *QueryGenerator) SelectQuery(q Select) (Statement, error) {
	var b strings.Builder
	b.WriteString("SELECT ")

	if q.Limit > 0 {
		lit, err := g.types.Literal(fbtypes.ColumnType{Logical: fbtypes.TypeBigint}, q.Limit)
		if err != nil {
			return Statement{}, err
		}
		b.WriteString("FIRST " + lit + " ")
	}
	if q.Offset > 0 {
		lit, err := g.types.Literal(fbtypes.ColumnType{Logical: fbtypes.TypeBigint}, q.Offset)
		if err != nil {
			return Statement{}, err
		}
		b.WriteString("SKIP " + lit + " ")
	}

	if len(q.Columns) == 0 {
		b.WriteString("*")
	} else {
		b.WriteString(g.quoteAll(q.Columns))
	}
	b.WriteString(" FROM ")
	b.WriteString(g.quote(q.Table))

	where, args, err := g.where(q.Where, 1)
	if err != nil {
		return Statement{}, err
	}
	b.WriteString(where)

	if len(q.OrderBy) > 0 {
		terms := make([]string, len(q.OrderBy))
		for i, o := range q.OrderBy {
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			terms[i] = g.quote(o.Column) + " " + dir
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(terms, ", "))
	}

	switch q.Lock {
	case LockUpdate:
		if err := g.dialect.Require(core.FeatureLock); err != nil {
			return Statement{}, err
		}
		b.WriteString(" FOR UPDATE WITH LOCK")
	case LockShare:
		if err := g.dialect.Require(core.FeatureForShare); err != nil {
			return Statement{}, err
		}
		b.WriteString(" " + g.dialect.Capabilities().Value(core.FeatureForShare))
	}

	return Statement{SQL: b.String(), Args: args}, nil
}

// InsertQuery renders a single-row INSERT. An empty row inserts defaults.
func (g *QueryGenerator) InsertQuery(q Insert) (Statement, error) {
	if q.IgnoreDuplicates {
		if err := g.dialect.Require(core.FeatureInsertIgnoreDuplicates); err != nil {
			return Statement{}, err
		}
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(g.quote(q.Table))

	args := make([]any, 0, len(q.Values))
	if len(q.Values) == 0 {
		if err := g.dialect.Require(core.FeatureDefaultValues); err != nil {
			return Statement{}, err
		}
		b.WriteString(" DEFAULT VALUES")
	} else {
		cols := make([]string, len(q.Values))
		marks := make([]string, len(q.Values))
		for i, a := range q.Values {
			cols[i] = g.quote(a.Column)
			marks[i] = g.dialect.FormatPlaceholder(i + 1)
			args = append(args, a.Value)
		}
		fmt.Fprintf(&b, " (%s) VALUES (%s)", strings.Join(cols, ", "), strings.Join(marks, ", "))
	}

	ret, err := g.returning(q.Returning)
	if err != nil {
		return Statement{}, err
	}
	b.WriteString(ret)
	return Statement{SQL: b.String(), Args: args}, nil
}

// UpsertQuery renders insert-or-update as MERGE INTO over a one-row source
// selected from RDB$DATABASE. Source parameters are cast so the engine knows
// their types.
func (g *QueryGenerator) UpsertQuery(q Upsert) (Statement, error) {
	if err := g.dialect.Require(core.FeatureInsertUpdateDuplicate); err != nil {
		return Statement{}, err
	}
	if len(q.Values) == 0 {
		return Statement{}, sqlerr.Construction("upsert needs at least one value", nil)
	}
	if len(q.ConflictColumns) == 0 {
		return Statement{}, sqlerr.Construction("upsert needs conflict columns", nil)
	}

	columns := make([]string, len(q.Values))
	for i, a := range q.Values {
		columns[i] = a.Column
	}
	for _, c := range q.ConflictColumns {
		if !slices.Contains(columns, c) {
			return Statement{}, sqlerr.Construction(fmt.Sprintf("conflict column %q has no value", c), nil)
		}
	}

	updates := q.UpdateColumns
	if len(updates) == 0 {
		for _, c := range columns {
			if !slices.Contains(q.ConflictColumns, c) {
				updates = append(updates, c)
			}
		}
	}

	source := make([]string, len(q.Values))
	args := make([]any, len(q.Values))
	for i, a := range q.Values {
		cast, err := g.castType(a.Value)
		if err != nil {
			return Statement{}, err
		}
		source[i] = fmt.Sprintf("CAST(%s AS %s) AS %s", g.dialect.FormatPlaceholder(i+1), cast, g.quote(a.Column))
		args[i] = a.Value
	}

	on := make([]string, len(q.ConflictColumns))
	for i, c := range q.ConflictColumns {
		on[i] = fmt.Sprintf("tgt.%s = src.%s", g.quote(c), g.quote(c))
	}

	var b strings.Builder
	b.WriteString(g.dialect.Capabilities().Value(core.FeatureInsertUpdateDuplicate))
	b.WriteString(" ")
	b.WriteString(g.quote(q.Table))
	b.WriteString(" AS tgt USING (SELECT ")
	b.WriteString(strings.Join(source, ", "))
	b.WriteString(" FROM RDB$DATABASE) AS src ON (")
	b.WriteString(strings.Join(on, " AND "))
	b.WriteString(")")

	if len(updates) > 0 {
		sets := make([]string, len(updates))
		for i, c := range updates {
			if !slices.Contains(columns, c) {
				return Statement{}, sqlerr.Construction(fmt.Sprintf("update column %q has no value", c), nil)
			}
			sets[i] = fmt.Sprintf("%s = src.%s", g.quote(c), g.quote(c))
		}
		b.WriteString(" WHEN MATCHED THEN UPDATE SET ")
		b.WriteString(strings.Join(sets, ", "))
	}

	values := make([]string, len(columns))
	for i, c := range columns {
		values[i] = "src." + g.quote(c)
	}
	fmt.Fprintf(&b, " WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s)", g.quoteAll(columns), strings.Join(values, ", "))

	return Statement{SQL: b.String(), Args: args}, nil
}

// castType picks the CAST target for a MERGE source parameter.
func (g *QueryGenerator) castType(v any) (string, error) {
	var ct fbtypes.ColumnType
	if bv, ok := v.(fbtypes.BoundValue); ok {
		ct = bv.Type
	} else {
		ct = fbtypes.Infer(v)
		if ct.Logical == fbtypes.TypeString {
			// widest VARCHAR that fits in a UTF8 row buffer
			ct.Length = 8191
		}
	}
	if ct.Logical == fbtypes.TypeEnum {
		ct = fbtypes.ColumnType{Logical: fbtypes.TypeString}
	}
	if err := g.gateColumnType(ct); err != nil {
		return "", err
	}
	typ, _, err := g.types.ColumnParts(ct, "")
	return typ, err
}

// UpdateQuery renders an UPDATE.
func (g *QueryGenerator) UpdateQuery(q Update) (Statement, error) {
	if q.Limit > 0 {
		if err := g.dialect.Require(core.FeatureLimitOnUpdate); err != nil {
			return Statement{}, err
		}
	}
	if len(q.Set) == 0 {
		return Statement{}, sqlerr.Construction("update needs at least one assignment", nil)
	}

	sets := make([]string, len(q.Set))
	args := make([]any, 0, len(q.Set))
	for i, a := range q.Set {
		sets[i] = g.quote(a.Column) + " = " + g.dialect.FormatPlaceholder(i+1)
		args = append(args, a.Value)
	}

	where, whereArgs, err := g.where(q.Where, len(args)+1)
	if err != nil {
		return Statement{}, err
	}
	ret, err := g.returning(q.Returning)
	if err != nil {
		return Statement{}, err
	}

	text := "UPDATE " + g.quote(q.Table) + " SET " + strings.Join(sets, ", ") + where + ret
	return Statement{SQL: text, Args: append(args, whereArgs...)}, nil
}

// DeleteQuery renders a DELETE.
func (g *QueryGenerator) DeleteQuery(q Delete) (Statement, error) {
	if q.Limit > 0 {
		if err := g.dialect.Require(core.FeatureDeleteLimit); err != nil {
			return Statement{}, err
		}
	}
	where, args, err := g.where(q.Where, 1)
	if err != nil {
		return Statement{}, err
	}
	return Statement{SQL: "DELETE FROM " + g.quote(q.Table) + where, Args: args}, nil
}

func (g *QueryGenerator) returning(cols []string) (string, error) {
	if len(cols) == 0 {
		return "", nil
	}
	if err := g.dialect.Require(core.FeatureReturnValues); err != nil {
		return "", err
	}
	return " RETURNING " + g.quoteAll(cols), nil
}

// ---------- Transactions ----------

// StartTransactionQuery renders SET TRANSACTION for hosts that start
// transactions with SQL instead of through the driver.
func (g *QueryGenerator) StartTransactionQuery(opts core.TxOptions) (Statement, error) {
	var b strings.Builder
	b.WriteString("SET TRANSACTION")
	if opts.ReadOnly {
		if err := g.dialect.Require(core.FeatureTxReadOnly); err != nil {
			return Statement{}, err
		}
		b.WriteString(" READ ONLY")
	} else {
		b.WriteString(" READ WRITE")
	}

	level, err := IsolationLevel(opts.Isolation)
	if err != nil {
		return Statement{}, err
	}
	if level != "" {
		b.WriteString(" ISOLATION LEVEL ")
		b.WriteString(level)
	}
	return Statement{SQL: b.String()}, nil
}

// IsolationLevel maps a database/sql isolation level to Firebird's
// SET TRANSACTION wording. The default level yields "".
func IsolationLevel(level sql.IsolationLevel) (string, error) {
	switch level {
	case sql.LevelDefault:
		return "", nil
	case sql.LevelReadUncommitted, sql.LevelReadCommitted:
		return "READ COMMITTED", nil
	case sql.LevelRepeatableRead, sql.LevelSnapshot:
		return "SNAPSHOT", nil
	case sql.LevelSerializable:
		return "SNAPSHOT TABLE STABILITY", nil
	default:
		return "", sqlerr.Unsupported("firebird has no %s isolation level", level)
	}
}
