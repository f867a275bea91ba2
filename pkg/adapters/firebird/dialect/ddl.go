package dialect

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/fbdialect/pkg/adapters/firebird/fbtypes"
	"github.com/leapstack-labs/fbdialect/pkg/core"
	"github.com/leapstack-labs/fbdialect/pkg/sqlerr"
)

// modifierFeatures maps logical types to their unsigned and zerofill features.
var modifierFeatures = map[fbtypes.LogicalType][2]core.Feature{
	fbtypes.TypeSmallint: {core.FeatureTypeIntsUnsigned, core.FeatureTypeIntsZerofill},
	fbtypes.TypeInteger:  {core.FeatureTypeIntsUnsigned, core.FeatureTypeIntsZerofill},
	fbtypes.TypeBigint:   {core.FeatureTypeIntsUnsigned, core.FeatureTypeIntsZerofill},
	fbtypes.TypeFloat:    {core.FeatureTypeFloatUnsigned, core.FeatureTypeFloatZerofill},
	fbtypes.TypeReal:     {core.FeatureTypeRealUnsigned, core.FeatureTypeRealZerofill},
	fbtypes.TypeDouble:   {core.FeatureTypeDoubleUnsigned, core.FeatureTypeDoubleZerofill},
	fbtypes.TypeDecimal:  {core.FeatureTypeDecimalUnsign, core.FeatureTypeDecimalZerofil},
}

// gateColumnType consults the capability table before any DDL is rendered.
func (g *QueryGenerator) gateColumnType(ct fbtypes.ColumnType) error {
	switch ct.Logical {
	case fbtypes.TypeGeometry:
		return g.dialect.Require(core.FeatureTypeGeometry)
	case fbtypes.TypeJSON:
		return g.dialect.Require(core.FeatureTypeJSON)
	}

	features, ok := modifierFeatures[ct.Logical]
	if ct.Unsigned {
		if !ok {
			return sqlerr.Unsupported("UNSIGNED does not apply to %s", ct.Logical)
		}
		if err := g.dialect.Require(features[0]); err != nil {
			return err
		}
	}
	if ct.ZeroFill {
		if !ok {
			return sqlerr.Unsupported("ZEROFILL does not apply to %s", ct.Logical)
		}
		if err := g.dialect.Require(features[1]); err != nil {
			return err
		}
	}
	return nil
}

// ColumnDefinitionSQL renders one column of CREATE TABLE or ALTER TABLE ADD.
func (g *QueryGenerator) ColumnDefinitionSQL(c ColumnDef) (string, error) {
	if err := g.gateColumnType(c.Type); err != nil {
		return "", err
	}
	typ, check, err := g.types.ColumnParts(c.Type, c.Name)
	if err != nil {
		return "", err
	}

	parts := []string{g.quote(c.Name), typ}
	if c.AutoIncrement {
		parts = append(parts, "GENERATED BY DEFAULT AS IDENTITY")
	}
	if c.HasDefault {
		lit, err := g.types.Literal(c.Type, c.Default)
		if err != nil {
			return "", err
		}
		parts = append(parts, "DEFAULT "+lit)
	}
	if c.NotNull || c.PrimaryKey {
		parts = append(parts, "NOT NULL")
	}
	if c.Unique && !c.PrimaryKey {
		parts = append(parts, "UNIQUE")
	}
	if check != "" {
		parts = append(parts, check)
	}
	return strings.Join(parts, " "), nil
}

// CreateTableQuery renders CREATE TABLE. Every column type is checked against
// the capability table first, so an unsupported column yields no SQL at all.
func (g *QueryGenerator) CreateTableQuery(q CreateTable) (Statement, error) {
	if len(q.Columns) == 0 {
		return Statement{}, sqlerr.Construction("create table needs at least one column", nil)
	}

	defs := make([]string, 0, len(q.Columns)+1)
	var pk []string
	for _, c := range q.Columns {
		def, err := g.ColumnDefinitionSQL(c)
		if err != nil {
			return Statement{}, err
		}
		defs = append(defs, def)
		if c.PrimaryKey {
			pk = append(pk, c.Name)
		}
	}
	if len(pk) > 0 {
		defs = append(defs, "PRIMARY KEY ("+g.quoteAll(pk)+")")
	}

	return Statement{SQL: fmt.Sprintf("CREATE TABLE %s (%s)", g.quote(q.Table), strings.Join(defs, ", "))}, nil
}

// AddColumnQuery renders ALTER TABLE ... ADD.
func (g *QueryGenerator) AddColumnQuery(table string, c ColumnDef) (Statement, error) {
	def, err := g.ColumnDefinitionSQL(c)
	if err != nil {
		return Statement{}, err
	}
	return Statement{SQL: "ALTER TABLE " + g.quote(table) + " ADD " + def}, nil
}

// DropTableQuery renders DROP TABLE. IF EXISTS is emulated with an
// EXECUTE BLOCK that checks RDB$RELATIONS first.
func (g *QueryGenerator) DropTableQuery(table string, ifExists bool) Statement {
	drop := "DROP TABLE " + g.quote(table)
	if !ifExists {
		return Statement{SQL: drop}
	}
	return Statement{SQL: g.guarded("SELECT 1 FROM RDB$RELATIONS WHERE RDB$RELATION_NAME = "+g.dialect.EscapeString(table), drop)}
}

// RemoveColumnQuery renders ALTER TABLE ... DROP.
func (g *QueryGenerator) RemoveColumnQuery(table, column string, ifExists bool) (Statement, error) {
	drop := "ALTER TABLE " + g.quote(table) + " DROP " + g.quote(column)
	if !ifExists {
		return Statement{SQL: drop}, nil
	}
	if err := g.dialect.Require(core.FeatureRemoveColumnIfExists); err != nil {
		return Statement{}, err
	}
	cond := "SELECT 1 FROM RDB$RELATION_FIELDS WHERE RDB$RELATION_NAME = " + g.dialect.EscapeString(table) +
		" AND RDB$FIELD_NAME = " + g.dialect.EscapeString(column)
	return Statement{SQL: g.guarded(cond, drop)}, nil
}

// RemoveConstraintQuery renders ALTER TABLE ... DROP CONSTRAINT.
func (g *QueryGenerator) RemoveConstraintQuery(table, name string, ifExists bool) (Statement, error) {
	drop := "ALTER TABLE " + g.quote(table) + " DROP CONSTRAINT " + g.quote(name)
	if !ifExists {
		return Statement{SQL: drop}, nil
	}
	if err := g.dialect.Require(core.FeatureConstraintDropIfExists); err != nil {
		return Statement{}, err
	}
	cond := "SELECT 1 FROM RDB$RELATION_CONSTRAINTS WHERE RDB$RELATION_NAME = " + g.dialect.EscapeString(table) +
		" AND RDB$CONSTRAINT_NAME = " + g.dialect.EscapeString(name)
	return Statement{SQL: g.guarded(cond, drop)}, nil
}

// AddIndexQuery renders CREATE [UNIQUE] [ASC|DESC] INDEX.
// Index type is the sort direction, the only variant Firebird has.
func (g *QueryGenerator) AddIndexQuery(table, name string, fields []string, unique bool, typ string) (Statement, error) {
	if len(fields) == 0 {
		return Statement{}, sqlerr.Construction("index needs at least one field", nil)
	}
	var b strings.Builder
	b.WriteString("CREATE ")
	if unique {
		b.WriteString("UNIQUE ")
	}
	if typ != "" {
		if err := g.dialect.Require(core.FeatureIndexType); err != nil {
			return Statement{}, err
		}
		switch strings.ToUpper(typ) {
		case "ASC", "ASCENDING":
			b.WriteString("ASC ")
		case "DESC", "DESCENDING":
			b.WriteString("DESC ")
		default:
			return Statement{}, sqlerr.Unsupported("firebird has no %s index type", typ)
		}
	}
	fmt.Fprintf(&b, "INDEX %s ON %s (%s)", g.quote(name), g.quote(table), g.quoteAll(fields))
	return Statement{SQL: b.String()}, nil
}

// RemoveIndexQuery renders DROP INDEX, optionally guarded by RDB$INDICES.
func (g *QueryGenerator) RemoveIndexQuery(name string, ifExists bool) Statement {
	drop := "DROP INDEX " + g.quote(name)
	if !ifExists {
		return Statement{SQL: drop}
	}
	return Statement{SQL: g.guarded("SELECT 1 FROM RDB$INDICES WHERE RDB$INDEX_NAME = "+g.dialect.EscapeString(name), drop)}
}

// guarded wraps stmt in an EXECUTE BLOCK that runs it only when cond
// returns a row.
func (g *QueryGenerator) guarded(cond, stmt string) string {
	return "EXECUTE BLOCK AS BEGIN IF (EXISTS(" + cond + ")) THEN EXECUTE STATEMENT " +
		g.dialect.EscapeString(stmt) + "; END"
}
