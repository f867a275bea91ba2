// Package dialect provides the Firebird SQL dialect definition and its query
// generator. This package has no database driver dependencies, so tools that
// only need SQL text or the capability table can use it without connecting.
package dialect

import (
	"github.com/leapstack-labs/fbdialect/pkg/core"
	"github.com/leapstack-labs/fbdialect/pkg/dialect"
)

func init() {
	dialect.Register(Firebird)
}

// Name is the dialect identifier.
const Name = "firebird"

// OptionShowWarnings is the dialect-level option controlling whether
// statement warnings are surfaced to the caller.
const OptionShowWarnings = "showWarnings"

// Capabilities is the Firebird feature table: the generic defaults copied in
// full, then overridden where Firebird differs.
var Capabilities = core.BaseCapabilities().With(map[core.Feature]core.Support{
	core.FeatureDefaultValues: core.Yes(),
	core.FeatureValuesEmpty:   core.Yes(),
	core.FeatureLimitOnUpdate: core.No(),
	core.FeatureOnDuplicate:   core.No(),
	core.FeatureOrderNulls:    core.Yes(),

	core.FeatureLock:          core.Yes(),
	core.FeatureForShare:      core.Keyword("WITH LOCK"),
	core.FeatureReturnValues:  core.Keyword("returning"),
	core.FeatureIsolationInTx: core.Yes(),
	core.FeatureTxReadOnly:    core.Yes(),
	core.FeatureSchemas:       core.No(),

	core.FeatureInsertIgnoreDuplicates: core.No(),
	core.FeatureInsertUpdateDuplicate:  core.Keyword("MERGE INTO"),

	core.FeatureIndexCollate:  core.No(),
	core.FeatureIndexLength:   core.No(),
	core.FeatureIndexParser:   core.No(),
	core.FeatureIndexType:     core.Yes(),
	core.FeatureIndexUsing:    core.Yes(),
	core.FeatureIndexViaAlter: core.Yes(),
	core.FeatureIndexHints:    core.No(),

	core.FeatureConstraintFKDisable:    core.Yes(),
	core.FeatureConstraintDropIfExists: core.Yes(),

	core.FeatureTypeCollateBinary:  core.Yes(),
	core.FeatureTypeGeometry:       core.No(),
	core.FeatureTypeJSON:           core.No(),
	core.FeatureTypeUUID:           core.No(),
	core.FeatureTypeBooleanNative:  core.No(),
	core.FeatureTypeIntsUnsigned:   core.No(),
	core.FeatureTypeIntsZerofill:   core.No(),
	core.FeatureTypeFloatUnsigned:  core.No(),
	core.FeatureTypeFloatZerofill:  core.No(),
	core.FeatureTypeFloatScale:     core.Yes(),
	core.FeatureTypeRealUnsigned:   core.No(),
	core.FeatureTypeRealZerofill:   core.No(),
	core.FeatureTypeRealScale:      core.Yes(),
	core.FeatureTypeDoubleUnsigned: core.No(),
	core.FeatureTypeDoubleZerofill: core.No(),
	core.FeatureTypeDoubleScale:    core.Yes(),
	core.FeatureTypeDecimalUnsign:  core.No(),
	core.FeatureTypeDecimalZerofil: core.No(),

	core.FeatureRegexp:           core.No(),
	core.FeatureJSONOperations:   core.No(),
	core.FeatureJSONExtraction:   core.No(),
	core.FeatureUUIDv1Generation: core.No(),
	core.FeatureGlobalTimeZone:   core.Yes(),

	core.FeatureTruncateCascade:         core.No(),
	core.FeatureTruncateRestartIdentity: core.No(),
	core.FeatureRemoveColumnIfExists:    core.Yes(),
	core.FeatureCreateSchemaCharset:     core.Yes(),
	core.FeatureCreateSchemaCollate:     core.No(),
	core.FeatureCreateSchemaIfNotExist:  core.Yes(),
	core.FeatureDropSchemaIfExists:      core.Yes(),
})

// Firebird is the Firebird dialect configuration.
var Firebird = dialect.NewDialect(Name).
	Identifiers(`"`, `"`, `""`, core.NormUppercase).
	PlaceholderStyle(core.PlaceholderQuestion).
	BackslashEscapes(false).
	MinimumVersion("3.0").
	Documentation("https://firebirdsql.org/file/documentation/chunk/en/refdocs/fblangref40/").
	Capabilities(Capabilities).
	Options(OptionShowWarnings).
	WithReservedWords(
		"ADD", "ALL", "ALTER", "AND", "ANY", "AS", "AT", "AVG", "BEGIN", "BETWEEN",
		"BIGINT", "BLOB", "BOOLEAN", "BOTH", "BY", "CASE", "CAST", "CHAR", "CHARACTER",
		"CHECK", "CLOSE", "COLLATE", "COLUMN", "COMMIT", "CONNECT", "CONSTRAINT", "COUNT",
		"CREATE", "CROSS", "CURRENT", "CURSOR", "DATE", "DAY", "DECIMAL", "DECLARE",
		"DEFAULT", "DELETE", "DISTINCT", "DOUBLE", "DROP", "ELSE", "END", "ESCAPE",
		"EXECUTE", "EXISTS", "EXTERNAL", "EXTRACT", "FALSE", "FETCH", "FILTER", "FLOAT",
		"FOR", "FOREIGN", "FROM", "FULL", "FUNCTION", "GLOBAL", "GRANT", "GROUP",
		"HAVING", "HOUR", "IN", "INDEX", "INNER", "INSERT", "INT", "INTEGER", "INTO",
		"IS", "JOIN", "LEADING", "LEFT", "LIKE", "MAX", "MERGE", "MIN", "MINUTE",
		"MONTH", "NATURAL", "NOT", "NULL", "NUMERIC", "OF", "ON", "OR", "ORDER",
		"OUTER", "POSITION", "PRIMARY", "PROCEDURE", "REFERENCES", "RETURNING",
		"REVOKE", "RIGHT", "ROLLBACK", "ROW", "ROWS", "SECOND", "SELECT", "SET",
		"SMALLINT", "SOME", "SUM", "TABLE", "THEN", "TIME", "TIMESTAMP", "TO",
		"TRAILING", "TRIGGER", "TRUE", "UNION", "UNIQUE", "UNKNOWN", "UPDATE", "USER",
		"USING", "VALUE", "VALUES", "VARCHAR", "VARIABLE", "VARYING", "VIEW", "WHEN",
		"WHERE", "WHILE", "WITH", "YEAR",
	).
	MustBuild()
