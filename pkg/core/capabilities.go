package core

import (
	"maps"
	"slices"
)

// Feature names one abstract SQL feature a host layer may ask a dialect about.
// Nested features use dotted keys, e.g. "inserts.updateOnDuplicate".
type Feature string

// Features a host may query. Every dialect's capability table must carry
// an explicit entry for each of them.
const (
	FeatureDefault       Feature = "DEFAULT"
	FeatureDefaultValues Feature = "DEFAULT VALUES"
	FeatureValuesEmpty   Feature = "VALUES ()"
	FeatureLimitOnUpdate Feature = "LIMIT ON UPDATE"
	FeatureOnDuplicate   Feature = "ON DUPLICATE KEY"
	FeatureOrderNulls    Feature = "ORDER NULLS"
	FeatureUnion         Feature = "UNION"
	FeatureUnionAll      Feature = "UNION ALL"
	FeatureRightJoin     Feature = "RIGHT JOIN"

	FeatureLock            Feature = "lock"
	FeatureLockOf          Feature = "lockOf"
	FeatureLockKey         Feature = "lockKey"
	FeatureForShare        Feature = "forShare"
	FeatureSkipLocked      Feature = "skipLocked"
	FeatureReturnValues    Feature = "returnValues"
	FeatureTransactions    Feature = "transactions"
	FeatureSavepoints      Feature = "savepoints"
	FeatureIsolationLevels Feature = "isolationLevels"
	FeatureIsolationInTx   Feature = "settingIsolationLevelDuringTransaction"
	FeatureTxReadOnly      Feature = "startTransaction.readOnly"
	FeatureSchemas         Feature = "schemas"
	FeatureUpserts         Feature = "upserts"
	FeatureGroupedLimit    Feature = "groupedLimit"

	FeatureInsertIgnoreDuplicates Feature = "inserts.ignoreDuplicates"
	FeatureInsertUpdateDuplicate  Feature = "inserts.updateOnDuplicate"
	FeatureInsertOnConflict       Feature = "inserts.onConflictDoNothing"

	FeatureIndexCollate      Feature = "index.collate"
	FeatureIndexLength       Feature = "index.length"
	FeatureIndexParser       Feature = "index.parser"
	FeatureIndexType         Feature = "index.type"
	FeatureIndexUsing        Feature = "index.using"
	FeatureIndexConcurrently Feature = "index.concurrently"
	FeatureIndexViaAlter     Feature = "indexViaAlter"
	FeatureIndexHints        Feature = "indexHints"

	FeatureConstraintCheck        Feature = "constraints.check"
	FeatureConstraintFKDisable    Feature = "constraints.foreignKeyChecksDisableable"
	FeatureConstraintDropIfExists Feature = "constraints.removeOptions.ifExists"
	FeatureDeferrableConstraints  Feature = "deferrableConstraints"

	FeatureTypeCollateBinary  Feature = "dataTypes.COLLATE_BINARY"
	FeatureTypeGeometry       Feature = "dataTypes.GEOMETRY"
	FeatureTypeJSON           Feature = "dataTypes.JSON"
	FeatureTypeUUID           Feature = "dataTypes.UUID"
	FeatureTypeArray          Feature = "dataTypes.ARRAY"
	FeatureTypeBooleanNative  Feature = "dataTypes.BOOLEAN.native"
	FeatureTypeIntsUnsigned   Feature = "dataTypes.INTS.unsigned"
	FeatureTypeIntsZerofill   Feature = "dataTypes.INTS.zerofill"
	FeatureTypeFloatUnsigned  Feature = "dataTypes.FLOAT.unsigned"
	FeatureTypeFloatZerofill  Feature = "dataTypes.FLOAT.zerofill"
	FeatureTypeFloatScale     Feature = "dataTypes.FLOAT.scaleAndPrecision"
	FeatureTypeRealUnsigned   Feature = "dataTypes.REAL.unsigned"
	FeatureTypeRealZerofill   Feature = "dataTypes.REAL.zerofill"
	FeatureTypeRealScale      Feature = "dataTypes.REAL.scaleAndPrecision"
	FeatureTypeDoubleUnsigned Feature = "dataTypes.DOUBLE.unsigned"
	FeatureTypeDoubleZerofill Feature = "dataTypes.DOUBLE.zerofill"
	FeatureTypeDoubleScale    Feature = "dataTypes.DOUBLE.scaleAndPrecision"
	FeatureTypeDecimalUnsign  Feature = "dataTypes.DECIMAL.unsigned"
	FeatureTypeDecimalZerofil Feature = "dataTypes.DECIMAL.zerofill"

	FeatureRegexp           Feature = "REGEXP"
	FeatureIRegexp          Feature = "IREGEXP"
	FeatureJSONOperations   Feature = "jsonOperations"
	FeatureJSONExtraction   Feature = "jsonExtraction"
	FeatureUUIDv1Generation Feature = "uuidV1Generation"
	FeatureUUIDv4Generation Feature = "uuidV4Generation"
	FeatureGlobalTimeZone   Feature = "globalTimeZoneConfig"

	FeatureTruncateCascade         Feature = "truncate.cascade"
	FeatureTruncateRestartIdentity Feature = "truncate.restartIdentity"
	FeatureDropTableCascade        Feature = "dropTable.cascade"
	FeatureRemoveColumnIfExists    Feature = "removeColumn.ifExists"
	FeatureRemoveColumnCascade     Feature = "removeColumn.cascade"
	FeatureCreateSchemaCharset     Feature = "createSchema.charset"
	FeatureCreateSchemaCollate     Feature = "createSchema.collate"
	FeatureCreateSchemaIfNotExist  Feature = "createSchema.ifNotExists"
	FeatureDropSchemaIfExists      Feature = "dropSchema.ifExists"
	FeatureDeleteLimit             Feature = "delete.limit"
)

// Features lists every feature in declaration order.
var Features = []Feature{
	FeatureDefault, FeatureDefaultValues, FeatureValuesEmpty, FeatureLimitOnUpdate,
	FeatureOnDuplicate, FeatureOrderNulls, FeatureUnion, FeatureUnionAll, FeatureRightJoin,
	FeatureLock, FeatureLockOf, FeatureLockKey, FeatureForShare, FeatureSkipLocked,
	FeatureReturnValues, FeatureTransactions, FeatureSavepoints, FeatureIsolationLevels,
	FeatureIsolationInTx, FeatureTxReadOnly, FeatureSchemas, FeatureUpserts, FeatureGroupedLimit,
	FeatureInsertIgnoreDuplicates, FeatureInsertUpdateDuplicate, FeatureInsertOnConflict,
	FeatureIndexCollate, FeatureIndexLength, FeatureIndexParser, FeatureIndexType,
	FeatureIndexUsing, FeatureIndexConcurrently, FeatureIndexViaAlter, FeatureIndexHints,
	FeatureConstraintCheck, FeatureConstraintFKDisable, FeatureConstraintDropIfExists,
	FeatureDeferrableConstraints,
	FeatureTypeCollateBinary, FeatureTypeGeometry, FeatureTypeJSON, FeatureTypeUUID,
	FeatureTypeArray, FeatureTypeBooleanNative,
	FeatureTypeIntsUnsigned, FeatureTypeIntsZerofill,
	FeatureTypeFloatUnsigned, FeatureTypeFloatZerofill, FeatureTypeFloatScale,
	FeatureTypeRealUnsigned, FeatureTypeRealZerofill, FeatureTypeRealScale,
	FeatureTypeDoubleUnsigned, FeatureTypeDoubleZerofill, FeatureTypeDoubleScale,
	FeatureTypeDecimalUnsign, FeatureTypeDecimalZerofil,
	FeatureRegexp, FeatureIRegexp, FeatureJSONOperations, FeatureJSONExtraction,
	FeatureUUIDv1Generation, FeatureUUIDv4Generation, FeatureGlobalTimeZone,
	FeatureTruncateCascade, FeatureTruncateRestartIdentity, FeatureDropTableCascade,
	FeatureRemoveColumnIfExists, FeatureRemoveColumnCascade,
	FeatureCreateSchemaCharset, FeatureCreateSchemaCollate, FeatureCreateSchemaIfNotExist,
	FeatureDropSchemaIfExists, FeatureDeleteLimit,
}

// Support describes how a dialect supports one feature. Value carries the
// keyword or variant for features that are not plain booleans
// (e.g. "MERGE INTO" for inserts.updateOnDuplicate).
type Support struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Value   string `json:"value,omitempty" yaml:"value,omitempty"`
}

// Yes marks a feature as supported.
func Yes() Support { return Support{Enabled: true} }

// No marks a feature as unsupported.
func No() Support { return Support{} }

// Keyword marks a feature as supported through the given keyword.
func Keyword(v string) Support { return Support{Enabled: true, Value: v} }

// Capabilities is an immutable feature table. The zero value supports nothing.
type Capabilities struct {
	entries map[Feature]Support
}

// NewCapabilities copies entries into a new table.
func NewCapabilities(entries map[Feature]Support) Capabilities {
	return Capabilities{entries: maps.Clone(entries)}
}

// BaseCapabilities returns the generic defaults. Dialects copy them
// explicitly and override what differs, so that each table is complete.
func BaseCapabilities() Capabilities {
	return NewCapabilities(map[Feature]Support{
		FeatureDefault:       Yes(),
		FeatureDefaultValues: No(),
		FeatureValuesEmpty:   No(),
		FeatureLimitOnUpdate: No(),
		FeatureOnDuplicate:   Yes(),
		FeatureOrderNulls:    No(),
		FeatureUnion:         Yes(),
		FeatureUnionAll:      Yes(),
		FeatureRightJoin:     Yes(),

		FeatureLock:            No(),
		FeatureLockOf:          No(),
		FeatureLockKey:         No(),
		FeatureForShare:        No(),
		FeatureSkipLocked:      No(),
		FeatureReturnValues:    No(),
		FeatureTransactions:    Yes(),
		FeatureSavepoints:      Yes(),
		FeatureIsolationLevels: Yes(),
		FeatureIsolationInTx:   No(),
		FeatureTxReadOnly:      No(),
		FeatureSchemas:         No(),
		FeatureUpserts:         Yes(),
		FeatureGroupedLimit:    Yes(),

		FeatureInsertIgnoreDuplicates: No(),
		FeatureInsertUpdateDuplicate:  No(),
		FeatureInsertOnConflict:       No(),

		FeatureIndexCollate:      Yes(),
		FeatureIndexLength:       No(),
		FeatureIndexParser:       No(),
		FeatureIndexType:         No(),
		FeatureIndexUsing:        Yes(),
		FeatureIndexConcurrently: No(),
		FeatureIndexViaAlter:     No(),
		FeatureIndexHints:        No(),

		FeatureConstraintCheck:        Yes(),
		FeatureConstraintFKDisable:    No(),
		FeatureConstraintDropIfExists: No(),
		FeatureDeferrableConstraints:  No(),

		FeatureTypeCollateBinary:  No(),
		FeatureTypeGeometry:       No(),
		FeatureTypeJSON:           No(),
		FeatureTypeUUID:           No(),
		FeatureTypeArray:          No(),
		FeatureTypeBooleanNative:  Yes(),
		FeatureTypeIntsUnsigned:   No(),
		FeatureTypeIntsZerofill:   No(),
		FeatureTypeFloatUnsigned:  No(),
		FeatureTypeFloatZerofill:  No(),
		FeatureTypeFloatScale:     No(),
		FeatureTypeRealUnsigned:   No(),
		FeatureTypeRealZerofill:   No(),
		FeatureTypeRealScale:      No(),
		FeatureTypeDoubleUnsigned: No(),
		FeatureTypeDoubleZerofill: No(),
		FeatureTypeDoubleScale:    No(),
		FeatureTypeDecimalUnsign:  No(),
		FeatureTypeDecimalZerofil: No(),

		FeatureRegexp:           No(),
		FeatureIRegexp:          No(),
		FeatureJSONOperations:   No(),
		FeatureJSONExtraction:   No(),
		FeatureUUIDv1Generation: No(),
		FeatureUUIDv4Generation: No(),
		FeatureGlobalTimeZone:   No(),

		FeatureTruncateCascade:         No(),
		FeatureTruncateRestartIdentity: No(),
		FeatureDropTableCascade:        No(),
		FeatureRemoveColumnIfExists:    No(),
		FeatureRemoveColumnCascade:     No(),
		FeatureCreateSchemaCharset:     No(),
		FeatureCreateSchemaCollate:     No(),
		FeatureCreateSchemaIfNotExist:  No(),
		FeatureDropSchemaIfExists:      No(),
		FeatureDeleteLimit:             No(),
	})
}

// With returns a new table with overrides applied. The receiver is unchanged.
func (c Capabilities) With(overrides map[Feature]Support) Capabilities {
	next := maps.Clone(c.entries)
	if next == nil {
		next = make(map[Feature]Support, len(overrides))
	}
	maps.Copy(next, overrides)
	return Capabilities{entries: next}
}

// Lookup returns the entry for f and whether the table declares it.
func (c Capabilities) Lookup(f Feature) (Support, bool) {
	s, ok := c.entries[f]
	return s, ok
}

// Supports reports whether f is declared and enabled.
// Undeclared features are never supported.
func (c Capabilities) Supports(f Feature) bool {
	return c.entries[f].Enabled
}

// Value returns the keyword for f, or "" when unsupported.
func (c Capabilities) Value(f Feature) string {
	s := c.entries[f]
	if !s.Enabled {
		return ""
	}
	return s.Value
}

// Missing returns the known features that have no entry.
func (c Capabilities) Missing() []Feature {
	var missing []Feature
	for _, f := range Features {
		if _, ok := c.entries[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// Features returns the declared features sorted by name.
func (c Capabilities) Features() []Feature {
	return slices.Sorted(maps.Keys(c.entries))
}

// Len returns the number of declared features.
func (c Capabilities) Len() int {
	return len(c.entries)
}
