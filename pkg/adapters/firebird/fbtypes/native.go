package fbtypes

import "strings"

// NativeType is an engine column type as reported by the driver or the
// system catalog.
type NativeType string

// Native types the read path distinguishes.
const (
	NativeUnknown     NativeType = ""
	NativeSmallint    NativeType = "SMALLINT"
	NativeInteger     NativeType = "INTEGER"
	NativeBigint      NativeType = "BIGINT"
	NativeInt128      NativeType = "INT128"
	NativeFloat       NativeType = "FLOAT"
	NativeDouble      NativeType = "DOUBLE PRECISION"
	NativeNumeric     NativeType = "NUMERIC"
	NativeDecfloat    NativeType = "DECFLOAT"
	NativeDate        NativeType = "DATE"
	NativeTime        NativeType = "TIME"
	NativeTimestamp   NativeType = "TIMESTAMP"
	NativeTimeTZ      NativeType = "TIME WITH TIME ZONE"
	NativeTimestampTZ NativeType = "TIMESTAMP WITH TIME ZONE"
	NativeChar        NativeType = "CHAR"
	NativeVarchar     NativeType = "VARCHAR"
	NativeBlob        NativeType = "BLOB"
	NativeBoolean     NativeType = "BOOLEAN"
)

// nativeNames maps driver type names (firebirdsql reports XSQLVAR names
// such as LONG and VARYING) and SQL spellings onto native types.
var nativeNames = map[string]NativeType{
	"SHORT":                    NativeSmallint,
	"SMALLINT":                 NativeSmallint,
	"LONG":                     NativeInteger,
	"INTEGER":                  NativeInteger,
	"INT":                      NativeInteger,
	"INT64":                    NativeBigint,
	"BIGINT":                   NativeBigint,
	"INT128":                   NativeInt128,
	"FLOAT":                    NativeFloat,
	"DOUBLE":                   NativeDouble,
	"D_FLOAT":                  NativeDouble,
	"DOUBLE PRECISION":         NativeDouble,
	"NUMERIC":                  NativeNumeric,
	"DECIMAL":                  NativeNumeric,
	"DEC16":                    NativeDecfloat,
	"DEC34":                    NativeDecfloat,
	"DECFLOAT":                 NativeDecfloat,
	"DATE":                     NativeDate,
	"TYPE_DATE":                NativeDate,
	"TIME":                     NativeTime,
	"TYPE_TIME":                NativeTime,
	"TIMESTAMP":                NativeTimestamp,
	"TIME WITH TIMEZONE":       NativeTimeTZ,
	"TIME WITH TIME ZONE":      NativeTimeTZ,
	"TIME_TZ":                  NativeTimeTZ,
	"TIMESTAMP WITH TIMEZONE":  NativeTimestampTZ,
	"TIMESTAMP WITH TIME ZONE": NativeTimestampTZ,
	"TIMESTAMP_TZ":             NativeTimestampTZ,
	"TEXT":                     NativeChar,
	"CHAR":                     NativeChar,
	"VARYING":                  NativeVarchar,
	"VARCHAR":                  NativeVarchar,
	"BLOB":                     NativeBlob,
	"BOOLEAN":                  NativeBoolean,
}

// NativeFromName resolves a driver or SQL type name. Unknown names yield
// NativeUnknown and their values pass through unchanged.
func NativeFromName(name string) NativeType {
	return nativeNames[strings.ToUpper(strings.TrimSpace(name))]
}

// nativeCodes maps RDB$FIELDS.RDB$FIELD_TYPE values.
var nativeCodes = map[int]NativeType{
	7:   NativeSmallint,
	8:   NativeInteger,
	10:  NativeFloat,
	12:  NativeDate,
	13:  NativeTime,
	14:  NativeChar,
	16:  NativeBigint,
	23:  NativeBoolean,
	24:  NativeDecfloat,
	25:  NativeDecfloat,
	26:  NativeInt128,
	27:  NativeDouble,
	28:  NativeTimeTZ,
	29:  NativeTimestampTZ,
	35:  NativeTimestamp,
	37:  NativeVarchar,
	261: NativeBlob,
}

// NativeFromCode resolves a system catalog field type code.
func NativeFromCode(code int) NativeType {
	return nativeCodes[code]
}

// FieldTypeName renders a catalog field description as SQL, e.g.
// VARCHAR(40) or NUMERIC(18,2). Scale is the catalog's negative scale.
func FieldTypeName(code, subType, length, precision, scale int) string {
	native := NativeFromCode(code)
	switch native {
	case NativeChar, NativeVarchar:
		if length > 0 {
			return string(native) + "(" + itoa(length) + ")"
		}
	case NativeSmallint, NativeInteger, NativeBigint, NativeInt128:
		if scale < 0 || subType == 1 || subType == 2 {
			name := "NUMERIC"
			if subType == 2 {
				name = "DECIMAL"
			}
			return name + "(" + itoa(precision) + "," + itoa(-scale) + ")"
		}
	case NativeBlob:
		if subType == 1 {
			return "BLOB SUB_TYPE TEXT"
		}
		return "BLOB SUB_TYPE BINARY"
	case NativeUnknown:
		return "UNKNOWN(" + itoa(code) + ")"
	}
	return string(native)
}
