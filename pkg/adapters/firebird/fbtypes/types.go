package fbtypes

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LogicalType is the host-side type a column is declared with.
type LogicalType string

// Logical types understood by the write path.
const (
	TypeString   LogicalType = "STRING"
	TypeChar     LogicalType = "CHAR"
	TypeText     LogicalType = "TEXT"
	TypeSmallint LogicalType = "SMALLINT"
	TypeInteger  LogicalType = "INTEGER"
	TypeBigint   LogicalType = "BIGINT"
	TypeFloat    LogicalType = "FLOAT"
	TypeReal     LogicalType = "REAL"
	TypeDouble   LogicalType = "DOUBLE"
	TypeDecimal  LogicalType = "DECIMAL"
	TypeBoolean  LogicalType = "BOOLEAN"
	TypeDate     LogicalType = "DATE"
	TypeDateOnly LogicalType = "DATEONLY"
	TypeTime     LogicalType = "TIME"
	TypeUUID     LogicalType = "UUID"
	TypeEnum     LogicalType = "ENUM"
	TypeBlob     LogicalType = "BLOB"
	TypeJSON     LogicalType = "JSON"
	TypeGeometry LogicalType = "GEOMETRY"
)

// ColumnType is a logical type plus its declared properties.
// Precision on DATE and TIME is the fractional-seconds precision.
type ColumnType struct {
	Logical   LogicalType
	Length    int
	Precision int
	Scale     int
	Values    []string
	Unsigned  bool
	ZeroFill  bool
	Binary    bool
}

// BoundValue pairs a host value with the type it must be rendered as.
type BoundValue struct {
	Type  ColumnType
	Value any
}

// Bind annotates v with a column type.
func Bind(ct ColumnType, v any) BoundValue {
	return BoundValue{Type: ct, Value: v}
}

// Infer picks a column type for an unannotated host value.
func Infer(v any) ColumnType {
	switch v.(type) {
	case bool:
		return ColumnType{Logical: TypeBoolean}
	case time.Time:
		return ColumnType{Logical: TypeDate, Precision: 3}
	case uuid.UUID:
		return ColumnType{Logical: TypeUUID}
	case []byte:
		return ColumnType{Logical: TypeBlob}
	case decimal.Decimal:
		return ColumnType{Logical: TypeDecimal}
	case int8, int16, int32, uint8, uint16:
		return ColumnType{Logical: TypeInteger}
	case int, int64, uint, uint32, uint64:
		return ColumnType{Logical: TypeBigint}
	case float32, float64:
		return ColumnType{Logical: TypeDouble}
	default:
		return ColumnType{Logical: TypeString}
	}
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
