package fbtypes

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/fbdialect/pkg/sqlerr"
)

const (
	defaultStringLength = 255
	maxVarcharLength    = 32765
	uuidLength          = 36
)

// ColumnSQL renders the type part of a column definition. For ENUM, and for
// BOOLEAN stored as SMALLINT, the membership check refers to column, or to
// VALUE when column is empty (domain definitions).
func (m *Marshaller) ColumnSQL(ct ColumnType, column string) (string, error) {
	typ, check, err := m.ColumnParts(ct, column)
	if err != nil {
		return "", err
	}
	if check != "" {
		return typ + " " + check, nil
	}
	return typ, nil
}

// ColumnParts is ColumnSQL split into the data type and an optional CHECK
// constraint, so callers can place DEFAULT and NOT NULL in between.
func (m *Marshaller) ColumnParts(ct ColumnType, column string) (typ, check string, err error) {
	if ct.Unsigned {
		return "", "", sqlerr.Unsupported("firebird has no UNSIGNED %s", ct.Logical)
	}
	if ct.ZeroFill {
		return "", "", sqlerr.Unsupported("firebird has no ZEROFILL %s", ct.Logical)
	}
	switch {
	case ct.Logical == TypeEnum:
		return m.enumParts(ct, column)
	case ct.Logical == TypeBoolean && !m.opts.NativeBoolean:
		// Booleans bind as 1/0, which a native BOOLEAN column rejects.
		return "SMALLINT", fmt.Sprintf("CHECK (%s IN (0, 1))", m.checkSubject(column)), nil
	}
	typ, err = m.typeSQL(ct)
	return typ, "", err
}

func (m *Marshaller) typeSQL(ct ColumnType) (string, error) {
	switch ct.Logical {
	case TypeString:
		n := lengthOr(ct.Length, defaultStringLength)
		if n > maxVarcharLength {
			return "", sqlerr.Construction(fmt.Sprintf("VARCHAR(%d) exceeds %d", n, maxVarcharLength), nil)
		}
		if ct.Binary {
			return "VARCHAR(" + strconv.Itoa(n) + ") CHARACTER SET OCTETS", nil
		}
		return "VARCHAR(" + strconv.Itoa(n) + ")", nil
	case TypeChar:
		n := lengthOr(ct.Length, defaultStringLength)
		if ct.Binary {
			return "CHAR(" + strconv.Itoa(n) + ") CHARACTER SET OCTETS", nil
		}
		return "CHAR(" + strconv.Itoa(n) + ")", nil
	case TypeText:
		return "BLOB SUB_TYPE TEXT", nil
	case TypeSmallint:
		return "SMALLINT", nil
	case TypeInteger:
		return "INTEGER", nil
	case TypeBigint:
		return "BIGINT", nil
	case TypeFloat, TypeReal:
		return "FLOAT", nil
	case TypeDouble:
		return "DOUBLE PRECISION", nil
	case TypeDecimal:
		if ct.Precision > 0 {
			return fmt.Sprintf("DECIMAL(%d,%d)", ct.Precision, ct.Scale), nil
		}
		return "DECIMAL", nil
	case TypeBoolean:
		return "BOOLEAN", nil
	case TypeDate:
		return "TIMESTAMP", nil
	case TypeDateOnly:
		return "DATE", nil
	case TypeTime:
		return "TIME", nil
	case TypeUUID:
		return "CHAR(" + strconv.Itoa(uuidLength) + ")", nil
	case TypeBlob:
		return "BLOB SUB_TYPE BINARY", nil
	case TypeJSON, TypeGeometry:
		return "", sqlerr.Unsupported("firebird has no %s columns", ct.Logical)
	default:
		return "", sqlerr.Construction(fmt.Sprintf("unknown logical type %q", ct.Logical), nil)
	}
}

func (m *Marshaller) enumParts(ct ColumnType, column string) (string, string, error) {
	if len(ct.Values) == 0 {
		return "", "", sqlerr.Construction("ENUM needs at least one value", nil)
	}
	values := make([]string, len(ct.Values))
	for i, v := range ct.Values {
		values[i] = m.quoter.EscapeString(v)
	}
	typ := "VARCHAR(" + strconv.Itoa(defaultStringLength) + ")"
	return typ, fmt.Sprintf("CHECK (%s IN (%s))", m.checkSubject(column), strings.Join(values, ", ")), nil
}

// checkSubject is what a CHECK constraint tests: the quoted column, or VALUE
// in a domain definition.
func (m *Marshaller) checkSubject(column string) string {
	if column == "" {
		return "VALUE"
	}
	return m.quoter.QuoteIdentifier(column)
}

// Literal renders v as an inline SQL literal for a column of type ct.
func (m *Marshaller) Literal(ct ColumnType, v any) (string, error) {
	bound, err := m.ToBindableValue(ct, v)
	if err != nil {
		return "", err
	}

	switch x := bound.(type) {
	case nil:
		return "NULL", nil
	case bool:
		if x {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case []byte:
		return "X'" + strings.ToUpper(hex.EncodeToString(x)) + "'", nil
	case string:
		if ct.Logical == TypeDecimal {
			return x, nil
		}
		return m.quoter.EscapeString(x), nil
	default:
		return "", sqlerr.Construction(fmt.Sprintf("cannot render %T as a literal", bound), nil)
	}
}

func lengthOr(n, def int) int {
	if n > 0 {
		return n
	}
	return def
}
