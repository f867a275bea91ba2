package fbtypes

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/leapstack-labs/fbdialect/pkg/sqlerr"
)

const (
	bindTimestampLayout = "2006-01-02 15:04:05"
	bindDateLayout      = "2006-01-02"
	bindTimeLayout      = "15:04:05"
	fractionLayout      = ".000"
)

var writers = map[LogicalType]writer{
	TypeString:   writeString,
	TypeChar:     writeString,
	TypeText:     writeString,
	TypeSmallint: writeInteger,
	TypeInteger:  writeInteger,
	TypeBigint:   writeInteger,
	TypeFloat:    writeFloat,
	TypeReal:     writeFloat,
	TypeDouble:   writeFloat,
	TypeDecimal:  writeDecimal,
	TypeBoolean:  writeBoolean,
	TypeDate:     writeTimestamp,
	TypeDateOnly: writeDateOnly,
	TypeTime:     writeTime,
	TypeUUID:     writeUUID,
	TypeEnum:     writeEnum,
	TypeBlob:     writeBlob,
	TypeJSON:     writeUnsupported,
	TypeGeometry: writeUnsupported,
}

// ToBindableValue converts v into a value the driver accepts for a column of
// type ct. A nil value binds as NULL. Failures are ConstructionError, or
// UnsupportedOperation for types the engine cannot store.
func (m *Marshaller) ToBindableValue(ct ColumnType, v any) (any, error) {
	write, ok := m.writers[ct.Logical]
	if !ok {
		return nil, sqlerr.Construction(fmt.Sprintf("unknown logical type %q", ct.Logical), nil)
	}
	if ct.Logical == TypeGeometry || ct.Logical == TypeJSON {
		return write(m, ct, v)
	}
	if v == nil {
		return nil, nil
	}
	return write(m, ct, v)
}

// BindValue converts a parameter. BoundValue parameters use their declared
// type; anything else is bound by its Go type.
func (m *Marshaller) BindValue(param any) (any, error) {
	if bv, ok := param.(BoundValue); ok {
		return m.ToBindableValue(bv.Type, bv.Value)
	}
	if param == nil {
		return nil, nil
	}
	return m.ToBindableValue(Infer(param), param)
}

// BindAll converts every parameter of a statement.
func (m *Marshaller) BindAll(params []any) ([]any, error) {
	out := make([]any, len(params))
	for i, p := range params {
		v, err := m.BindValue(p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func writeUnsupported(_ *Marshaller, ct ColumnType, _ any) (any, error) {
	return nil, sqlerr.Unsupported("firebird has no %s storage", ct.Logical)
}

func writeBoolean(m *Marshaller, _ ColumnType, v any) (any, error) {
	var b bool
	switch x := v.(type) {
	case bool:
		b = x
	case string:
		parsed, err := strconv.ParseBool(x)
		if err != nil {
			return nil, sqlerr.Construction("invalid boolean", err)
		}
		b = parsed
	default:
		rv := reflect.ValueOf(v)
		switch {
		case rv.CanInt():
			b = rv.Int() != 0
		case rv.CanUint():
			b = rv.Uint() != 0
		default:
			return nil, sqlerr.Construction(fmt.Sprintf("cannot bind %T as BOOLEAN", v), nil)
		}
	}

	if m.opts.NativeBoolean {
		return b, nil
	}
	if b {
		return 1, nil
	}
	return 0, nil
}

// writeTimestamp shifts the instant into the configured zone and formats the
// wall clock. The fraction is written when the column declares a precision.
func writeTimestamp(m *Marshaller, ct ColumnType, v any) (any, error) {
	t, err := m.instant(v)
	if err != nil {
		return nil, err
	}
	layout := bindTimestampLayout
	if ct.Precision > 0 {
		layout += fractionLayout
	}
	return t.Format(layout), nil
}

func writeDateOnly(m *Marshaller, _ ColumnType, v any) (any, error) {
	if s, ok := v.(string); ok {
		if _, err := time.Parse(bindDateLayout, s); err == nil {
			return s, nil
		}
	}
	t, err := m.instant(v)
	if err != nil {
		return nil, err
	}
	return t.Format(bindDateLayout), nil
}

func writeTime(m *Marshaller, ct ColumnType, v any) (any, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	t, err := m.instant(v)
	if err != nil {
		return nil, err
	}
	layout := bindTimeLayout
	if ct.Precision > 0 {
		layout += fractionLayout
	}
	return t.Format(layout), nil
}

// instant resolves v to a time in the configured zone. Zone-less text is
// read as wall clock in that zone.
func (m *Marshaller) instant(v any) (time.Time, error) {
	if m.zoneErr != nil {
		return time.Time{}, sqlerr.Construction("cannot apply time zone", m.zoneErr)
	}
	loc := m.loc
	if loc == nil {
		loc = time.UTC
	}

	switch x := v.(type) {
	case time.Time:
		return x.In(loc), nil
	case *time.Time:
		if x == nil {
			return time.Time{}, sqlerr.Construction("nil time", nil)
		}
		return x.In(loc), nil
	case string:
		if t, err := time.Parse(time.RFC3339Nano, x); err == nil {
			return t.In(loc), nil
		}
		t, err := parseNaive(x, loc)
		if err != nil {
			return time.Time{}, sqlerr.Construction(fmt.Sprintf("invalid timestamp %q", x), err)
		}
		return t, nil
	default:
		return time.Time{}, sqlerr.Construction(fmt.Sprintf("cannot bind %T as a timestamp", v), nil)
	}
}

func writeUUID(_ *Marshaller, _ ColumnType, v any) (any, error) {
	switch x := v.(type) {
	case uuid.UUID:
		return x.String(), nil
	case [16]byte:
		return uuid.UUID(x).String(), nil
	case string:
		id, err := uuid.Parse(x)
		if err != nil {
			return nil, sqlerr.Construction(fmt.Sprintf("invalid UUID %q", x), err)
		}
		return id.String(), nil
	case fmt.Stringer:
		return writeUUID(nil, ColumnType{}, x.String())
	default:
		return nil, sqlerr.Construction(fmt.Sprintf("cannot bind %T as UUID", v), nil)
	}
}

func writeEnum(_ *Marshaller, ct ColumnType, v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		if st, isStringer := v.(fmt.Stringer); isStringer {
			s = st.String()
		} else {
			return nil, sqlerr.Construction(fmt.Sprintf("cannot bind %T as ENUM", v), nil)
		}
	}
	if len(ct.Values) > 0 && !slices.Contains(ct.Values, s) {
		return nil, sqlerr.Construction(fmt.Sprintf("value %q is not one of %s", s, strings.Join(ct.Values, ", ")), nil)
	}
	return s, nil
}

func writeString(_ *Marshaller, ct ColumnType, v any) (any, error) {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case []byte:
		if ct.Binary {
			return x, nil
		}
		s = string(x)
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(v)
	}
	if ct.Length > 0 && ct.Logical != TypeText && len([]rune(s)) > ct.Length {
		return nil, sqlerr.Construction(fmt.Sprintf("value exceeds %s(%d)", ct.Logical, ct.Length), nil)
	}
	return s, nil
}

func writeInteger(_ *Marshaller, ct ColumnType, v any) (any, error) {
	var n int64
	switch x := v.(type) {
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return nil, sqlerr.Construction(fmt.Sprintf("invalid %s %q", ct.Logical, x), err)
		}
		n = parsed
	case decimal.Decimal:
		if !x.IsInteger() {
			return nil, sqlerr.Construction(fmt.Sprintf("%s is not an integer", x), nil)
		}
		if x.LessThan(minInt64) || x.GreaterThan(maxInt64) {
			return nil, sqlerr.Construction(fmt.Sprintf("%s overflows %s", x, ct.Logical), nil)
		}
		n = x.IntPart()
	default:
		rv := reflect.ValueOf(v)
		switch {
		case rv.CanInt():
			n = rv.Int()
		case rv.CanUint():
			u := rv.Uint()
			if u > math.MaxInt64 {
				return nil, sqlerr.Construction(fmt.Sprintf("%d overflows %s", u, ct.Logical), nil)
			}
			n = int64(u)
		case rv.CanFloat():
			f := rv.Float()
			if math.IsNaN(f) || f != math.Trunc(f) {
				return nil, sqlerr.Construction(fmt.Sprintf("%v is not an integer", f), nil)
			}
			// 2^63 is exact as a float64; MaxInt64 is not.
			if f < math.MinInt64 || f >= -math.MinInt64 {
				return nil, sqlerr.Construction(fmt.Sprintf("%v overflows %s", f, ct.Logical), nil)
			}
			n = int64(f)
		default:
			return nil, sqlerr.Construction(fmt.Sprintf("cannot bind %T as %s", v, ct.Logical), nil)
		}
	}

	switch ct.Logical {
	case TypeSmallint:
		if n < math.MinInt16 || n > math.MaxInt16 {
			return nil, sqlerr.Construction(fmt.Sprintf("%d overflows SMALLINT", n), nil)
		}
	case TypeInteger:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, sqlerr.Construction(fmt.Sprintf("%d overflows INTEGER", n), nil)
		}
	}
	return n, nil
}

var (
	minInt64 = decimal.NewFromInt(math.MinInt64)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

// writeFloat rejects NaN and infinities, which have no SQL literal and no
// Firebird storage.
func writeFloat(_ *Marshaller, ct ColumnType, v any) (any, error) {
	switch x := v.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, sqlerr.Construction(fmt.Sprintf("invalid %s %q", ct.Logical, x), err)
		}
		return finite(ct, f)
	case decimal.Decimal:
		return x.InexactFloat64(), nil
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanFloat():
		return finite(ct, rv.Float())
	case rv.CanInt():
		return float64(rv.Int()), nil
	case rv.CanUint():
		return float64(rv.Uint()), nil
	default:
		return nil, sqlerr.Construction(fmt.Sprintf("cannot bind %T as %s", v, ct.Logical), nil)
	}
}

func finite(ct ColumnType, f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, sqlerr.Construction(fmt.Sprintf("%v is not a finite %s", f, ct.Logical), nil)
	}
	return f, nil
}

// writeDecimal binds exact text; the engine converts it to the column's scale.
func writeDecimal(_ *Marshaller, ct ColumnType, v any) (any, error) {
	var d decimal.Decimal
	switch x := v.(type) {
	case decimal.Decimal:
		d = x
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return nil, sqlerr.Construction(fmt.Sprintf("invalid DECIMAL %q", x), err)
		}
		d = parsed
	case float64:
		if _, err := finite(ct, x); err != nil {
			return nil, err
		}
		d = decimal.NewFromFloat(x)
	case float32:
		if _, err := finite(ct, float64(x)); err != nil {
			return nil, err
		}
		d = decimal.NewFromFloat32(x)
	default:
		rv := reflect.ValueOf(v)
		switch {
		case rv.CanInt():
			d = decimal.NewFromInt(rv.Int())
		case rv.CanUint() && rv.Uint() <= math.MaxInt64:
			d = decimal.NewFromInt(int64(rv.Uint()))
		default:
			return nil, sqlerr.Construction(fmt.Sprintf("cannot bind %T as DECIMAL", v), nil)
		}
	}
	if ct.Precision > 0 {
		d = d.Round(int32(ct.Scale))
	}
	return d.String(), nil
}

func writeBlob(m *Marshaller, _ ColumnType, v any) (any, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		if m.opts.BlobAsText {
			return x, nil
		}
		return []byte(x), nil
	default:
		return nil, sqlerr.Construction(fmt.Sprintf("cannot bind %T as BLOB", v), nil)
	}
}
