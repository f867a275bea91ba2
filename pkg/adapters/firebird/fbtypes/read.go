package fbtypes

import (
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	rawTimestampLayout = "2006-01-02 15:04:05.0000"
	rawDateLayout      = "2006-01-02"
	rawTimeLayout      = "15:04:05.0000"
	isoLayout          = "2006-01-02T15:04:05.000Z07:00"
)

// naiveLayouts parse zone-less timestamp text. Fractional seconds are
// accepted after the seconds field even when the layout omits them.
var naiveLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

var readers = map[NativeType]reader{
	NativeTimestamp:   readTimestamp,
	NativeTimestampTZ: readZonedTimestamp,
	NativeDate:        readDate,
	NativeTime:        readTime,
	NativeTimeTZ:      readTime,
	NativeBigint:      readLargeInteger,
	NativeInt128:      readLargeInteger,
	NativeInteger:     readInteger,
	NativeSmallint:    readInteger,
	NativeNumeric:     readDecimal,
	NativeDecfloat:    readDecimal,
	NativeBlob:        readBlob,
	NativeBoolean:     readBoolean,
	NativeChar:        readText,
	NativeVarchar:     readText,
}

// ParseColumnValue converts a raw cell into a host value. NULL stays nil;
// native types without a parser pass through unchanged.
func (m *Marshaller) ParseColumnValue(native NativeType, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	read, ok := m.readers[native]
	if !ok {
		return raw, nil
	}
	return read(m, raw)
}

// readTimestamp interprets the wall-clock value in the configured zone and
// returns it as ISO-8601 in UTC. Without a usable zone the raw text is returned.
func readTimestamp(m *Marshaller, raw any) (any, error) {
	text := rawText(raw, rawTimestampLayout)
	if m.loc == nil {
		return text, nil
	}

	var wall time.Time
	switch v := raw.(type) {
	case time.Time:
		wall = time.Date(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), v.Nanosecond(), m.loc)
	default:
		parsed, err := parseNaive(text, m.loc)
		if err != nil {
			return text, nil
		}
		wall = parsed
	}
	return wall.UTC().Format(isoLayout), nil
}

func readZonedTimestamp(_ *Marshaller, raw any) (any, error) {
	if t, ok := raw.(time.Time); ok {
		return t.UTC().Format(isoLayout), nil
	}
	return rawText(raw, rawTimestampLayout), nil
}

func readDate(_ *Marshaller, raw any) (any, error) {
	return rawText(raw, rawDateLayout), nil
}

func readTime(_ *Marshaller, raw any) (any, error) {
	return rawText(raw, rawTimeLayout), nil
}

// readLargeInteger returns text so values beyond 2^53 survive hosts that
// store numbers as doubles. Scaled values (NUMERIC stored as BIGINT) arrive
// as decimals and stay decimals.
func readLargeInteger(_ *Marshaller, raw any) (any, error) {
	switch v := raw.(type) {
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int:
		return strconv.Itoa(v), nil
	case *big.Int:
		return v.String(), nil
	case decimal.Decimal:
		if v.Exponent() >= 0 {
			return v.String(), nil
		}
		return v, nil
	case []byte:
		return string(v), nil
	case string:
		return v, nil
	default:
		return fmt.Sprint(v), nil
	}
}

func readInteger(_ *Marshaller, raw any) (any, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int:
		return int64(v), nil
	case decimal.Decimal:
		// scaled SMALLINT/INTEGER, i.e. NUMERIC(4,2) or NUMERIC(9,2)
		return v, nil
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return raw, nil
	}
}

func readDecimal(_ *Marshaller, raw any) (any, error) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case []byte:
		return decimal.NewFromString(string(v))
	case string:
		return decimal.NewFromString(v)
	default:
		return raw, nil
	}
}

func readBlob(m *Marshaller, raw any) (any, error) {
	var b []byte
	switch v := raw.(type) {
	case []byte:
		b = v
	case string:
		if m.opts.BlobAsText {
			return v, nil
		}
		b = []byte(v)
	default:
		return raw, nil
	}

	if !m.opts.BlobAsText {
		return b, nil
	}
	text, err := m.decodeText(b)
	if err != nil {
		return nil, fmt.Errorf("decode blob as %s: %w", m.opts.Charset, err)
	}
	return text, nil
}

func readBoolean(_ *Marshaller, raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case int32:
		return v != 0, nil
	case int16:
		return v != 0, nil
	case string:
		return strconv.ParseBool(v)
	default:
		return raw, nil
	}
}

func readText(_ *Marshaller, raw any) (any, error) {
	if b, ok := raw.([]byte); ok {
		return string(b), nil
	}
	return raw, nil
}

// rawText renders a driver value the way the engine prints it.
func rawText(raw any, layout string) string {
	switch v := raw.(type) {
	case time.Time:
		return v.Format(layout)
	case []byte:
		return string(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func parseNaive(s string, loc *time.Location) (time.Time, error) {
	var firstErr error
	for _, layout := range naiveLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
