package fbtypes_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/leapstack-labs/fbdialect/pkg/adapters/firebird/fbtypes"
)

func TestParseColumnValue(t *testing.T) {
	m := newMarshaller(fbtypes.Options{})
	wall := time.Date(2024, 3, 10, 12, 34, 56, 789_000_000, time.Local)

	tests := []struct {
		name   string
		native fbtypes.NativeType
		raw    any
		want   any
	}{
		{"null", fbtypes.NativeTimestamp, nil, nil},
		{"timestamp raw without zone", fbtypes.NativeTimestamp, wall, "2024-03-10 12:34:56.7890"},
		{"timestamp text without zone", fbtypes.NativeTimestamp, "2024-03-10 12:34:56", "2024-03-10 12:34:56"},
		{"date", fbtypes.NativeDate, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), "2024-03-10"},
		{"date text", fbtypes.NativeDate, "2024-03-10", "2024-03-10"},
		{"time", fbtypes.NativeTime, time.Date(0, 1, 1, 8, 15, 0, 0, time.UTC), "08:15:00.0000"},
		{"bigint", fbtypes.NativeBigint, int64(9007199254740993), "9007199254740993"},
		{"int128", fbtypes.NativeInt128, new(big.Int).Lsh(big.NewInt(1), 100), "1267650600228229401496703205376"},
		{"integer int32", fbtypes.NativeInteger, int32(42), int64(42)},
		{"smallint", fbtypes.NativeSmallint, int16(-3), int64(-3)},
		{"numeric", fbtypes.NativeNumeric, decimal.RequireFromString("12.50"), decimal.RequireFromString("12.50")},
		{"blob bytes", fbtypes.NativeBlob, []byte{0xde, 0xad}, []byte{0xde, 0xad}},
		{"boolean", fbtypes.NativeBoolean, true, true},
		{"boolean from int", fbtypes.NativeBoolean, int64(0), false},
		{"varchar bytes", fbtypes.NativeVarchar, []byte("abc"), "abc"},
		{"unknown passthrough", fbtypes.NativeUnknown, 3.25, 3.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.ParseColumnValue(tt.native, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseColumnValue_ScaledBigint(t *testing.T) {
	m := newMarshaller(fbtypes.Options{})
	scaled := decimal.RequireFromString("1234.56")

	got, err := m.ParseColumnValue(fbtypes.NativeBigint, scaled)
	require.NoError(t, err)
	assert.Equal(t, scaled, got)
}

func TestParseColumnValue_TimestampWithZone(t *testing.T) {
	m := newMarshaller(fbtypes.Options{TimeZone: "Europe/Paris"})

	got, err := m.ParseColumnValue(fbtypes.NativeTimestamp, "2024-03-10 12:34:56.789")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10T11:34:56.789Z", got)

	// driver time.Time values are read by wall clock, whatever their location
	raw := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	got, err = m.ParseColumnValue(fbtypes.NativeTimestamp, raw)
	require.NoError(t, err)
	assert.Equal(t, "2024-07-01T07:00:00.000Z", got)

	got, err = m.ParseColumnValue(fbtypes.NativeTimestamp, "garbage")
	require.NoError(t, err)
	assert.Equal(t, "garbage", got)
}

func TestParseColumnValue_BlobAsText(t *testing.T) {
	utf8 := newMarshaller(fbtypes.Options{BlobAsText: true, Charset: "UTF8"})
	got, err := utf8.ParseColumnValue(fbtypes.NativeBlob, []byte("grüße"))
	require.NoError(t, err)
	assert.Equal(t, "grüße", got)

	encoded, err := charmap.Windows1251.NewEncoder().String("привет")
	require.NoError(t, err)

	win := newMarshaller(fbtypes.Options{BlobAsText: true, Charset: "win1251"})
	got, err = win.ParseColumnValue(fbtypes.NativeBlob, []byte(encoded))
	require.NoError(t, err)
	assert.Equal(t, "привет", got)
}

func TestNativeFromName(t *testing.T) {
	tests := map[string]fbtypes.NativeType{
		"LONG":                    fbtypes.NativeInteger,
		"int64":                   fbtypes.NativeBigint,
		"VARYING":                 fbtypes.NativeVarchar,
		"TEXT":                    fbtypes.NativeChar,
		"TIMESTAMP WITH TIMEZONE": fbtypes.NativeTimestampTZ,
		" BLOB ":                  fbtypes.NativeBlob,
		"GEOGRAPHY":               fbtypes.NativeUnknown,
	}
	for name, want := range tests {
		assert.Equal(t, want, fbtypes.NativeFromName(name), name)
	}
}

func TestFieldTypeName(t *testing.T) {
	tests := []struct {
		code, subType, length, precision, scale int
		want                                    string
	}{
		{37, 0, 40, 0, 0, "VARCHAR(40)"},
		{14, 0, 36, 0, 0, "CHAR(36)"},
		{8, 0, 4, 0, 0, "INTEGER"},
		{16, 1, 8, 18, -2, "NUMERIC(18,2)"},
		{16, 2, 8, 18, -4, "DECIMAL(18,4)"},
		{261, 1, 8, 0, 0, "BLOB SUB_TYPE TEXT"},
		{261, 0, 8, 0, 0, "BLOB SUB_TYPE BINARY"},
		{35, 0, 8, 0, 0, "TIMESTAMP"},
		{999, 0, 0, 0, 0, "UNKNOWN(999)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fbtypes.FieldTypeName(tt.code, tt.subType, tt.length, tt.precision, tt.scale))
	}
}

func TestKnownCharset(t *testing.T) {
	assert.True(t, fbtypes.KnownCharset("UTF8"))
	assert.True(t, fbtypes.KnownCharset("win1252"))
	assert.False(t, fbtypes.KnownCharset("EBCDIC"))
}
