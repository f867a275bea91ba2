package output

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/fbdialect/pkg/core"
)

func sampleResult() *core.ResultSet {
	return &core.ResultSet{
		Columns: []core.Column{{Name: "ID"}, {Name: "NAME"}, {Name: "BALANCE"}},
		Rows: []map[string]any{
			{"ID": int64(1), "NAME": "alice", "BALANCE": decimal.RequireFromString("10.50")},
			{"ID": int64(2), "NAME": nil, "BALANCE": decimal.Zero},
		},
	}
}

func TestNewRenderer_AutoWithoutTerminal(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &out, ModeAuto)
	assert.Equal(t, ModeMarkdown, r.Mode())
}

func TestRenderer_ResultSetMarkdown(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &out, ModeMarkdown)

	require.NoError(t, r.ResultSet(sampleResult()))
	s := out.String()
	assert.Contains(t, s, "| ID | NAME | BALANCE |")
	assert.Contains(t, s, "| 1 | alice | 10.5 |")
	assert.Contains(t, s, "NULL")
	assert.Contains(t, s, "(2 rows)")
}

func TestRenderer_ResultSetJSON(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &out, ModeJSON)

	require.NoError(t, r.ResultSet(sampleResult()))
	var got []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, []map[string]any{
		{"ID": float64(1), "NAME": "alice", "BALANCE": "10.5"},
		{"ID": float64(2), "NAME": nil, "BALANCE": "0"},
	}, got)
	assert.NotContains(t, out.String(), "rows)")
}

func TestRenderer_ValueYAML(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &out, ModeYAML)

	require.NoError(t, r.Value(map[string]any{"name": "firebird", "schemas": false}))
	assert.Equal(t, "name: firebird\nschemas: false\n", out.String())
}

func TestRenderer_Warn(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRenderer(&out, &errOut, ModeTable)
	r.Warn("table %s has no rows", "T")
	assert.Empty(t, out.String())
	assert.Equal(t, "Warning: table T has no rows\n", errOut.String())
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "NULL", FormatValue(nil))
	assert.Equal(t, `\x0102`, FormatValue([]byte{1, 2}))
	assert.Equal(t, "3.14", FormatValue(decimal.RequireFromString("3.14")))
	assert.Equal(t, "true", FormatValue(true))
}

func TestContext(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &out, ModeJSON)
	assert.Same(t, r, FromContext(WithRenderer(context.Background(), r)))
	assert.NotNil(t, FromContext(context.Background()))
}
