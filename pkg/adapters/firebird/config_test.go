package firebird

import (
	"reflect"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/fbdialect/pkg/core"
	"github.com/leapstack-labs/fbdialect/pkg/sqlerr"
)

func TestParseConnectionURL(t *testing.T) {
	cfg, err := ParseConnectionURL("firebird://user:pw@host:3050/db?charset=UTF8")
	require.NoError(t, err)
	assert.Equal(t, ConnectionConfig{
		Host:     "host",
		Port:     3050,
		User:     "user",
		Password: "pw",
		Database: "db",
		Charset:  "UTF8",
	}, cfg)
}

func TestParseConnectionURL_Variants(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want ConnectionConfig
	}{
		{
			name: "absolute database path",
			url:  "firebird://sysdba@db.local//var/lib/firebird/data/app.fdb",
			want: ConnectionConfig{Host: "db.local", User: "sysdba", Database: "/var/lib/firebird/data/app.fdb"},
		},
		{
			name: "typed query parameters",
			url:  "firebird://h/db?readOnly=true&lowerCaseKeys=1&retryConnectionInterval=250&role=RDB$ADMIN",
			want: ConnectionConfig{Host: "h", Database: "db", ReadOnly: true, LowerCaseKeys: true, RetryConnectionInterval: 250, Role: "RDB$ADMIN"},
		},
		{
			name: "escaped password",
			url:  "firebird://u:p%40ss@h:3051/db",
			want: ConnectionConfig{Host: "h", Port: 3051, User: "u", Password: "p@ss", Database: "db"},
		},
		{
			name: "scheme is case insensitive",
			url:  "FIREBIRD://h/db",
			want: ConnectionConfig{Host: "h", Database: "db"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConnectionURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestParseConnectionURL_Errors(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"wrong scheme", "postgres://user:pw@host:5432/db"},
		{"unknown parameter", "firebird://host/db?sslmode=disable"},
		{"bad port", "firebird://host:port/db"},
		{"bad boolean", "firebird://host/db?readOnly=maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConnectionURL(tt.url)
			require.Error(t, err)
			assert.Equal(t, sqlerr.KindInvalidConnection, sqlerr.KindOf(err))
		})
	}
}

// The option partition must cover exactly the fields of ConnectionConfig,
// each under the kind of its Go type.
func TestOptionNamesPartition(t *testing.T) {
	byKind := map[reflect.Kind][]string{}
	typ := reflect.TypeOf(ConnectionConfig{})
	for i := range typ.NumField() {
		f := typ.Field(i)
		byKind[f.Type.Kind()] = append(byKind[f.Type.Kind()], f.Tag.Get("mapstructure"))
	}

	assert.ElementsMatch(t, StringOptionNames, byKind[reflect.String])
	assert.ElementsMatch(t, BooleanOptionNames, byKind[reflect.Bool])
	assert.ElementsMatch(t, NumberOptionNames, byKind[reflect.Int])
	assert.Len(t, byKind, 3, "no field may be outside the partition")

	all := append([]string(nil), OptionNames...)
	sort.Strings(all)
	for i := 1; i < len(all); i++ {
		assert.NotEqual(t, all[i-1], all[i], "option %q listed twice", all[i])
	}
	assert.Len(t, all, typ.NumField())
}

func TestDecodeOptions(t *testing.T) {
	cfg, err := DecodeOptions(map[string]any{
		"host":       "h",
		"port":       "3051",
		"database":   "db",
		"blobAsText": "true",
	})
	require.NoError(t, err)
	assert.Equal(t, ConnectionConfig{Host: "h", Port: 3051, Database: "db", BlobAsText: true}, cfg)

	_, err = DecodeOptions(map[string]any{"database": "db", "dialect": 3})
	require.Error(t, err)
	assert.Equal(t, sqlerr.KindInvalidConnection, sqlerr.KindOf(err))
}

func TestWithDefaults(t *testing.T) {
	cfg := ConnectionConfig{Database: "db"}.WithDefaults()
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 3050, cfg.Port)
	assert.Equal(t, "UTF8", cfg.Charset)
	assert.Equal(t, 1000, cfg.RetryConnectionInterval)

	kept := ConnectionConfig{Host: "h", Port: 1, Charset: "WIN1252", RetryConnectionInterval: 5}.WithDefaults()
	assert.Equal(t, ConnectionConfig{Host: "h", Port: 1, Charset: "WIN1252", RetryConnectionInterval: 5}, kept)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, ConnectionConfig{Database: "db", Port: 3050}.Validate())
	assert.True(t, sqlerr.IsKind(ConnectionConfig{}.Validate(), sqlerr.KindInvalidConnection))
	assert.True(t, sqlerr.IsKind(ConnectionConfig{Database: "db", Port: 70000}.Validate(), sqlerr.KindInvalidConnection))
}

func TestFromAdapterConfig(t *testing.T) {
	cfg, err := FromAdapterConfig(core.AdapterConfig{
		Type:     "firebird",
		Host:     "h",
		Port:     3050,
		Database: "db",
		Username: "sysdba",
		Password: "masterkey",
		Options:  map[string]string{"charset": "WIN1252", "timezone": "Europe/Paris"},
		Params:   map[string]any{"lowerCaseKeys": true, "showWarnings": true},
	})
	require.NoError(t, err)
	assert.Equal(t, ConnectionConfig{
		Host:          "h",
		Port:          3050,
		Database:      "db",
		User:          "sysdba",
		Password:      "masterkey",
		Charset:       "WIN1252",
		LowerCaseKeys: true,
	}, cfg)

	opts, err := dialectOptions(core.AdapterConfig{
		Options: map[string]string{"timezone": "Europe/Paris"},
		Params:  map[string]any{"showWarnings": true},
	})
	require.NoError(t, err)
	assert.Equal(t, Options{ShowWarnings: true, TimeZone: "Europe/Paris"}, opts)
}

func TestConnectionConfig_String(t *testing.T) {
	cfg := ConnectionConfig{Host: "h", Port: 3050, Database: "db", User: "u", Password: "secret", Charset: "UTF8"}
	s := cfg.String()
	assert.Equal(t, "firebird://u:xxxxx@h:3050/db?charset=UTF8", s)
	assert.NotContains(t, s, "secret")
}

func TestConnectionConfig_Map(t *testing.T) {
	m, err := ConnectionConfig{Host: "h", Database: "db", Password: "secret", ReadOnly: true}.Map()
	require.NoError(t, err)
	assert.Len(t, m, len(OptionNames))
	assert.Equal(t, "xxxxx", m["password"])
	assert.Equal(t, "h", m["host"])
	assert.Equal(t, true, m["readOnly"])
	assert.Equal(t, 0, m["port"])
}

func TestAttachOptions_DSN(t *testing.T) {
	tests := []struct {
		name string
		opts AttachOptions
		want string
	}{
		{
			name: "basic",
			opts: AttachOptions{Host: "localhost", Port: 3050, Database: "employee", User: "sysdba", Password: "masterkey", Charset: "UTF8"},
			want: "sysdba:masterkey@localhost:3050/employee?charset=UTF8",
		},
		{
			name: "role and lower case keys",
			opts: AttachOptions{Host: "h", Port: 3051, Database: "db", User: "u", Password: "p", Role: "R", LowerCaseKeys: true},
			want: "u:p@h:3051/db?column_name_to_lower=true&role=R",
		},
		{
			name: "absolute path",
			opts: AttachOptions{Host: "h", Port: 3050, Database: "/data/app.fdb"},
			want: "h:3050//data/app.fdb",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.DSN())
		})
	}
}
