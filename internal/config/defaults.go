package config

import (
	"os"
	"regexp"

	"github.com/leapstack-labs/fbdialect/pkg/adapters/firebird"
)

// defaults is the lowest configuration layer.
func defaults() map[string]any {
	return map[string]any{
		"output":                         DefaultOutput,
		"verbose":                        false,
		"connect_attempts":               DefaultConnectAttempts,
		"target.host":                    firebird.DefaultHost,
		"target.port":                    firebird.DefaultPort,
		"target.charset":                 firebird.DefaultCharset,
		"target.retryConnectionInterval": firebird.DefaultRetryConnectionInterval,
	}
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns with environment variable values.
// Unset variables are left as written.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if val, ok := os.LookupEnv(match[2 : len(match)-1]); ok {
			return val
		}
		return match
	})
}

// expandTargetEnvVars expands environment variables in the fields that
// usually carry secrets or deployment-specific values.
func expandTargetEnvVars(t *firebird.ConnectionConfig) {
	t.Host = expandEnvVars(t.Host)
	t.Database = expandEnvVars(t.Database)
	t.User = expandEnvVars(t.User)
	t.Password = expandEnvVars(t.Password)
	t.Role = expandEnvVars(t.Role)
}

// applyURL overlays the fields a connection URL sets onto the target.
func applyURL(t *firebird.ConnectionConfig, u firebird.ConnectionConfig) {
	if u.Host != "" {
		t.Host = u.Host
	}
	if u.Port != 0 {
		t.Port = u.Port
	}
	if u.Database != "" {
		t.Database = u.Database
	}
	if u.User != "" {
		t.User = u.User
	}
	if u.Password != "" {
		t.Password = u.Password
	}
	if u.Role != "" {
		t.Role = u.Role
	}
	if u.Charset != "" {
		t.Charset = u.Charset
	}
	if u.RetryConnectionInterval != 0 {
		t.RetryConnectionInterval = u.RetryConnectionInterval
	}
	t.ReadOnly = t.ReadOnly || u.ReadOnly
	t.LowerCaseKeys = t.LowerCaseKeys || u.LowerCaseKeys
	t.BlobAsText = t.BlobAsText || u.BlobAsText
}
