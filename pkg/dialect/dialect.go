// Package dialect provides the runtime description of a SQL dialect:
// identifier quoting, string escaping, placeholders and the capability table
// host layers consult before asking for SQL.
//
// Concrete dialects are registered from pkg/adapters/*/dialect packages.
package dialect

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/leapstack-labs/fbdialect/pkg/core"
	"github.com/leapstack-labs/fbdialect/pkg/sqlerr"
)

// Dialect represents a SQL dialect configuration.
// A built Dialect is immutable and safe for concurrent use.
type Dialect struct {
	Name        string
	Identifiers core.IdentifierConfig

	// Database-specific settings
	DefaultSchema    string                // Default schema name, empty when the engine has none
	Placeholder      core.PlaceholderStyle // How to format query parameters
	BackslashEscapes bool                  // Whether \ escapes inside string literals
	MinimumVersion   string
	DocumentationURL string

	capabilities  core.Capabilities
	reservedWords map[string]struct{}
	options       []string
}

// Config returns the pure data configuration for this dialect.
func (d *Dialect) Config() *core.DialectConfig {
	return &core.DialectConfig{
		Name:             d.Name,
		Identifiers:      d.Identifiers,
		DefaultSchema:    d.DefaultSchema,
		Placeholder:      d.Placeholder,
		BackslashEscapes: d.BackslashEscapes,
		MinimumVersion:   d.MinimumVersion,
		DocumentationURL: d.DocumentationURL,
	}
}

// GetName returns the dialect name.
func (d *Dialect) GetName() string {
	return d.Name
}

// Capabilities returns the dialect's feature table.
func (d *Dialect) Capabilities() core.Capabilities {
	return d.capabilities
}

// Supports reports whether the dialect declares f as supported.
func (d *Dialect) Supports(f core.Feature) bool {
	return d.capabilities.Supports(f)
}

// Require returns an UnsupportedOperation error unless f is supported.
// Generators call it before emitting SQL for gated features.
func (d *Dialect) Require(f core.Feature) error {
	if _, ok := d.capabilities.Lookup(f); !ok {
		return sqlerr.Unsupported("%s: feature %q is not declared", d.Name, f)
	}
	if !d.capabilities.Supports(f) {
		return sqlerr.Unsupported("%s does not support %s", d.Name, f)
	}
	return nil
}

// SupportedOptions returns the dialect-level option names a host may set.
func (d *Dialect) SupportedOptions() []string {
	return slices.Clone(d.options)
}

// NormalizeName normalizes an identifier according to dialect rules.
func (d *Dialect) NormalizeName(name string) string {
	switch d.Identifiers.Normalization {
	case core.NormUppercase:
		return strings.ToUpper(name)
	case core.NormLowercase:
		return strings.ToLower(name)
	default: // NormCaseSensitive
		return name
	}
}

// FormatPlaceholder returns a placeholder for the given parameter index (1-based).
// Returns "?" for PlaceholderQuestion style, "$1", "$2" etc. for PlaceholderDollar style.
func (d *Dialect) FormatPlaceholder(index int) string {
	switch d.Placeholder {
	case core.PlaceholderDollar:
		return "$" + strconv.Itoa(index)
	default: // PlaceholderQuestion
		return "?"
	}
}

// IsReservedWord returns true if the word needs quoting when used as an identifier.
func (d *Dialect) IsReservedWord(word string) bool {
	_, ok := d.reservedWords[strings.ToUpper(word)]
	return ok
}

// QuoteIdentifier quotes an identifier using the dialect's quote characters.
func (d *Dialect) QuoteIdentifier(name string) string {
	// Escape any existing quote end characters in the name (e.g., " -> "")
	escaped := strings.ReplaceAll(name, d.Identifiers.QuoteEnd, d.Identifiers.Escape)
	return d.Identifiers.Quote + escaped + d.Identifiers.QuoteEnd
}

// QuoteIdentifierIfNeeded quotes an identifier only if it's a reserved word.
func (d *Dialect) QuoteIdentifierIfNeeded(name string) string {
	if d.IsReservedWord(name) {
		return d.QuoteIdentifier(name)
	}
	return name
}

// QuoteTable quotes a possibly qualified table name ("schema.table").
func (d *Dialect) QuoteTable(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = d.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// EscapeString renders s as a string literal. Quotes are doubled; backslashes
// are doubled only for dialects that treat them as escapes.
func (d *Dialect) EscapeString(s string) string {
	if d.BackslashEscapes {
		s = strings.ReplaceAll(s, `\`, `\\`)
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// ---------- Builder ----------

// ErrIncompleteCapabilities is returned by Build when the capability table
// lacks an entry for a known feature.
var ErrIncompleteCapabilities = errors.New("capability table is incomplete")

// Builder provides a fluent API for constructing dialects.
type Builder struct {
	dialect *Dialect
}

// NewDialect creates a builder with ANSI defaults.
func NewDialect(name string) *Builder {
	return &Builder{
		dialect: &Dialect{
			Name: name,
			Identifiers: core.IdentifierConfig{
				Quote:         `"`,
				QuoteEnd:      `"`,
				Escape:        `""`,
				Normalization: core.NormLowercase,
			},
			capabilities:  core.BaseCapabilities(),
			reservedWords: make(map[string]struct{}),
		},
	}
}

// Identifiers sets the quoting and normalization rules.
func (b *Builder) Identifiers(quote, quoteEnd, escape string, norm core.NormalizationStrategy) *Builder {
	b.dialect.Identifiers = core.IdentifierConfig{
		Quote:         quote,
		QuoteEnd:      quoteEnd,
		Escape:        escape,
		Normalization: norm,
	}
	return b
}

// DefaultSchema sets the default schema name.
func (b *Builder) DefaultSchema(schema string) *Builder {
	b.dialect.DefaultSchema = schema
	return b
}

// PlaceholderStyle sets how parameters are written.
func (b *Builder) PlaceholderStyle(style core.PlaceholderStyle) *Builder {
	b.dialect.Placeholder = style
	return b
}

// BackslashEscapes sets whether string literals treat \ as an escape.
func (b *Builder) BackslashEscapes(enabled bool) *Builder {
	b.dialect.BackslashEscapes = enabled
	return b
}

// MinimumVersion sets the oldest engine version the dialect targets.
func (b *Builder) MinimumVersion(v string) *Builder {
	b.dialect.MinimumVersion = v
	return b
}

// Documentation sets the reference documentation URL.
func (b *Builder) Documentation(url string) *Builder {
	b.dialect.DocumentationURL = url
	return b
}

// Capabilities replaces the feature table. Start from core.BaseCapabilities
// and override what the engine does differently.
func (b *Builder) Capabilities(caps core.Capabilities) *Builder {
	b.dialect.capabilities = caps
	return b
}

// Options declares the dialect-level option names.
func (b *Builder) Options(names ...string) *Builder {
	b.dialect.options = append(b.dialect.options, names...)
	return b
}

// WithReservedWords adds words that must be quoted when used as identifiers.
func (b *Builder) WithReservedWords(words ...string) *Builder {
	for _, w := range words {
		b.dialect.reservedWords[strings.ToUpper(w)] = struct{}{}
	}
	return b
}

// Build validates and returns the dialect.
func (b *Builder) Build() (*Dialect, error) {
	if b.dialect.Name == "" {
		return nil, errors.New("dialect name is required")
	}
	if missing := b.dialect.capabilities.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s lacks %v", ErrIncompleteCapabilities, b.dialect.Name, missing)
	}
	return b.dialect, nil
}

// MustBuild is like Build but panics on error. Intended for package-level
// dialect definitions.
func (b *Builder) MustBuild() *Dialect {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}
