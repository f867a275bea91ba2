// Package fbtypes converts between Firebird column values and host values.
//
// The read path is keyed by native type (what the driver or catalog reports),
// the write path by logical type (what the host declared). Both tables are
// fixed when a Marshaller is created.
package fbtypes

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Quoter renders identifiers and string literals. *dialect.Dialect satisfies it.
type Quoter interface {
	QuoteIdentifier(name string) string
	EscapeString(s string) string
}

// Options configures a Marshaller.
type Options struct {
	// TimeZone is an IANA name ("Europe/Paris"), an offset ("+02:00"),
	// "UTC" or "local". Empty means UTC on write and raw text on read.
	TimeZone string
	// BlobAsText decodes BLOB values as text using Charset.
	BlobAsText bool
	// Charset is the connection character set, e.g. UTF8 or WIN1252.
	Charset string
	// NativeBoolean binds booleans as true/false instead of 1/0.
	NativeBoolean bool
}

type (
	reader func(m *Marshaller, raw any) (any, error)
	writer func(m *Marshaller, ct ColumnType, v any) (any, error)
)

// Marshaller converts values in both directions. It is immutable after New
// and safe for concurrent use.
type Marshaller struct {
	opts    Options
	loc     *time.Location
	zoneErr error
	quoter  Quoter
	readers map[NativeType]reader
	writers map[LogicalType]writer
}

// New creates a Marshaller. An invalid time zone is not an error here: reads
// fall back to raw text and timestamp writes fail with a ConstructionError.
func New(opts Options, q Quoter) *Marshaller {
	m := &Marshaller{
		opts:    opts,
		quoter:  q,
		readers: readers,
		writers: writers,
	}
	m.loc, m.zoneErr = LoadZone(opts.TimeZone)
	return m
}

// Options returns the marshaller's configuration.
func (m *Marshaller) Options() Options {
	return m.opts
}

// Location returns the configured zone, or nil when none is configured or
// the configured one is invalid.
func (m *Marshaller) Location() *time.Location {
	return m.loc
}

var offsetPattern = regexp.MustCompile(`^([+-])(\d{2}):?(\d{2})$`)

// LoadZone resolves a time zone option. An empty name returns nil, nil.
func LoadZone(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	switch strings.ToLower(name) {
	case "":
		return nil, nil
	case "utc", "z":
		return time.UTC, nil
	case "local":
		return time.Local, nil
	}

	if match := offsetPattern.FindStringSubmatch(name); match != nil {
		hours, _ := strconv.Atoi(match[2])
		minutes, _ := strconv.Atoi(match[3])
		if hours > 14 || minutes > 59 {
			return nil, fmt.Errorf("invalid time zone offset %q", name)
		}
		seconds := hours*3600 + minutes*60
		if match[1] == "-" {
			seconds = -seconds
		}
		return time.FixedZone(name, seconds), nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", name, err)
	}
	return loc, nil
}
