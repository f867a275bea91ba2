package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/fbdialect/internal/cli/output"
	fbdialect "github.com/leapstack-labs/fbdialect/pkg/adapters/firebird/dialect"
	"github.com/leapstack-labs/fbdialect/pkg/core"
	"github.com/leapstack-labs/fbdialect/pkg/dialect"
)

// NewCapabilitiesCommand creates the capabilities command.
func NewCapabilitiesCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:     "capabilities [feature...]",
		Aliases: []string{"caps"},
		Short:   "Show the dialect capability table",
		Long: `Show which SQL features the Firebird dialect supports. With arguments,
only the named features are shown.`,
		Example: `  fbdialect capabilities
  fbdialect capabilities inserts.updateOnDuplicate forShare -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapabilities(cmd, name, args)
		},
	}
	cmd.Flags().StringVar(&name, "dialect", fbdialect.Name, "Registered dialect to describe")
	return cmd
}

type capabilityRow struct {
	Feature   string `json:"feature" yaml:"feature"`
	Supported bool   `json:"supported" yaml:"supported"`
	Value     string `json:"value,omitempty" yaml:"value,omitempty"`
}

func runCapabilities(cmd *cobra.Command, name string, args []string) error {
	d, ok := dialect.Get(name)
	if !ok {
		return fmt.Errorf("unknown dialect %q (registered: %s)", name, strings.Join(dialect.List(), ", "))
	}
	caps := d.Capabilities()

	features := caps.Features()
	if len(args) > 0 {
		features = features[:0:0]
		for _, a := range args {
			f := core.Feature(a)
			if _, ok := caps.Lookup(f); !ok {
				return fmt.Errorf("unknown feature %q", a)
			}
			features = append(features, f)
		}
	}

	rows := make([]capabilityRow, len(features))
	for i, f := range features {
		s, _ := caps.Lookup(f)
		rows[i] = capabilityRow{Feature: string(f), Supported: s.Enabled, Value: s.Value}
	}

	r := output.FromContext(cmd.Context())
	if r.Structured() {
		return r.Value(rows)
	}
	cells := make([][]any, len(rows))
	for i, row := range rows {
		cells[i] = []any{row.Feature, row.Supported, row.Value}
	}
	return r.Table([]string{"Feature", "Supported", "Value"}, cells)
}
