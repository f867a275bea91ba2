package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	fbdialect "github.com/leapstack-labs/fbdialect/pkg/adapters/firebird/dialect"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display fbdialect version and the dialect it implements.`,
		Run: func(cmd *cobra.Command, _ []string) {
			d := fbdialect.Firebird.Config()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "fbdialect v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Dialect %s (Firebird %s+)\n", d.Name, d.MinimumVersion)
		},
	}
}
