package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/fbdialect/internal/cli/output"
	fbdialect "github.com/leapstack-labs/fbdialect/pkg/adapters/firebird/dialect"
)

// NewGenerateCommand creates the generate command and its subcommands.
// Nothing is sent to a server.
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Print the SQL the dialect generates",
		Long:    `Print the statements the Firebird query generator builds, without connecting.`,
	}

	cmd.AddCommand(newGenerateTruncateCommand())
	cmd.AddCommand(newGenerateSelectCommand())
	cmd.AddCommand(newGenerateDropCommand())

	return cmd
}

func generator() *fbdialect.QueryGenerator {
	return newAdapter(nil).Generator()
}

func printStatement(cmd *cobra.Command, stmt fbdialect.Statement) error {
	r := output.FromContext(cmd.Context())
	if r.Structured() {
		return r.Value(map[string]any{"sql": stmt.SQL, "args": stmt.Args})
	}
	r.Println(stmt.String())
	return nil
}

func newGenerateTruncateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "truncate <table>",
		Short: "Generate a truncate statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stmt, err := generator().TruncateTableQuery(args[0], fbdialect.TruncateOptions{})
			if err != nil {
				return err
			}
			return printStatement(cmd, stmt)
		},
	}
}

func newGenerateSelectCommand() *cobra.Command {
	var q fbdialect.Select

	cmd := &cobra.Command{
		Use:     "select <table>",
		Short:   "Generate a select statement",
		Example: `  fbdialect generate select EMPLOYEE --columns EMP_NO,LAST_NAME --limit 10 --offset 20`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Table = args[0]
			stmt, err := generator().SelectQuery(q)
			if err != nil {
				return err
			}
			return printStatement(cmd, stmt)
		},
	}

	cmd.Flags().StringSliceVar(&q.Columns, "columns", nil, "Columns to select (default all)")
	cmd.Flags().IntVar(&q.Limit, "limit", 0, "Maximum rows (FIRST)")
	cmd.Flags().IntVar(&q.Offset, "offset", 0, "Rows to skip (SKIP)")

	return cmd
}

func newGenerateDropCommand() *cobra.Command {
	var ifExists bool

	cmd := &cobra.Command{
		Use:   "drop <table>",
		Short: "Generate a drop table statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printStatement(cmd, generator().DropTableQuery(args[0], ifExists))
		},
	}

	cmd.Flags().BoolVar(&ifExists, "if-exists", false, "Guard the drop with an existence check")

	return cmd
}
