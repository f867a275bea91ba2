package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/fbdialect/internal/cli/output"
	"github.com/leapstack-labs/fbdialect/pkg/adapters/firebird"
	fbdialect "github.com/leapstack-labs/fbdialect/pkg/adapters/firebird/dialect"
)

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql> [param...]",
		Short: "Execute a SQL statement",
		Long: `Execute one SQL statement against the target database. Extra arguments
are bound to its ? placeholders as strings.

Statements that return no rows report the number of rows affected.`,
		Example: `  fbdialect query 'SELECT FIRST 5 * FROM EMPLOYEE'
  fbdialect query 'SELECT * FROM EMPLOYEE WHERE DEPT_NO = ?' 600 -o json
  fbdialect query "UPDATE EMPLOYEE SET SALARY = SALARY * 1.1 WHERE JOB_GRADE = ?" 4`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stmt := fbdialect.Statement{SQL: args[0]}
			for _, p := range args[1:] {
				stmt.Args = append(stmt.Args, p)
			}

			ctx := cmd.Context()
			return withAdapter(ctx, func(a *firebird.Adapter) error {
				rs, err := a.Run(ctx, stmt)
				if err != nil {
					return err
				}
				return output.FromContext(ctx).ResultSet(rs)
			})
		},
	}
}
