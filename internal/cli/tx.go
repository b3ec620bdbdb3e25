package cli

import (
	"github.com/spf13/cobra"
)

func newTxCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tx <id>",
		Short: "Show a validated transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), flags, cmd.ErrOrStderr(), func(a *app) error {
				resolver, err := a.resolver()
				if err != nil {
					return err
				}
				tx, err := resolver.GetTransaction(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), tx)
			})
		},
	}
}
