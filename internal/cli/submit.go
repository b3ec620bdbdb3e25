package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/tidepay/tidepay-go/internal/submit"
)

func newSubmitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <tx_blob>",
		Short: "Submit a signed transaction",
		Long: `Submit a hex encoded signed transaction and print the preliminary result.
Exits with an error when the node rejects the transaction as malformed (tem).
Other results are only preliminary: check the transaction once it is validated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), flags, cmd.ErrOrStderr(), func(a *app) error {
				outcome, err := a.submitter().Submit(cmd.Context(), args[0])
				var rejection *submit.NodeRejectionError
				if errors.As(err, &rejection) {
					if printErr := printJSON(cmd.OutOrStdout(), rejection.Outcome); printErr != nil {
						return printErr
					}
				}
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), outcome)
			})
		},
	}
}
