package cli

import (
	"github.com/spf13/cobra"

	"github.com/tidepay/tidepay-go/internal/history"
	"github.com/tidepay/tidepay-go/internal/ledger/ranges"
)

type ledgersOutput struct {
	CompleteLedgers string               `json:"completeLedgers"`
	LatestValidated uint32               `json:"latestValidated"`
	Ranges          []ranges.LedgerRange `json:"ranges"`
	Check           *ranges.RangeCheck   `json:"check,omitempty"`
}

func newLedgersCmd(flags *rootFlags) *cobra.Command {
	var minLedger, maxLedger int64

	cmd := &cobra.Command{
		Use:   "ledgers",
		Short: "Show the ledgers held by the node",
		Long: `Show the ranges of validated ledgers held by the node. With --min or --max,
also check that every ledger of that range is held; the command fails if not.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), flags, cmd.ErrOrStderr(), func(a *app) error {
				oracle := a.oracle()
				snap, err := oracle.Snapshot(cmd.Context())
				if err != nil {
					return err
				}

				out := ledgersOutput{
					CompleteLedgers: snap.Complete.String(),
					LatestValidated: snap.LatestValidated,
					Ranges:          snap.Complete.Ranges(),
				}

				checking := cmd.Flags().Changed("min") || cmd.Flags().Changed("max")
				if checking {
					out.Check, err = oracle.Check(cmd.Context(), minLedger, maxLedger)
					if err != nil {
						return err
					}
				}

				if err := printJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
				if out.Check != nil && !out.Check.Complete {
					return &history.MissingLedgerHistoryError{MinLedgerVersion: minLedger, MaxLedgerVersion: maxLedger}
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&minLedger, "min", 0, "first ledger of the range to check (default earliest)")
	cmd.Flags().Int64Var(&maxLedger, "max", 0, "last ledger of the range to check (default latest validated)")
	return cmd
}
