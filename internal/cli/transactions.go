package cli

import (
	"github.com/spf13/cobra"

	"github.com/tidepay/tidepay-go/internal/history"
)

func newTransactionsCmd(flags *rootFlags) *cobra.Command {
	var (
		opts        history.Options
		initiated   bool
		noCheckGaps bool
	)

	cmd := &cobra.Command{
		Use:   "transactions <address>",
		Short: "List the validated transactions of an account",
		Long: `List the validated transactions of an account as JSON, newest first
unless --earliest-first is given. Fails if the node is missing ledgers in the
searched range, unless --no-check-gaps is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("initiated") {
				opts.Initiated = &initiated
			}

			return withApp(cmd.Context(), flags, cmd.ErrOrStderr(), func(a *app) error {
				if !cmd.Flags().Changed("binary") {
					opts.Binary = a.config.History.Binary
				}
				opts.NotCheckGaps = noCheckGaps || !a.config.History.CheckGaps

				service, err := a.historyService()
				if err != nil {
					return err
				}
				txs, err := service.GetTransactions(cmd.Context(), args[0], opts)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), txs)
			})
		},
	}

	f := cmd.Flags()
	f.Int64Var(&opts.MinLedgerVersion, "min-ledger", 0, "lowest ledger to search (default earliest available)")
	f.Int64Var(&opts.MaxLedgerVersion, "max-ledger", 0, "highest ledger to search (default most recent)")
	f.BoolVar(&opts.EarliestFirst, "earliest-first", false, "return the oldest transactions first")
	f.IntVar(&opts.Limit, "limit", 0, "maximum number of transactions to return (default all)")
	f.BoolVar(&opts.ExcludeFailures, "exclude-failures", false, "only return transactions that succeeded")
	f.StringSliceVar(&opts.Types, "types", nil, "only return these transaction types (payment, order, trustline...)")
	f.BoolVar(&initiated, "initiated", false, "only return transactions sent (true) or received (false) by the account")
	f.StringVar(&opts.Counterparty, "counterparty", "", "only return transactions involving this address")
	f.StringVar(&opts.Start, "start", "", "resume after the transaction with this id")
	f.BoolVar(&opts.Binary, "binary", false, "request binary encoded transactions from the node")
	f.BoolVar(&noCheckGaps, "no-check-gaps", false, "do not check that the node holds every ledger of the range")

	return cmd
}
