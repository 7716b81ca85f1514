package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/rentcheck/internal/matching"
)

const dateLayout = "2006-01-02"

func newTxnCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "txn",
		Short: "Inspect imported transactions",
	}
	cmd.AddCommand(newTxnListCommand(opts))
	return cmd
}

func newTxnListCommand(opts *rootOptions) *cobra.Command {
	var filter matching.TransactionFilter
	var from, to string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions in ingestion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if filter.From, err = parseDateFlag("from", from); err != nil {
				return err
			}
			if filter.To, err = parseDateFlag("to", to); err != nil {
				return err
			}

			p, err := openProject(cmd, opts)
			if err != nil {
				return err
			}
			txns, err := p.svc.Transactions(filter)
			if err != nil {
				return err
			}
			assignments, err := p.svc.Assignments()
			if err != nil {
				return err
			}
			tenantOf := make(map[string]string, len(assignments))
			for _, a := range assignments {
				tenantOf[a.TransactionID] = a.TenantID
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tACCOUNT\tAMOUNT\tDESCRIPTION\tTENANT")
			for _, tx := range txns {
				tenant := tenantOf[tx.ID]
				if tenant == "" {
					tenant = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					tx.ID, tx.Date.Format(dateLayout), tx.AccountID, tx.Amount.StringFixed(2), tx.Description, tenant)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&filter.DepositsOnly, "deposits", false, "only deposits")
	cmd.Flags().BoolVar(&filter.UnassignedOnly, "unassigned", false, "only transactions without a tenant")
	cmd.Flags().StringVar(&filter.AccountID, "account", "", "only this bank account")
	cmd.Flags().StringVar(&from, "from", "", "earliest date, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "latest date, YYYY-MM-DD")

	return cmd
}

func parseDateFlag(flag, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: want YYYY-MM-DD", flag, s)
	}
	return d, nil
}
