package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/rentcheck/internal/activity"
)

func newAccountCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage bank account data",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "rm ACCOUNT",
		Short: "Delete every transaction of a bank account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, opts)
			if err != nil {
				return err
			}
			n, err := p.svc.DeleteAccount(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d transaction(s) from %s\n", n, args[0])
			if n == 0 {
				return nil
			}
			p.record(activity.ActionAccountDelete, "", "", fmt.Sprintf("%s: %d transaction(s)", args[0], n))
			p.finish(fmt.Sprintf("account rm: %s", args[0]))
			return nil
		},
	})
	return cmd
}
