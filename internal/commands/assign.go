package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/rentcheck/internal/activity"
)

func newAssignCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assign TENANT_ID TRANSACTION_ID",
		Short: "Manually assign a transaction to a tenant",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, opts)
			if err != nil {
				return err
			}
			a, err := p.svc.AssignTransaction(args[0], args[1])
			if err != nil {
				return err
			}
			p.record(activity.ActionAssign, a.TenantID, a.TransactionID, "")
			fmt.Fprintf(cmd.OutOrStdout(), "Assigned %s to %s\n", a.TransactionID, a.TenantID)
			p.finish(fmt.Sprintf("assign: %s to %s", a.TransactionID, a.TenantID))
			return nil
		},
	}
}

func newUnassignCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unassign TRANSACTION_ID",
		Short: "Remove a transaction's assignment and stop auto-match from repeating it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, opts)
			if err != nil {
				return err
			}
			removed, err := p.svc.UnassignTransaction(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if removed == nil {
				fmt.Fprintf(out, "%s is not assigned\n", args[0])
				return nil
			}
			p.record(activity.ActionUnassign, removed.TenantID, removed.TransactionID, "")
			fmt.Fprintf(out, "Unassigned %s from %s\n", removed.TransactionID, removed.TenantID)
			p.finish(fmt.Sprintf("unassign: %s from %s", removed.TransactionID, removed.TenantID))
			return nil
		},
	}
}

func newAssignmentsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assignments",
		Short: "List assignments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, opts)
			if err != nil {
				return err
			}
			assignments, err := p.svc.Assignments()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TENANT\tTRANSACTION\tKIND")
			for _, a := range assignments {
				kind := "auto"
				if a.Manual {
					kind = "manual"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", a.TenantID, a.TransactionID, kind)
			}
			return w.Flush()
		},
	}
}
