package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMatchCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "match",
		Short: "Assign unassigned deposits to tenants by their rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, opts)
			if err != nil {
				return err
			}
			res, err := p.runMatch(cmd)
			if err != nil {
				return err
			}
			p.finish(fmt.Sprintf("match: %d transaction(s) assigned", res.Matched()))
			return nil
		},
	}
}
