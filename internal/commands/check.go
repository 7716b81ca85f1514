package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate assignment and rejection integrity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, opts)
			if err != nil {
				return err
			}
			violations, err := p.svc.Check()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, v := range violations {
				fmt.Fprintln(out, v.Error())
			}
			if len(violations) > 0 {
				return fmt.Errorf("%d integrity violation(s)", len(violations))
			}
			fmt.Fprintln(out, "OK")
			return nil
		},
	}
}
