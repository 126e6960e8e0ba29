package cmds

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LouisPinsard/lift/lib/policy"
)

func newPermissionsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "permissions",
		Short: "Print the IAM policy document the constructs need at runtime",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lift, _, err := synth(opts)
			if err != nil {
				return err
			}
			out, err := policy.NewDocument(lift.Permissions()).JSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
