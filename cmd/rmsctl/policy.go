package main

import (
	"fmt"
	"os"
	"rms/shared/policy"
	"sort"

	"github.com/spf13/cobra"
)

func newPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect restaurant policy files",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check <file>",
		Short: "Validate a policy file and list the restaurants it overrides",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open policy file: %w", err)
			}
			defer f.Close()

			overrides, err := policy.Parse(f)
			if err != nil {
				return err
			}

			ids := make([]string, 0, len(overrides))
			for id := range overrides {
				ids = append(ids, id)
			}

			sort.Strings(ids)

			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d restaurant overrides\n", len(ids))

			return nil
		},
	})

	return cmd
}
