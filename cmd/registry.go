package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	registryCmd = &cobra.Command{
		Use:   "registry",
		Short: "Manage the used-image registry",
	}

	registryResetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Clear the used-image registry",
		Long: `Forget every issued image identifier. Use at a campaign boundary:
previously used images become eligible again for future posts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := newDeps()
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.registry.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("reset registry: %w", err)
			}
			d.log.Info("image registry cleared")
			return nil
		},
	}
)

func init() {
	registryCmd.AddCommand(registryResetCmd)
}
