package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newDumpCmd(configPath *string) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "dump [save-file]",
		Short: "Print a registry save file back out, or one user's own permissions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			path := cfg.RegistryFile
			if len(args) == 1 {
				path = args[0]
			}

			fs := afero.NewOsFs()
			r, err := openRegistry(fs, path)
			if err != nil {
				return err
			}

			if userID == "" {
				fmt.Fprint(cmd.OutOrStdout(), r.Save())
				return nil
			}
			for _, line := range r.GetUserPermissions(userID) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "only print this user's own permissions")
	return cmd
}
