package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newCheckCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [save-file] <user> <path>",
		Short: "Check whether a user holds a permission, cascading through their groups",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			savePath, uid, path := cfg.RegistryFile, args[0], args[1]
			if len(args) == 3 {
				savePath, uid, path = args[0], args[1], args[2]
			}

			fs := afero.NewOsFs()
			r, err := openRegistry(fs, savePath)
			if err != nil {
				return err
			}

			status := r.GetUserPermissionStatus(uid, path)
			if status.HasPermission {
				if status.PermissionArg != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "granted: %s = %s\n", path, *status.PermissionArg)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "granted: %s\n", path)
				}
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "denied: %s\n", path)
			return status.AssertHasPermission()
		},
	}
	return cmd
}
