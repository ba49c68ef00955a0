package main

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/halvarsson/permissions/pkg/regfile"
	"github.com/halvarsson/permissions/pkg/registry"
)

// newGrantCmd implements `permctl grant [save-file] <target> <line>`:
// assign_user_permission against the loaded registry, then re-save. The
// --group/--default/--ref flags extend this to the registry's other
// mutators without growing the positional argument shape. save-file may be
// omitted when --config names a registry_file default.
func newGrantCmd(configPath *string) *cobra.Command {
	var toGroup, toDefault, addRef bool

	cmd := &cobra.Command{
		Use:   "grant [save-file] <target> <line>",
		Short: "Grant a permission (or, with --ref, a group reference) and save the registry",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			path, target, line := resolvePathArgs(cfg, args)
			log := cfg.logger()

			fs := afero.NewOsFs()
			r, err := openRegistry(fs, path)
			if err != nil {
				return err
			}
			r.SetLogger(log)

			if err := applyGrant(r, target, line, toGroup, toDefault, addRef); err != nil {
				log.Warn("grant failed", "target", target, "line", line, "err", err.Error())
				return err
			}
			log.Info("granted", "target", target, "line", line)
			return regfile.Save(fs, path, r)
		},
	}
	cmd.Flags().BoolVar(&toGroup, "group", false, "target is a named group rather than a user id")
	cmd.Flags().BoolVar(&toDefault, "default", false, "grant to the default group instead (target is ignored)")
	cmd.Flags().BoolVar(&addRef, "ref", false, "line is a group name to reference, not a permission line")
	return cmd
}

// resolvePathArgs splits the (save-file, target, line) triple out of args,
// falling back to cfg.RegistryFile when the optional leading path is
// omitted -- the two-arg form is ambiguous only in length, never in which
// argument is which, since save-file is always the one left out.
func resolvePathArgs(cfg config, args []string) (path, target, line string) {
	if len(args) == 3 {
		return args[0], args[1], args[2]
	}
	return cfg.RegistryFile, args[0], args[1]
}

func applyGrant(r *registry.Registry[string], target, line string, toGroup, toDefault, addRef bool) error {
	switch {
	case toDefault && addRef:
		r.AssignDefaultGroup(line)
		return nil
	case toDefault:
		return r.AssignDefaultPermission(line)
	case toGroup && addRef:
		r.AssignGroupToGroup(target, line)
		return nil
	case toGroup:
		return r.AssignGroupPermission(target, line)
	case addRef:
		r.AssignGroupToUser(target, line)
		return nil
	default:
		return r.AssignUserPermission(target, line)
	}
}
