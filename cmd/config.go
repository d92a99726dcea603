package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/vannrr/fmark/internal/config"
)

func newInitConfigCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write a commented default config file",
		Long: `Write a config file with every option, its default and a short description.
The default location is ~/.config/fmark/config.yaml.`,
		Args: cobra.MaximumNArgs(1),
		// The target may not exist yet, so the config is not loaded.
		PersistentPreRunE: a.setupLog,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configTarget(a, args)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("checking config file: %w", err)
			}

			if err := config.WriteDefaultConfig(path); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func newSaveConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "save-config [path]",
		Short: "Store the effective settings in the config file",
		Long: `Store the settings in effect, after flags and BM_* environment variables are
applied, in the config file. Comments and unknown keys in an existing file
are kept.

Examples:
  fmark --menu fzf --rows 30 save-config`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configTarget(a, args)
			if err := config.Save(path, a.cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

// configTarget picks the config file a command writes: an argument, then
// --config, then the user config location.
func configTarget(a *app, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if a.cfgFile != "" {
		return a.cfgFile
	}
	return config.DefaultConfigPath()
}
