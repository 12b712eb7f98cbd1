package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/loadsearch/loadsearch/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the configuration",
	}
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigAddFolderCmd())
	cmd.AddCommand(newConfigRemoveFolderCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(dataDir())
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newConfigAddFolderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-folder <path>",
		Short: "Add a folder to the index set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := dataDir()
			cfg, err := config.Load(dir)
			if err != nil {
				return err
			}

			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			for _, folder := range cfg.Folders {
				if folder == abs {
					fmt.Fprintln(cmd.OutOrStdout(), abs, "is already configured")
					return nil
				}
			}
			cfg.Folders = append(cfg.Folders, abs)
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.Save(dir); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Added", abs)
			return nil
		},
	}
}

func newConfigRemoveFolderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-folder <path>",
		Short: "Remove a folder from the index set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := dataDir()
			cfg, err := config.Load(dir)
			if err != nil {
				return err
			}

			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			kept := cfg.Folders[:0]
			removed := false
			for _, folder := range cfg.Folders {
				if folder == abs {
					removed = true
					continue
				}
				kept = append(kept, folder)
			}
			if !removed {
				return fmt.Errorf("%s is not configured", abs)
			}
			cfg.Folders = kept
			if err := cfg.Save(dir); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Removed", abs,
				"(documents under it disappear on the next indexing run)")
			return nil
		},
	}
}
