package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/indexbench/internal/config"
	"github.com/Aman-CERP/indexbench/internal/output"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize configuration",
	}

	cmd.AddCommand(newConfigShowCmd(a))
	cmd.AddCommand(newConfigInitCmd())

	return cmd
}

// newConfigShowCmd prints the effective configuration after file and env overrides.
func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  noPositionalArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			defer a.stopOnError(cmd, &err)

			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// newConfigInitCmd writes a default .indexbench.yaml in the working directory.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default " + config.FileName,
		Long: `Write a default ` + config.FileName + ` in the current directory.

An existing file is kept unless --force is given; with --force it is backed
up to ` + config.FileName + config.BackupSuffix + `.<timestamp> first.`,
		Args: noPositionalArgs,
		// The file being replaced may be the one that fails to load
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := filepath.Join(".", config.FileName)
			status := output.New(cmd.ErrOrStderr())

			if _, err := os.Stat(path); err == nil {
				if !force {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
				backup, err := config.Backup(path)
				if err != nil {
					return err
				}
				status.Status("📦", "Backed up existing config to "+backup)
			}

			if err := config.NewConfig().WriteYAML(path); err != nil {
				return err
			}
			status.Successf("Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config after backing it up")

	return cmd
}
