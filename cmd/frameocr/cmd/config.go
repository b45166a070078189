package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/frameocr/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and create configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration as YAML",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := yaml.Marshal(GetConfig())
		if err != nil {
			return err
		}
		if used := GetConfigLoader().ConfigFileUsed(); used != "" {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# config file: %s\n", used)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [FILE]",
	Short: "Write a configuration file with default values",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := config.ConfigFileName + ".yaml"
		if len(args) == 1 {
			target = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(target); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", target)
		}

		out, err := yaml.Marshal(config.DefaultConfig())
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, out, 0o600); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", target)
		return nil
	},
}

var configPathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "List the configuration search paths",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, p := range config.GetConfigSearchPaths() {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "environment prefix: %s_\n", config.EnvPrefix)
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
	configCmd.AddCommand(configShowCmd, configInitCmd, configPathsCmd)
	rootCmd.AddCommand(configCmd)
}
