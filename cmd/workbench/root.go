// Root command for the workbench CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/workbench/internal/paths"
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagWorkspace string
	flagLogLevel  string
	flagJSON      bool
)

// settings holds config.yaml, loaded by PersistentPreRunE so all
// subcommands can use it.
var (
	settings  *viper.Viper
	configDir string
)

var rootCmd = &cobra.Command{
	Use:           "workbench",
	Short:         "Workbench manages annotation workspaces from the command line",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir, err := paths.ResolveConfigDir(flagConfigDir)
		if err != nil {
			return sysErr(err)
		}
		v, err := loadConfig(dir)
		if err != nil {
			return sysErr(err)
		}
		configDir, settings = dir, v
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: platform data dir)")
	rootCmd.PersistentFlags().StringVarP(&flagWorkspace, "workspace", "w", "", "workspace to operate on (default: workspace key of config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (default: log_level key of config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(wsCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(refsCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(unlinkCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(convertCmd)
}

// workspaceName returns the workspace selected by flag, then config.yaml.
func workspaceName() string {
	if flagWorkspace != "" {
		return flagWorkspace
	}
	return settings.GetString(cfgKeyWorkspace)
}

// logLevel returns the log level selected by flag, then config.yaml.
func logLevel() string {
	if flagLogLevel != "" {
		return flagLogLevel
	}
	return settings.GetString(cfgKeyLogLevel)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the workbench version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "workbench", version)
	},
}
