// Package cmd is for command line interactions with the bridging engine
package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/rzzju/Unicycler/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	// settingsFile is an optional YAML/JSON/TOML file of settings
	settingsFile string

	// verbose switches to a human readable debug logger
	verbose bool

	// logger is replaced once the flags are parsed
	logger = zap.NewNop()
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use: "unicycler",
	Short: `Bridge a short read assembly graph with long reads.
Repeats and branches are resolved into fewer, longer segments`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	err := RootCmd.ExecuteContext(context.Background())
	logger.Sync()
	if err != nil {
		log.Fatalf("%v", err)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "settings file (yaml, json or toml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

// setup reads the settings file and builds the logger
func setup(cmd *cobra.Command, args []string) error {
	if settingsFile != "" {
		viper.SetConfigFile(settingsFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read settings file %s: %w", settingsFile, err)
		}
	}

	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	if settingsFile != "" {
		logger.Debug("read settings", zap.String("file", viper.ConfigFileUsed()))
	}
	return nil
}

// bind binds a command's flag to a settings key
func bind(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		log.Fatalf("failed to bind --%s to %s: %v", flag, key, err)
	}
}
