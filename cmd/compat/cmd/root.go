package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile      string
	outputFormat string
	hostVersion  string
	verbose      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "compat",
	Short: "Inspect and exercise the version compatibility layer",
	Long: `compat resolves capability breakpoint tables for host releases and runs the
compatibility layer against an in-memory host.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.compat/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: table, json or yaml")
	rootCmd.PersistentFlags().StringVar(&hostVersion, "version", "", "host release, for example 1.20.4-R0.1-SNAPSHOT")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".compat"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("compat")
	viper.AutomaticEnv()

	viper.SetDefault("output", "table")
	viper.SetDefault("version", "1.21.5")
	viper.SetDefault("addr", ":9120")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		}
	}

	if outputFormat == "" {
		outputFormat = viper.GetString("output")
	}
	if hostVersion == "" {
		hostVersion = viper.GetString("version")
	}
}

// output returns the selected output format.
func output() string {
	return strings.ToLower(outputFormat)
}

// newLogger returns the logger handed to the compatibility layer.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
