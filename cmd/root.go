// Package cmd implements the command-line interface for flightwatch.
// It provides the root command and subcommands for running and
// scheduling flight-board scrapes.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonesrussell/flightwatch/cmd/schedule"
	"github.com/jonesrussell/flightwatch/cmd/scrape"
	"github.com/jonesrussell/flightwatch/cmd/search"
	"github.com/jonesrussell/flightwatch/internal/config"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// Debug enables debug logging for all commands.
	Debug bool

	// rootCmd represents the root command for the flightwatch CLI.
	rootCmd = &cobra.Command{
		Use:   "flightwatch",
		Short: "A flight-board scraper",
		Long:  `A scraper that tracks airport flight-board arrivals and departures.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Parse flags early to get the config path before Viper reads files
	_ = rootCmd.ParseFlags(os.Args[1:])

	if err := config.InitializeViper(cfgFile); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	if Debug {
		viper.Set("logging.level", "debug")
	}

	return rootCmd.ExecuteContext(context.Background())
}

// init initializes the root command and its subcommands.
func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml, ./config/config.yaml, or /etc/flightwatch/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("flightwatch version %s\n", "1.0.0")
		},
	})

	rootCmd.AddCommand(scrape.Command())
	rootCmd.AddCommand(schedule.Command())
	rootCmd.AddCommand(search.Command())
}
