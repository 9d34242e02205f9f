// Package cmd implements the command-line interface for shogo.
// It provides the root command and subcommands for extracting Japanese
// company names from websites.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonesrussell/shogo/cmd/enrich"
	"github.com/jonesrussell/shogo/cmd/extract"
	"github.com/jonesrussell/shogo/cmd/serve"
	"github.com/jonesrussell/shogo/internal/config"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// Debug enables debug mode for all commands
	Debug bool

	// rootCmd represents the root command for the shogo CLI.
	rootCmd = &cobra.Command{
		Use:   "shogo",
		Short: "Extract Japanese company names from websites",
		Long: `shogo extracts the legal entity name (商号) of Japanese companies from
their websites, together with contact and industry hints, using a
multi-phase heuristic pipeline with optional AI assistance.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command
func Execute() error {
	// Parse flags early so --config is available before Viper reads
	_ = rootCmd.ParseFlags(os.Args[1:])

	if err := config.InitializeViper(cfgFile); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}
	if Debug {
		viper.Set("app.debug", true)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

// init initializes the root command and its subcommands.
func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml, ./config/config.yaml, or ~/.shogo/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "enable debug mode")

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("shogo version %s\n", version)
		},
	})

	// Add subcommands
	rootCmd.AddCommand(extract.Command())
	rootCmd.AddCommand(enrich.Command())
	rootCmd.AddCommand(serve.Command())
}

// version is set at build time via -ldflags.
var version = "dev"
