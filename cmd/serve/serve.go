// Package serve implements the HTTP server command exposing extraction
// as a service.
package serve

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/shogo/cmd/common"
	"github.com/jonesrussell/shogo/internal/api"
)

const defaultShutdownTimeout = 30 * time.Second

// Command returns the serve command for use in the root command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the extraction API over HTTP",
		Long: `Start the HTTP server exposing the extraction pipeline. The server
runs until interrupted with Ctrl+C.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	deps, err := cmdcommon.NewCommandDeps()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	pipeline, err := cmdcommon.BuildPipeline(deps)
	if err != nil {
		return err
	}

	server := api.NewServer(&deps.Config.Server, pipeline.Engine, pipeline.Fetcher, deps.Logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(cmd.Context())
	}()

	select {
	case serverErr := <-errChan:
		if serverErr != nil {
			deps.Logger.Error("Server error", "error", serverErr)
			return fmt.Errorf("server error: %w", serverErr)
		}
		return nil
	case <-cmd.Context().Done():
		deps.Logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if stopErr := server.Stop(shutdownCtx); stopErr != nil {
			return fmt.Errorf("failed to stop server: %w", stopErr)
		}
		return nil
	}
}
