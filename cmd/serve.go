package cmd

import (
	"cypher_chat/internal/web"
	"cypher_chat/src/logger"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web chat interface",
	Long:  `Serves the chat page and the JSON API on SERVER_LISTEN_ADDR until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		app, err := loadApplication(ctx, cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		defer app.Close()

		orchestrator, err := app.newOrchestrator(ctx)
		if err != nil {
			return err
		}

		server, err := web.NewServer(app.config.ServerConfig, orchestrator, app.healthCheck())
		if err != nil {
			return err
		}

		errChan := make(chan error, 1)
		go func() {
			if err := server.Run(); err != nil {
				errChan <- fmt.Errorf("web server error: %w", err)
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errChan:
			return err
		case sig := <-sigChan:
			logger.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")
			return server.Shutdown()
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
