package cmd

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var schemaPing bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the graph schema given to the language model",
	Long: `Prints the schema text from config.yaml, or the one read from Neo4j when
GRAPH_SCHEMA_SOURCE=introspect. With --ping the database connection is checked first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		app, err := loadApplication(ctx, cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		defer app.Close()

		if schemaPing {
			start := time.Now()
			if err := app.executor.Ping(ctx); err != nil {
				return err
			}
			pterm.Success.Printf("Connected to %s in %s\n", app.config.GraphConfig.URI, time.Since(start).Round(time.Millisecond))
		}

		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Graph Schema")).
			WithPadding(1).
			Println(app.schema.Schema())
		return nil
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaPing, "ping", false, "Check the Neo4j connection before printing")
	rootCmd.AddCommand(schemaCmd)
}
