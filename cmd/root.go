// Package cmd provides the command-line interface: the web server, an
// interactive terminal chat, one-shot questions and schema inspection.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	envFile    string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "cypher_chat",
	Short:         "Ask questions about a Neo4j knowledge graph in plain English",
	Long:          `cypher_chat translates questions into Cypher with a language model, runs them against Neo4j and answers from the results.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Schema and prompt configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Environment file loaded before reading the environment")
}
