// Package main provides feedbackd, the HTTP service behind the CodedSnow
// Discord bot's suggestions and reports.
//
// @title                      CodedSnow Feedback API
// @version                    1.0
// @description                Guild-scoped suggestions, reports and votes. All outcomes are answered with HTTP 200 and a {success,error,code} envelope.
// @BasePath                   /
// @securityDefinitions.apikey ApiKeyAuth
// @in                         header
// @name                       Api-Key
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codedsnow/feedback-api/internal/config"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

// envFile is set by the --env-file flag.
var envFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "feedbackd",
	Short: "feedbackd serves the CodedSnow feedback API",
	Long: `feedbackd persists guild-scoped suggestions and reports for the
CodedSnow Discord bot and tallies votes on suggestions. Configuration is read
from the environment (optionally seeded from a .env file); API keys come from
the policy file named by POLICY_FILE.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile == "" {
			return config.LoadDotEnv()
		}
		return config.LoadDotEnv(envFile)
	},
	// Running without a subcommand starts the server.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default: .env when present)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(policyCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "feedbackd %s\n", version)
	},
}
