package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codedsnow/feedback-api/internal/policy"
)

var policyFile string

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect the API key policy file",
}

var policyCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a policy file and summarize its keys",
	Long: `Load the policy file exactly as the server would and report how many
keys are global and how many are scoped to guilds. Keys are never printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := policyFile
		if path == "" {
			path = os.Getenv("POLICY_FILE")
		}
		if path == "" {
			path = "policy.yaml"
		}
		table, err := policy.Load(path)
		if err != nil {
			return err
		}
		global, scoped := table.Summary()
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d keys (%d global, %d guild-scoped)\n", path, table.Len(), global, scoped)
		return nil
	},
}

func init() {
	policyCheckCmd.Flags().StringVarP(&policyFile, "file", "f", "", "policy file (default: $POLICY_FILE or policy.yaml)")
	policyCmd.AddCommand(policyCheckCmd)
}
