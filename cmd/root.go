package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "codeaudit",
	Short: "Smart contract audits from a local language model",
	Long: `codeaudit sends smart contract source to a locally hosted language
model and assembles its streamed analysis into a single report.

Run it as an HTTP service for the dashboard:
  codeaudit serve

Or audit a file straight from the terminal:
  codeaudit audit Token.sol --tier gold
  cat Token.sol | codeaudit audit -`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(doctorCmd)
}

// SetVersion sets the version reported by --version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the entry point called from main.
func Execute() error {
	return rootCmd.Execute()
}
