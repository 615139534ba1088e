package commands

import (
	"github.com/spf13/cobra"
)

var rootCmd *cobra.Command

func Execute(version string) error {
	rootCmd = &cobra.Command{
		Use:   "serene",
		Short: "Serene - colon-template routing and dispatch for JSON APIs",
		Long: `Serene is a small web service core built around colon-style path
templates. Routes declare their argument contract up front; requests are
matched, coerced and dispatched against the frozen route table.`,
		Version: version,
	}

	rootCmd.AddCommand(newServerCmd())

	return rootCmd.Execute()
}
