// Command rupset builds a multi-fault rupture set from a fault catalogue.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "rupset",
		Short: "Enumerate plausible multi-fault earthquake ruptures",
		Long: `rupset subdivides a fault catalogue into subsections, connects nearby
faults, and grows every rupture that passes the plausibility filters.`,
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")

	root.AddCommand(buildCmd())
	root.AddCommand(configCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(version)
		},
	}
}
