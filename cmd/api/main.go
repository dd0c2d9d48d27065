package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set via ldflags during build.
var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "servibid",
	Short: "ServiBid - home services marketplace backend",
	Long: `ServiBid connects customers who post service requests with providers
who bid on them. Running without a subcommand starts the API server.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedServicesCmd)
	rootCmd.AddCommand(assignBadgesCmd)
}
