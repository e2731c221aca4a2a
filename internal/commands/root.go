// Package commands implements the rideboard command line.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rideboard",
	Short: "Ride-sharing bulletin board",
	Long: `rideboard serves a ride-sharing bulletin board: drivers post ride offers,
riders reserve seats or join the waitlist, and departed rides expire.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
