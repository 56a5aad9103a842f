package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const serviceName = "userdir"

// rootCmd is the base command. Configuration comes from the environment (and
// .env), see pkg/config.
var rootCmd = &cobra.Command{
	Use:           serviceName,
	Short:         "User directory and follow service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, seedCmd)
}

// Execute runs the root command.  It should be invoked from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
