package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the reqflow version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("reqflow %s (built %s)\n", version, buildTime)
	},
}
