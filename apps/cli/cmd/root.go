package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/reqflow/packages/session"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var configPath string

// registry holds the named clients the verb commands run through, so
// cookies and applied auth persist across calls within one process.
var registry = session.NewRegistry()

var rootCmd = &cobra.Command{
	Use:   "reqflow",
	Short: "Declarative HTTP requests for workflow pipelines.",
	Long: `reqflow issues outbound HTTP requests from declarative descriptions:
method, URL, headers, auth, and body become a reliable network call with
bounded retry, persistent sessions, multipart form assembly, and JSON
field extraction.`,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	err := rootCmd.Execute()
	registry.CloseAll()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a reqflow config file")

	for _, method := range verbMethods {
		rootCmd.AddCommand(newVerbCmd(method))
	}
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(versionCmd)
}
