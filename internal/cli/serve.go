package cli

import "github.com/spf13/cobra"

// serveCmd is an explicit alias for the root behavior, for readability
// in process supervisors.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduled tracker daemon with the health server",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
