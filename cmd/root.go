package cmd

import (
	"fmt"
	"log"
	"os"

	"Bt1Cut/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "1cut_server",
	Short: "1Cut is a personal video cutting studio.",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting 1Cut server...")
		// server.Start handles its own port and logging for startup.
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
