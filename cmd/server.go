package cmd

import (
	"wavecut/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the wavecut HTTP server",
	Long:  `Start the wavecut HTTP server: audio upload, marker editing and asynchronous cut/join processing.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
