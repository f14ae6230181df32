package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version подставляется при сборке через -ldflags "-X ..."
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "rhythmduel",
	Short: "RhythmDuel is a server for synchronized 1v1 rhythm duels.",
	Run: func(cmd *cobra.Command, args []string) {
		runApp()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the server version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
