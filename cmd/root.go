package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/tcpc/cmd/client"
	"github.com/ValentinKolb/tcpc/cmd/serve"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "tcpc",
		Short: "minimal blocking TCP client",
		Long: fmt.Sprintf(`tcpc (v%s)

A minimal cross-platform TCP client library and command line tool:
blocking connect/send/receive on raw bytes, plus a small echo server
for testing and benchmarking.`, Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of tcpc",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tcpc v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(client.ClientCommands)
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
