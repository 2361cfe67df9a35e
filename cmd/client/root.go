package client

import (
	"github.com/ValentinKolb/tcpc/cmd/util"
	"github.com/ValentinKolb/tcpc/lib/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	tcpClient *client.Client

	// ClientCommands represents the client command group
	ClientCommands = &cobra.Command{
		Use:                "client",
		Short:              "Talk to a remote TCP endpoint",
		PersistentPreRunE:  setupClient,
		PersistentPostRunE: teardownClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add the endpoint and socket flags to the client command
	util.SetupClientFlags(ClientCommands)

	// Add subcommands
	ClientCommands.AddCommand(sendCmd)
	ClientCommands.AddCommand(recvCmd)
	ClientCommands.AddCommand(pingCmd)
	ClientCommands.AddCommand(perfCmd)
}

// setupClient connects the shared client to the configured endpoint
func setupClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	util.InitLoggers(viper.GetString("log-level"))

	host, port, err := util.GetEndpoint()
	if err != nil {
		return err
	}

	tcpClient = client.NewWithConfig(util.GetSocketConfig())
	return tcpClient.Connect(host, port)
}

// teardownClient releases the shared client's socket
func teardownClient(_ *cobra.Command, _ []string) error {
	if tcpClient != nil {
		return tcpClient.Close()
	}
	return nil
}
