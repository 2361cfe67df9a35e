package client

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ValentinKolb/tcpc/cmd/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	sendCmd = &cobra.Command{
		Use:   "send [data...]",
		Short: "Send raw bytes to the endpoint",
		Long:  "Send the given arguments (joined with spaces) to the endpoint. If no arguments are given, stdin is sent instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			if len(args) > 0 {
				data = []byte(strings.Join(args, " "))
			} else {
				var err error
				if data, err = io.ReadAll(os.Stdin); err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
			}

			n, err := tcpClient.Send(data)
			if err != nil {
				return err
			}
			fmt.Printf("sent %d bytes\n", n)

			if viper.GetBool("await-reply") {
				resp, err := tcpClient.Receive(viper.GetInt("max-bytes"))
				if err != nil {
					return err
				}
				fmt.Printf("received %d bytes: %s\n", len(resp), resp)
			}
			return nil
		},
	}

	recvCmd = &cobra.Command{
		Use:   "recv",
		Short: "Receive bytes from the endpoint",
		Long:  "Block for a single read of up to max-bytes and print the result. An empty result means the peer closed the connection.",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := tcpClient.Receive(viper.GetInt("max-bytes"))
			if err != nil {
				return err
			}
			if len(resp) == 0 && !tcpClient.IsConnected() {
				fmt.Println("peer closed the connection")
				return nil
			}
			fmt.Printf("received %d bytes: %s\n", len(resp), resp)
			return nil
		},
	}

	pingCmd = &cobra.Command{
		Use:   "ping",
		Short: "Round-trip a probe payload and report the latency",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := viper.GetString("payload")

			start := time.Now()
			if _, err := tcpClient.SendString(payload); err != nil {
				return err
			}
			resp, err := tcpClient.Receive(viper.GetInt("max-bytes"))
			if err != nil {
				return err
			}
			rtt := time.Since(start)

			if len(resp) == 0 {
				return fmt.Errorf("peer closed the connection before replying")
			}
			fmt.Printf("reply from %s: %d bytes in %s\n", viper.GetString("host"), len(resp), rtt)
			return nil
		},
	}
)

func init() {
	key := "await-reply"
	sendCmd.Flags().Bool(key, false, util.WrapString("Whether to wait for a reply after sending"))

	key = "max-bytes"
	ClientCommands.PersistentFlags().Int(key, 4096, util.WrapString("Maximum number of bytes to read in a single receive"))

	key = "payload"
	pingCmd.Flags().String(key, "PING", util.WrapString("The probe payload to round-trip"))
}
