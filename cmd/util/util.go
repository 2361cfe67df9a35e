package util

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/tcpc/lib/client"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("tcpc")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds the flags of the command to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// SetupSocketFlags adds the socket tuning and logging flags to a command
func SetupSocketFlags(cmd *cobra.Command) {
	key := "tcp-nodelay"
	cmd.PersistentFlags().Bool(key, true, WrapString("Whether to disable Nagle's algorithm (TCP_NODELAY) on the socket"))

	key = "tcp-keepalive"
	cmd.PersistentFlags().Int(key, 0, WrapString("The TCP keepalive interval in seconds (0 = OS default)"))

	key = "tcp-linger"
	cmd.PersistentFlags().Int(key, -1, WrapString("The socket linger time in seconds (-1 = OS default)"))

	key = "read-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("The size of the socket read buffer (in KB, 0 = OS default)"))

	key = "write-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("The size of the socket write buffer (in KB, 0 = OS default)"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "info", WrapString("The level at which logs will be output (debug, info, warn, error)"))
}

// SetupClientFlags adds the endpoint and socket flags to a client command
func SetupClientFlags(cmd *cobra.Command) {
	key := "host"
	cmd.PersistentFlags().String(key, "localhost", WrapString("The host to connect to (hostname or literal address)"))

	key = "port"
	cmd.PersistentFlags().Int(key, 7777, WrapString("The port to connect to"))

	SetupSocketFlags(cmd)
}

// GetSocketConfig reads the socket configuration from viper
func GetSocketConfig() client.Config {
	return client.Config{
		TCPNoDelay:      viper.GetBool("tcp-nodelay"),
		TCPKeepAliveSec: viper.GetInt("tcp-keepalive"),
		TCPLingerSec:    viper.GetInt("tcp-linger"),
		ReadBufferSize:  viper.GetInt("read-buffer") * 1024,
		WriteBufferSize: viper.GetInt("write-buffer") * 1024,
	}
}

// GetEndpoint reads the host and port from viper
func GetEndpoint() (string, uint16, error) {
	host := viper.GetString("host")
	port := viper.GetInt("port")
	if port < 0 || port > 65535 {
		return "", 0, fmt.Errorf("port must be between 0 and 65535, got %d", port)
	}
	return host, uint16(port), nil
}
