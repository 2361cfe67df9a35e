package serve

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	cmdUtil "github.com/ValentinKolb/tcpc/cmd/util"
	"github.com/ValentinKolb/tcpc/lib/echo"
	"github.com/VictoriaMetrics/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = echo.Config{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start an echo/discard server",
		Long:    `Start a TCP echo or discard server. The configuration can be set via command line flags or environment variables. The format of the environment variables is TCPC_<flag> (e.g. TCPC_ENDPOINT=0.0.0.0:7777)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:7777", cmdUtil.WrapString("The address on which the server will listen"))

	key = "mode"
	ServeCmd.PersistentFlags().String(key, echo.ModeEcho, cmdUtil.WrapString("Server mode: echo (write received bytes back) or discard (drop them)"))

	key = "buffer-size"
	ServeCmd.PersistentFlags().Int(key, 64, cmdUtil.WrapString("The per-connection read buffer size (in KB)"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Optional address on which to expose Prometheus metrics (e.g. 127.0.0.1:9100)"))

	// socket tuning and log level flags shared with the client commands
	cmdUtil.SetupSocketFlags(ServeCmd)
}

// processConfig reads the configuration from the command line flags and environment variables
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	cmdUtil.InitLoggers(viper.GetString("log-level"))

	serveCmdConfig = echo.Config{
		Endpoint:   viper.GetString("endpoint"),
		Mode:       viper.GetString("mode"),
		BufferSize: viper.GetInt("buffer-size") * 1024,
		Socket:     cmdUtil.GetSocketConfig(),
	}

	return nil
}

func run(_ *cobra.Command, _ []string) error {
	srv := echo.NewServer(serveCmdConfig)
	if err := srv.Start(); err != nil {
		return err
	}

	// Optionally expose Prometheus metrics over HTTP
	if metricsEndpoint := viper.GetString("metrics-endpoint"); metricsEndpoint != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
			metrics.WritePrometheus(w, true)
		})
		go func() {
			if err := http.ListenAndServe(metricsEndpoint, mux); err != nil {
				echo.Logger.Errorf("metrics endpoint failed: %v", err)
			}
		}()
		echo.Logger.Infof("metrics exposed on http://%s/metrics", metricsEndpoint)
	}

	// Block until interrupted, then drain connections
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	echo.Logger.Infof("shutting down")
	return srv.Close()
}
