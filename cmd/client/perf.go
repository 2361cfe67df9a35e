package client

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ValentinKolb/tcpc/cmd/util"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Echo round-trip benchmark against the endpoint",
		Long:    "Measure round-trip latency and throughput by sending payloads to an echo endpoint (e.g. tcpc serve) and reading them back.",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}

	perfIterations  = 1000
	perfPayloadSize = 64
	perfCSVPath     = ""
)

func init() {
	// add flags
	key := "iterations"
	perfCmd.Flags().Int(key, 1000, util.WrapString("Number of round trips to perform"))
	key = "payload-size"
	perfCmd.Flags().Int(key, 64, util.WrapString("Size of each payload in bytes"))
	key = "csv"
	perfCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfIterations = viper.GetInt("iterations")
	perfPayloadSize = viper.GetInt("payload-size")
	perfCSVPath = viper.GetString("csv")

	if perfIterations <= 0 {
		return fmt.Errorf("iterations must be positive, got %d", perfIterations)
	}
	if perfPayloadSize <= 0 {
		return fmt.Errorf("payload-size must be positive, got %d", perfPayloadSize)
	}
	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {
	fmt.Println("Echo round-trip benchmark")
	fmt.Printf("Iterations: %d, Payload: %d bytes\n\n", perfIterations, perfPayloadSize)

	payload := bytes.Repeat([]byte("x"), perfPayloadSize)
	latency := gometrics.NewHistogram(gometrics.NewExpDecaySample(1028, 0.015))

	start := time.Now()
	for i := 0; i < perfIterations; i++ {
		iterStart := time.Now()

		if _, err := tcpClient.Send(payload); err != nil {
			return fmt.Errorf("round trip %d: %w", i, err)
		}

		// The echo peer may split the reply across several reads
		received := 0
		for received < perfPayloadSize {
			resp, err := tcpClient.Receive(perfPayloadSize - received)
			if err != nil {
				return fmt.Errorf("round trip %d: %w", i, err)
			}
			if len(resp) == 0 {
				return fmt.Errorf("round trip %d: peer closed the connection", i)
			}
			received += len(resp)
		}

		latency.Update(time.Since(iterStart).Microseconds())
	}
	elapsed := time.Since(start)

	// Aggregate results
	ps := latency.Percentiles([]float64{0.5, 0.95, 0.99})
	throughput := float64(perfIterations*perfPayloadSize*2) / elapsed.Seconds() / (1024 * 1024)
	rps := float64(perfIterations) / elapsed.Seconds()

	fmt.Printf("%-18s: %s\n", "Total time", elapsed.Round(time.Millisecond))
	fmt.Printf("%-18s: %.0f\n", "Round trips/sec", rps)
	fmt.Printf("%-18s: %.2f MB/s\n", "Throughput", throughput)
	fmt.Printf("%-18s: %.0f µs\n", "Latency mean", latency.Mean())
	fmt.Printf("%-18s: %.0f µs\n", "Latency p50", ps[0])
	fmt.Printf("%-18s: %.0f µs\n", "Latency p95", ps[1])
	fmt.Printf("%-18s: %.0f µs\n", "Latency p99", ps[2])
	fmt.Printf("%-18s: %d µs\n", "Latency max", latency.Max())

	// Optionally save the results as CSV
	if perfCSVPath != "" {
		if err := savePerfCSV(latency, ps, rps, throughput); err != nil {
			return fmt.Errorf("failed to save CSV: %w", err)
		}
		fmt.Printf("\nresults saved to %s\n", perfCSVPath)
	}

	return nil
}

// savePerfCSV writes the benchmark results to the configured CSV path
func savePerfCSV(latency gometrics.Histogram, ps []float64, rps, throughput float64) error {
	f, err := os.Create(perfCSVPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	rows := [][]string{
		{"metric", "value"},
		{"iterations", strconv.Itoa(perfIterations)},
		{"payload_bytes", strconv.Itoa(perfPayloadSize)},
		{"round_trips_per_sec", fmt.Sprintf("%.2f", rps)},
		{"throughput_mb_per_sec", fmt.Sprintf("%.4f", throughput)},
		{"latency_mean_us", fmt.Sprintf("%.2f", latency.Mean())},
		{"latency_p50_us", fmt.Sprintf("%.2f", ps[0])},
		{"latency_p95_us", fmt.Sprintf("%.2f", ps[1])},
		{"latency_p99_us", fmt.Sprintf("%.2f", ps[2])},
		{"latency_max_us", strconv.FormatInt(latency.Max(), 10)},
	}

	return w.WriteAll(rows)
}
