package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/harun/literelay/internal/config"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show relay server status",
	Long:  `Show the current status of a running literelay server by querying its health endpoint.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// healthReport mirrors the /healthz response body
type healthReport struct {
	Status   string  `json:"status"`
	Uptime   float64 `json:"uptime"`
	Sessions int     `json:"sessions"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(healthURL(cfg))
	if err != nil {
		fmt.Println("Status: stopped")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Status: unhealthy (HTTP %d)\n", resp.StatusCode)
		return nil
	}

	var report healthReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return fmt.Errorf("invalid health response: %w", err)
	}

	fmt.Printf("Status: running\n")
	fmt.Printf("Address: %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("Sessions: %d\n", report.Sessions)
	fmt.Printf("Uptime: %s\n", formatDuration(time.Duration(report.Uptime*float64(time.Second))))

	return nil
}

// healthURL builds the health endpoint URL for the configured server.
// A wildcard listen address is queried through loopback.
func healthURL(cfg *config.Config) string {
	host := cfg.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d/healthz", host, cfg.Server.Port)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
