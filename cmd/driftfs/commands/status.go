package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/driftfs/driftfs/internal/bytesize"
	"github.com/driftfs/driftfs/internal/cli/health"
	"github.com/driftfs/driftfs/internal/cli/output"
	"github.com/driftfs/driftfs/internal/cli/timeutil"
)

var (
	statusOutput  string
	statusPidFile string
	statusAPIPort int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Display the current status of the driftfs name server.

Combines the PID file with the server's health endpoints: process
state, uptime, metadata store health and a storage node summary.

Examples:
  # Table summary
  driftfs status

  # Against a non-default API port
  driftfs status --api-port 9080

  # Machine readable
  driftfs status -o json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusPidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/driftfs/driftfs.pid)")
	statusCmd.Flags().IntVar(&statusAPIPort, "api-port", 8000, "Port the API listens on")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format: table, json or yaml")
}

// ServerStatus aggregates what the status command learns about the
// server: process state from the PID file plus liveness, readiness
// and node information from the HTTP API.
type ServerStatus struct {
	Running        bool   `json:"running" yaml:"running"`
	Healthy        bool   `json:"healthy" yaml:"healthy"`
	PID            int    `json:"pid,omitempty" yaml:"pid,omitempty"`
	StartedAt      string `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Uptime         string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	MetadataStore  string `json:"metadata_store,omitempty" yaml:"metadata_store,omitempty"`
	LiveNodes      int    `json:"live_nodes" yaml:"live_nodes"`
	KnownNodes     int    `json:"known_nodes" yaml:"known_nodes"`
	AvailableSpace uint64 `json:"available_space" yaml:"available_space"`
	Message        string `json:"message" yaml:"message"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	status := collectStatus()

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, status)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, status)
	default:
		printStatusTable(status)
		return nil
	}
}

// collectStatus gathers process and API state. Every probe is best
// effort: a server that answers no probe is reported as stopped.
func collectStatus() ServerStatus {
	status := ServerStatus{Message: "Server is not running"}

	if pid, alive := readServerPID(statusPidFile); alive {
		status.Running = true
		status.PID = pid
		status.Message = "The process is alive but the API answers no probes"
	}

	client := &http.Client{Timeout: 2 * time.Second}
	if !probeLiveness(client, &status) {
		return status
	}
	probeReadiness(client, &status)
	probeNodes(client, &status)
	return status
}

// readServerPID reads the given PID file (or the default location when
// path is empty) and reports whether that process is still alive. On
// Unix FindProcess always succeeds, so liveness needs signal 0.
func readServerPID(path string) (int, bool) {
	if path == "" {
		path = GetDefaultPidFile()
	}
	pid, err := readPidFile(path)
	if err != nil {
		return 0, false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return 0, false
	}
	return pid, process.Signal(syscall.Signal(0)) == nil
}

func probeLiveness(client *http.Client, status *ServerStatus) bool {
	var resp health.Response
	if err := getHealthJSON(client, "/health", &resp); err != nil {
		return false
	}
	status.Running = true
	status.StartedAt = resp.Data.StartedAt
	status.Uptime = resp.Data.Uptime
	status.Healthy = resp.Status == "healthy"
	if status.Healthy {
		status.Message = "All checks passed"
	} else {
		status.Message = fmt.Sprintf("Server is up but unhealthy: %s", resp.Error)
	}
	return true
}

func probeReadiness(client *http.Client, status *ServerStatus) {
	var resp health.ReadyResponse
	if err := getHealthJSON(client, "/health/ready", &resp); err != nil {
		status.MetadataStore = "unknown"
		return
	}
	if resp.Status == "healthy" {
		status.MetadataStore = resp.Data.MetadataStore
		return
	}
	status.Healthy = false
	status.MetadataStore = "unhealthy"
	status.Message = fmt.Sprintf("Server is running but not ready: %s", resp.Error)
}

func probeNodes(client *http.Client, status *ServerStatus) {
	var resp health.NodesResponse
	if err := getHealthJSON(client, "/health/nodes", &resp); err != nil {
		return
	}
	status.KnownNodes = resp.Data.Count
	status.AvailableSpace = resp.Data.AvailableSpace
	for _, node := range resp.Data.Nodes {
		if node.Live {
			status.LiveNodes++
		}
	}
}

// getHealthJSON fetches a health endpoint and decodes its JSON body.
// Non-2xx responses carry the same envelope, so the body is decoded
// regardless of status code.
func getHealthJSON(client *http.Client, path string, out any) error {
	resp, err := client.Get(fmt.Sprintf("http://localhost:%d%s", statusAPIPort, path))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	return json.NewDecoder(resp.Body).Decode(out)
}

func printStatusTable(status ServerStatus) {
	row := func(label, format string, args ...any) {
		fmt.Printf("  %-9s %s\n", label, fmt.Sprintf(format, args...))
	}

	fmt.Println("driftfs name server")
	fmt.Println()

	switch {
	case !status.Running:
		row("status:", "\033[31m○ stopped\033[0m")
	case status.Healthy:
		row("status:", "\033[32m● running\033[0m")
	default:
		row("status:", "\033[33m● running (unhealthy)\033[0m")
	}
	if status.PID != 0 {
		row("pid:", "%d", status.PID)
	}
	if status.StartedAt != "" {
		row("started:", "%s", timeutil.FormatTime(status.StartedAt))
	}
	if status.Uptime != "" {
		row("uptime:", "%s", timeutil.FormatUptime(status.Uptime))
	}
	if status.MetadataStore != "" {
		row("store:", "%s", status.MetadataStore)
	}
	if status.KnownNodes > 0 {
		row("nodes:", "%d live of %d, %s free",
			status.LiveNodes, status.KnownNodes, bytesize.ByteSize(status.AvailableSpace))
	}

	fmt.Println()
	fmt.Println("  " + status.Message)
}
