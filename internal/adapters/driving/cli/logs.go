package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

const logsTimeout = 10 * time.Second

var (
	logsServer string
	logsLimit  int
	logsJSON   bool
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent upload ingestion events",
	Long: `Fetches the most recent ingestion events from a running 'jarvis serve'.

The event log lives in the server process, so this command needs the
server to be running. The server address defaults to the one in settings.`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().StringVar(&logsServer, "server", "", "server base URL (default from settings)")
	logsCmd.Flags().IntVarP(&logsLimit, "limit", "n", 10, "maximum number of events")
	logsCmd.Flags().BoolVar(&logsJSON, "json", false, "output events as JSON")
	rootCmd.AddCommand(logsCmd)
}

type uploadLogs struct {
	TotalLogs  int                  `json:"total_logs"`
	RecentLogs []domain.IngestEvent `json:"recent_logs"`
}

func runLogs(cmd *cobra.Command, _ []string) error {
	base := logsServer
	if base == "" {
		base = serverURL(resolveServerAddr(""))
	}

	logs, err := fetchUploadLogs(cmd, strings.TrimRight(base, "/")+"/debug-upload-logs")
	if err != nil {
		return err
	}
	events := logs.RecentLogs
	if logsLimit > 0 && len(events) > logsLimit {
		events = events[len(events)-logsLimit:]
	}

	if logsJSON {
		return outputJSON(cmd, events)
	}

	if len(events) == 0 {
		cmd.Println("No ingestion events recorded.")
		return nil
	}
	cmd.Printf("Showing %d of %d events\n\n", len(events), logs.TotalLogs)
	for _, e := range events {
		cmd.Printf("%s  %-16s %-8s %s", e.Time.Format(time.DateTime), e.Step, e.Status, e.Filename)
		if e.Details != "" {
			cmd.Printf("  %s", e.Details)
		}
		cmd.Println()
	}
	return nil
}

func fetchUploadLogs(cmd *cobra.Command, url string) (*uploadLogs, error) {
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: logsTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot reach server (is 'jarvis serve' running?): %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %s", resp.Status)
	}

	var logs uploadLogs
	if err := json.NewDecoder(resp.Body).Decode(&logs); err != nil {
		return nil, fmt.Errorf("decoding logs: %w", err)
	}
	return &logs, nil
}

// serverURL turns a listen address into a URL a local client can reach.
func serverURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}
