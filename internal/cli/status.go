package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/charliek/devcli/internal/commands"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configured services and any running instances",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
}

// statusReport is the --json document
type statusReport struct {
	Config   string                   `json:"config"`
	Root     string                   `json:"root"`
	LogRoot  string                   `json:"log_root"`
	Services []commands.ServiceStatus `json:"services"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	a.ctrl.Hydrate(cmd.Context())
	rows := commands.Statuses(a.workspace, a.ctrl.Running(), time.Now())
	out := cmd.OutOrStdout()

	if statusJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(statusReport{
			Config:   a.workspace.Path,
			Root:     a.workspace.Root,
			LogRoot:  a.logRoot,
			Services: rows,
		})
	}

	config := a.workspace.Path
	if config == "" {
		config = "(none found)"
	}
	fmt.Fprintf(out, "Config: %s\n", config)
	fmt.Fprintf(out, "Logs:   %s\n", a.logRoot)
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tSTATE\tPID\tSOURCE")
	fmt.Fprintln(w, "--\t-----\t-----\t---\t------")
	for _, r := range rows {
		pid := "-"
		if r.PID > 0 {
			pid = fmt.Sprint(r.PID)
		}
		source := r.Source
		if source == "" {
			source = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Label, r.State, pid, source)
	}
	return w.Flush()
}
