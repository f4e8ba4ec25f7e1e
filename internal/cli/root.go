// Package cli implements the dev command: the interactive shell and the
// one-shot start, stop and status verbs.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is set during build
var Version = "dev"

// Global flags
var (
	configPath string
	debug      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dev",
	Short: "A local development service supervisor",
	Long: `dev starts, monitors and stops the services of a workspace defined in
dev-cli.yaml. It supports:
  - Starting services and groups in the foreground or from an interactive shell
  - Adopting services that are already running, including containers
  - Per-service daily JSON log files with retention
  - Split-pane live log views with independent scrollback`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          runShell,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dev version %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Workspace config file (default: search upward for dev-cli.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug diagnostics")

	rootCmd.SetVersionTemplate("dev version {{.Version}}\n")

	rootCmd.AddCommand(versionCmd, shellCmd, startCmd, stopCmd, statusCmd)
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return exitCode(rootCmd.ExecuteContext(ctx), stderr)
}
