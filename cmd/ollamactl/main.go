package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	serviceFlags := &ServiceFlags{}
	statusFlags := &StatusFlags{}
	waitFlags := &WaitFlags{}
	serveFlags := &ServeFlags{}
	chatFlags := &ChatFlags{}

	cmd := command{global: globalFlags}

	root := createRootCommand(globalFlags)
	addServiceFlags(root, serviceFlags)

	root.AddCommand(
		createStartCommand(cmd, serviceFlags),
		createStopCommand(cmd, serviceFlags),
		createStatusCommand(cmd, serviceFlags, statusFlags),
		createWaitCommand(cmd, serviceFlags, waitFlags),
		createServeCommand(cmd, serviceFlags, serveFlags),
		createChatCommand(cmd, serviceFlags, chatFlags),
	)
	return root
}

func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "ollamactl",
		Short: "Lifecycle manager for a local inference server",
		Long: `Ollamactl supervises a local inference server (such as Ollama):
it starts the server when it is down, confirms liveness over HTTP
health checks, stops it cleanly, and offers a chat REPL with
lifecycle tools.

Examples:
  ollamactl start
  ollamactl status --watch
  ollamactl serve --listen 127.0.0.1:8800
  ollamactl chat --model llama3.2`,
	}
	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to TOML config file (optional)")
	root.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.LogFile, "log-file", "", "write logs to this file instead of stderr")
	return root
}

// addServiceFlags attaches shared service overrides as persistent flags
// so every subcommand can reconfigure the supervised server.
func addServiceFlags(root *cobra.Command, f *ServiceFlags) {
	pf := root.PersistentFlags()
	pf.StringVar(&f.Command, "service-command", "", "command that launches the server (default \"ollama serve\")")
	pf.StringVar(&f.ProcessName, "process-name", "", "executable name to look up and terminate")
	pf.IntVar(&f.Port, "port", 0, "port the server listens on (default 11434)")
	pf.DurationVar(&f.Timeout, "health-timeout", 0, "health-wait wall-clock budget (default 30s)")
	pf.DurationVar(&f.Interval, "health-interval", 0, "delay between health probes (default 1s)")
	pf.IntVar(&f.MaxAttempts, "health-attempts", 0, "probe attempt budget (default timeout/interval)")
}

func createStartCommand(c command, svc *ServiceFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the inference server and wait for it to become healthy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.Start(cmd.Context(), *svc)
		},
	}
}

func createStopCommand(c command, svc *ServiceFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the inference server and confirm it is down",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.Stop(cmd.Context(), *svc)
		},
	}
}

func createStatusCommand(c command, svc *ServiceFlags, f *StatusFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report the server's live status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.Status(cmd.Context(), *svc, *f)
		},
	}
	cmd.Flags().BoolVar(&f.Watch, "watch", false, "refresh continuously")
	cmd.Flags().DurationVar(&f.Interval, "interval", 2*time.Second, "watch refresh interval")
	cmd.Flags().BoolVar(&f.History, "history", false, "print recent state transitions from the store")
	cmd.Flags().IntVar(&f.Limit, "limit", 20, "number of history entries")
	return cmd
}

func createWaitCommand(c command, svc *ServiceFlags, f *WaitFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Block until the server answers health checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.Wait(cmd.Context(), *svc, *f)
		},
	}
	cmd.Flags().DurationVar(&f.Timeout, "timeout", 0, "override the health-wait budget")
	return cmd
}

func createServeCommand(c command, svc *ServiceFlags, f *ServeFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP API (start/stop/status/history/metrics)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.Serve(cmd.Context(), *svc, *f)
		},
	}
	cmd.Flags().StringVar(&f.Listen, "listen", "", "listen address (default from config, 127.0.0.1:8800)")
	cmd.Flags().StringVar(&f.BasePath, "base-path", "", "path prefix for the API")
	return cmd
}

func createChatCommand(c command, svc *ServiceFlags, f *ChatFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with a model, auto-starting the server when needed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.Chat(cmd.Context(), *svc, *f)
		},
	}
	cmd.Flags().StringVar(&f.Model, "model", "", "model to chat with (default from config)")
	cmd.Flags().StringVar(&f.BaseURL, "base-url", "", "inference server URL (default from config)")
	cmd.Flags().StringVar(&f.Prompt, "prompt", "", "run a single prompt and exit")
	cmd.Flags().StringVar(&f.System, "system", "", "override the system prompt")
	cmd.Flags().BoolVar(&f.NoTools, "no-tools", false, "disable lifecycle tools")
	return cmd
}
