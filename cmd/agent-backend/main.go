// Command agent-backend serves the query router over HTTP and offers one-shot
// CLI access to it.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	aiagent "github.com/ourstudio-se/ai-agent-backend"
	"github.com/ourstudio-se/ai-agent-backend/observe"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "agent-backend",
		Short:         "agent-backend - routes queries to math, weather and LLM tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "optional YAML config file; environment variables override it")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := aiagent.LoadConfig(configPath)
			if err != nil {
				return report(stderr, err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return report(stderr, serve(ctx, cfg, newLogger(stdout, cfg.Debug)))
		},
	}

	var jsonOutput bool
	queryCmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Route a single query and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := aiagent.LoadConfig(configPath)
			if err != nil {
				return report(stderr, err)
			}
			agent, err := aiagent.NewAgentFromConfig(cfg, nil, newLogger(stderr, cfg.Debug))
			if err != nil {
				return report(stderr, err)
			}
			return report(stderr, runQuery(cmd.Context(), agent, strings.Join(args, " "), jsonOutput, stdout))
		},
	}
	queryCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the full response envelope as JSON")

	classifyCmd := &cobra.Command{
		Use:   "classify <text>",
		Short: "Print which tool a query would be routed to, without running it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := aiagent.LoadConfig(configPath)
			if err != nil {
				return report(stderr, err)
			}
			agent, err := aiagent.NewAgentFromConfig(cfg, nil, newLogger(io.Discard, false))
			if err != nil {
				return report(stderr, err)
			}
			query := strings.Join(args, " ")
			if err := agent.Validate(query); err != nil {
				return report(stderr, err)
			}
			fmt.Fprintln(stdout, agent.Classify(query))
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the application name and version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := aiagent.LoadConfig(configPath)
			if err != nil {
				return report(stderr, err)
			}
			fmt.Fprintf(stdout, "%s %s\n", cfg.AppName, cfg.AppVersion)
			return nil
		},
	}

	rootCmd.AddCommand(serveCmd, queryCmd, classifyCmd, versionCmd)
	return rootCmd
}

// newLogger builds the JSON logger used by every command.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// report prints err to stderr so the user sees it even though cobra's own
// error printing is silenced.
func report(stderr io.Writer, err error) error {
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
	}
	return err
}

// runQuery routes one query and writes the result to w.
func runQuery(ctx context.Context, agent *aiagent.Agent, query string, asJSON bool, w io.Writer) error {
	resp, err := agent.Route(ctx, query)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	_, err = fmt.Fprintln(w, resp.Result)
	return err
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func serve(ctx context.Context, cfg aiagent.Config, logger *slog.Logger) error {
	telemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    cfg.AppName,
		ServiceVersion: cfg.AppVersion,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	agent, err := aiagent.NewAgentFromConfig(cfg, telemetry.Metrics, logger)
	if err != nil {
		return err
	}

	opts := aiagent.ServerOptionsFromConfig(cfg)
	opts.Metrics = telemetry.Metrics
	opts.MetricsHandler = telemetry.Handler
	opts.Logger = logger

	srv := aiagent.NewHTTPServer(cfg.HTTPAddr, aiagent.NewHandler(agent, opts), cfg.RequestTimeout)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting",
			"addr", cfg.HTTPAddr,
			"app", cfg.AppName,
			"version", cfg.AppVersion,
			"llm_provider", cfg.LLMProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received, stopping")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
