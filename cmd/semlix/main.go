// Package main provides the semlix binary entry point.
// Semlix analyzes Elixir projects into an RDF knowledge graph: it parses
// sources, extracts modules, functions, protocols, and supervision trees,
// emits triples with deterministic IRIs, and validates the graph against
// shape manifests.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/c360studio/semstreams/natsclient"
	"github.com/spf13/cobra"

	"github.com/c360studio/semlix/analyzer"
	"github.com/c360studio/semlix/config"
	"github.com/c360studio/semlix/graph"
	"github.com/c360studio/semlix/hosturl"
	"github.com/c360studio/semlix/projectsrc"
	"github.com/c360studio/semlix/rdf"
	"github.com/c360studio/semlix/shacl"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semlix"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "semlix",
		Short: "Elixir code knowledge graph analyzer",
		Long: `Semlix turns an Elixir project into an RDF knowledge graph.

It provides:
- Source parsing and structural extraction (modules, functions,
  protocols, macros, supervision trees)
- Deterministic entity IRIs and triple emission
- Shape validation of the resulting graph
- Optional publishing to a NATS knowledge graph`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(analyzeCmd(flags))
	cmd.AddCommand(validateCmd(flags))
	cmd.AddCommand(watchCmd(flags))
	cmd.AddCommand(publishCmd(flags))
	cmd.AddCommand(linkCmd(flags))

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// setup configures logging and loads the layered configuration. An explicit
// path argument overrides the configured project root.
func setup(flags *rootFlags, pathArg string) (*config.Config, error) {
	level := slog.LevelInfo
	switch strings.ToLower(flags.logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.NewLoader(logger).Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	if pathArg != "" {
		cfg.Project.Path = pathArg
	}
	if cfg.Project.Path == "" {
		cfg.Project.Path = "."
	}

	absPath, err := filepath.Abs(cfg.Project.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve project path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat project path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", absPath)
	}
	cfg.Project.Path = absPath

	return cfg, nil
}

// runAnalysis discovers the project's sources and runs the full pipeline.
func runAnalysis(ctx context.Context, cfg *config.Config) (analyzer.RunResult, error) {
	files, err := projectsrc.Discover(cfg.Project.Path, cfg.Project.Patterns)
	if err != nil {
		return analyzer.RunResult{}, fmt.Errorf("discover sources: %w", err)
	}
	if len(files) == 0 {
		return analyzer.RunResult{}, fmt.Errorf("no Elixir sources found under %s", cfg.Project.Path)
	}

	sources := make([]analyzer.SourceFile, 0, len(files))
	for _, f := range files {
		content, err := projectsrc.ReadFile(cfg.Project.Path, f.Path)
		if err != nil {
			return analyzer.RunResult{}, err
		}
		sources = append(sources, analyzer.SourceFile{Path: f.Path, Content: content})
	}

	a := analyzer.New(analyzer.Options{
		Base:            cfg.Project.Base,
		ContinueOnError: cfg.Analyzer.ContinueOnError,
		TrackColumns:    cfg.Analyzer.TrackColumns,
	})
	return a.AnalyzeFiles(ctx, sources)
}

func analyzeCmd(flags *rootFlags) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Analyze a project and print the extracted graph",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(flags, argOrEmpty(args))
			if err != nil {
				return err
			}

			run, err := runAnalysis(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			if jsonOut {
				data, err := rdf.MarshalTriples(run.Graph.Triples())
				if err != nil {
					return fmt.Errorf("marshal triples: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Println(renderRunSummary(&run))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the full triple set as JSON")
	return cmd
}

func validateCmd(flags *rootFlags) *cobra.Command {
	var (
		jsonOut    bool
		shapePaths []string
	)

	cmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Analyze a project and validate the graph against shape manifests",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(flags, argOrEmpty(args))
			if err != nil {
				return err
			}

			paths := shapePaths
			if len(paths) == 0 {
				paths = cfg.Shapes.Paths
			}
			if len(paths) == 0 {
				return fmt.Errorf("no shape manifests: set shapes.paths in %s or pass --shapes", config.ProjectConfigFile)
			}

			var shapes []shacl.NodeShape
			for _, p := range paths {
				loaded, err := shacl.LoadFile(p)
				if err != nil {
					return fmt.Errorf("load shapes %s: %w", p, err)
				}
				shapes = append(shapes, loaded...)
			}

			run, err := runAnalysis(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			report, err := shacl.NewValidator(nil).Validate(cmd.Context(), run.Graph, shapes)
			if err != nil {
				return err
			}

			if jsonOut {
				data, err := report.MarshalJSON()
				if err != nil {
					return fmt.Errorf("marshal report: %w", err)
				}
				fmt.Println(string(data))
			} else {
				fmt.Println(renderReport(report))
			}

			if !report.Conforms() {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the validation report as JSON")
	cmd.Flags().StringSliceVar(&shapePaths, "shapes", nil, "Shape manifest paths (overrides config)")
	return cmd
}

func watchCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Watch a project and re-analyze files as they change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(flags, argOrEmpty(args))
			if err != nil {
				return err
			}

			a := analyzer.New(analyzer.Options{
				Base:            cfg.Project.Base,
				ContinueOnError: true,
				TrackColumns:    cfg.Analyzer.TrackColumns,
			})

			watcher, err := analyzer.NewWatcher(analyzer.WatcherConfig{
				Root:          cfg.Project.Path,
				DebounceDelay: cfg.Analyzer.WatchDebounce,
				Analyzer:      a,
			})
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := watcher.Start(ctx); err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			defer func() { _ = watcher.Stop() }()

			slog.Info("watching project", "path", cfg.Project.Path)

			for {
				select {
				case <-ctx.Done():
					return nil
				case event := <-watcher.Events():
					printWatchEvent(event)
				}
			}
		},
	}
	return cmd
}

func publishCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish [path]",
		Short: "Analyze a project and publish the graph to NATS",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(flags, argOrEmpty(args))
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			nc, err := connectToNATS(ctx, cfg)
			if err != nil {
				return err
			}
			defer nc.Close(ctx)

			run, err := runAnalysis(ctx, cfg)
			if err != nil {
				return err
			}

			if err := graph.PublishRun(ctx, nc, &run); err != nil {
				return fmt.Errorf("publish run: %w", err)
			}

			slog.Info("run published",
				"run_id", run.RunID,
				"files", len(run.Files),
				"triples", run.Graph.Len())
			return nil
		},
	}
	return cmd
}

func linkCmd(flags *rootFlags) *cobra.Command {
	var (
		line    int
		endLine int
	)

	cmd := &cobra.Command{
		Use:   "link <file>",
		Short: "Print a hosted deep link for a source location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(flags, "")
			if err != nil {
				return err
			}
			if cfg.Hosting.Owner == "" || cfg.Hosting.Repo == "" {
				return fmt.Errorf("hosting.owner and hosting.repo must be set in %s", config.ProjectConfigFile)
			}

			commit, err := headCommit(cfg.Project.Path)
			if err != nil {
				return err
			}

			ref := hosturl.Ref{
				Host:    cfg.Hosting.Host,
				Owner:   cfg.Hosting.Owner,
				Repo:    cfg.Hosting.Repo,
				Commit:  commit,
				Path:    filepath.ToSlash(args[0]),
				Line:    line,
				EndLine: endLine,
			}
			url, ok := ref.URL()
			if !ok {
				return fmt.Errorf("cannot build a link for %s", args[0])
			}

			fmt.Println(url)
			return nil
		},
	}

	cmd.Flags().IntVarP(&line, "line", "l", 0, "Line to highlight (1-based)")
	cmd.Flags().IntVar(&endLine, "end-line", 0, "End of the highlighted range")
	return cmd
}

// headCommit resolves the current commit of the project checkout.
func headCommit(root string) (string, error) {
	gitCmd := exec.Command("git", "rev-parse", "HEAD")
	gitCmd.Dir = root
	out, err := gitCmd.Output()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD commit: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func connectToNATS(ctx context.Context, cfg *config.Config) (*natsclient.Client, error) {
	natsURL := "nats://localhost:4222"

	// Environment variable override takes precedence
	if envURL := os.Getenv("NATS_URL"); envURL != "" {
		natsURL = envURL
	} else if envURL := os.Getenv("SEMLIX_NATS_URL"); envURL != "" {
		natsURL = envURL
	} else if cfg.NATS.URL != "" {
		natsURL = cfg.NATS.URL
	}

	slog.Info("Connecting to NATS", "url", natsURL)

	client, err := natsclient.NewClient(natsURL,
		natsclient.WithName(appName),
		natsclient.WithMaxReconnects(-1),
		natsclient.WithReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("NATS connection failed at %s: %w", natsURL, err)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, fmt.Errorf("NATS connection failed at %s: %w", natsURL, err)
	}

	return client, nil
}

func printWatchEvent(event analyzer.WatchEvent) {
	switch {
	case event.Error != nil:
		fmt.Printf("✗ %s: %v\n", event.Path, event.Error)
	case event.Operation == analyzer.OpDelete:
		fmt.Printf("- %s removed\n", event.Path)
	case event.Result != nil:
		fmt.Printf("✓ %s: %d modules, %d triples\n",
			event.Path, len(event.Result.Facts.Modules), len(event.Result.Triples))
	}
}

func argOrEmpty(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
