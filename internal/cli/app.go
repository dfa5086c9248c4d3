package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hupe1980/megamerge"
	"github.com/hupe1980/megamerge/blobstore/s3"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

// App holds the command dependencies. The function fields are replaced in
// tests.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// NewResolver builds the location resolver once the config is loaded.
	NewResolver func(cfg Config) *Resolver
	// NewDDBClient creates the DynamoDB client used for --commit-table.
	NewDDBClient func(ctx context.Context, region string) (s3.DDBClient, error)

	configPath string
	logLevel   string
	logFormat  string

	cfg      Config
	logger   *megamerge.Logger
	resolver *Resolver
}

// NewApp creates an App writing to the given streams.
func NewApp(stdin io.Reader, stdout, stderr io.Writer) *App {
	return &App{
		Stdin:       stdin,
		Stdout:      stdout,
		Stderr:      stderr,
		NewResolver: NewResolver,
		NewDDBClient: func(ctx context.Context, region string) (s3.DDBClient, error) {
			return s3.NewDDBClient(ctx, region)
		},
	}
}

// Command builds the root command.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           "megamerge",
		Short:         "Interval overlap scanner",
		Long:          "megamerge matches a data set of 1-D intervals against a segmentation, one segment at a time.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetIn(a.Stdin)
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	pf.StringVar(&a.logLevel, "log-level", DefaultLogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&a.logFormat, "log-format", DefaultLogFormat, "log format (text, json)")

	root.AddCommand(a.scanCommand(), a.inspectCommand(), a.versionCommand())
	return root
}

func (a *App) setup(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	lvl, _ := parseLevel(cfg.LogLevel)
	if cfg.LogFormat == "json" {
		a.logger = megamerge.NewJSONLoggerTo(a.Stderr, lvl)
	} else {
		a.logger = megamerge.NewTextLoggerTo(a.Stderr, lvl)
	}

	a.cfg = cfg
	a.resolver = a.NewResolver(cfg)
	return nil
}

func (a *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "megamerge %s\n", Version)
			return err
		},
	}
}

// Execute runs the CLI with the process streams and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Command().ExecuteContext(ctx); err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("megamerge failed", "error", err)
		return 1
	}
	return 0
}
