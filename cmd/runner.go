package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/traxyt/internal/repositories"
	"github.com/desertthunder/traxyt/internal/services"
	"github.com/desertthunder/traxyt/internal/shared"
	"github.com/desertthunder/traxyt/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	searcher    services.Searcher
	repo        *repositories.ConversionRepository
	db          *sql.DB
	logger      *log.Logger
	output      io.Writer
	errOutput   io.Writer
	openBrowser func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Searcher   services.Searcher
	Results    *repositories.ConversionRepository
	Logger     *log.Logger
	Output     io.Writer
	ErrOutput  io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		searcher:    opts.Searcher,
		repo:        opts.Results,
		logger:      opts.Logger,
		output:      opts.Output,
		errOutput:   opts.ErrOutput,
		openBrowser: shared.OpenBrowser,
	}
}

// Before loads the config named by the global flags and builds the search service.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	r.configPath = cmd.String("config")
	config, err := shared.LoadConfigOrDefault(r.configPath)
	if err != nil {
		return ctx, err
	}
	r.config = config
	r.logger.Debug("config loaded", "path", r.configPath)

	if r.searcher == nil {
		searcher, err := services.NewSearchServiceFromConfig(config.Search, shared.WithLogger(r.logger, "service", "search"))
		if err != nil {
			return ctx, err
		}
		r.searcher = searcher
	}
	return ctx, nil
}

// After releases the database handle, if one was opened.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	r.repo = nil
	return err
}

// SetLogger replaces the logger used by commands and services created afterwards.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, convertCommand, searchCommand, resultsCommand, serveCommand, durationCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// results opens the configured database on first use.
func (r *Runner) results() (*repositories.ConversionRepository, error) {
	if r.repo != nil {
		return r.repo, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	r.db = db
	r.repo = repositories.NewConversionRepository(db)
	return r.repo, nil
}

// newConverter wires a converter to the search service, the result store and emitter.
//
// A database that cannot be opened only disables persistence.
func (r *Runner) newConverter(emitter tasks.Emitter) *tasks.Converter {
	opts := tasks.ConverterOpts{
		Resolver:        r.searcher,
		Emitter:         emitter,
		Delay:           tasks.NewDelayPolicy(r.config.Delay),
		PlaylistBaseURL: r.config.Search.PlaylistBaseURL,
		Logger:          shared.WithLogger(r.logger, "service", "converter"),
	}
	if repo, err := r.results(); err != nil {
		r.logger.Warn("results will not be saved", "error", err)
	} else {
		opts.Store = repo
	}
	return tasks.NewConverter(opts)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
