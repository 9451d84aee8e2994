package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lrcx/internal/matcher"
	"github.com/desertthunder/lrcx/internal/services"
	"github.com/desertthunder/lrcx/internal/shared"
	"github.com/desertthunder/lrcx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	catalog    services.Catalog
	httpClient *http.Client
	ownClient  bool // httpClient was built here and follows [catalog] timeout
	logger     *log.Logger
	output     io.Writer
	closers    []io.Closer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Catalog    services.Catalog // replaces the NetEase client built from config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
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
	ownClient := opts.HTTPClient == nil
	if ownClient {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.Catalog.TimeoutDuration()}
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		catalog:    opts.Catalog,
		httpClient: opts.HTTPClient,
		ownClient:  ownClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		fetchCommand, resolveCommand, searchCommand, setupCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by all commands.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Before loads the configuration file and sets up logging ahead of any command.
//
// A missing file keeps the embedded defaults so setup commands can create it; a file that fails to load is an error.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	r.configPath = path

	if _, err := os.Stat(path); err == nil {
		config, err := shared.LoadConfig(path)
		if err != nil {
			return ctx, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
		}
		if err := config.Validate(); err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", path)
	}

	if r.ownClient {
		r.httpClient = &http.Client{Timeout: r.config.Catalog.TimeoutDuration()}
	}

	shared.SetLogLevel(r.logger, shared.ParseLogLevel(r.config.Log.Level))

	logFile := r.config.Log.File
	if cmd.IsSet("log-file") {
		logFile = cmd.String("log-file")
	}
	if logFile != "" {
		if err := r.useLogFile(logFile); err != nil {
			return ctx, err
		}
	}

	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

// After releases files opened by [Runner.Before] and the commands.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c.Close())
	}
	r.closers = nil
	return errors.Join(errs...)
}

// useLogFile redirects logging to a rotated file, keeping the current level.
func (r *Runner) useLogFile(path string) error {
	fileLogger, closer, err := shared.NewFileLogger(path, r.config.Log.MaxSizeMB, r.config.Log.MaxBackups)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)
	r.closers = append(r.closers, closer)
	return nil
}

// service returns the catalog client, building the NetEase client from config when none was injected.
func (r *Runner) service(cmd *cli.Command) services.Catalog {
	if r.catalog != nil {
		return r.catalog
	}

	cookie := r.config.Credentials.Cookie
	if cmd.IsSet("cookie") {
		cookie = cmd.String("cookie")
	}

	return services.NewNeteaseService(services.NeteaseOpts{
		BaseURL:    r.config.Catalog.BaseURL,
		Cookie:     cookie,
		UserAgent:  r.config.Catalog.UserAgent,
		Timeout:    r.config.Catalog.TimeoutDuration(),
		HTTPClient: r.httpClient,
	})
}

// fetchSettings returns the [shared.FetchConfig] from config with any flags set on cmd applied over it.
func (r *Runner) fetchSettings(cmd *cli.Command) (shared.FetchConfig, error) {
	settings := r.config.Fetch

	if cmd.IsSet("outdir") {
		settings.OutDir = cmd.String("outdir")
	}
	if cmd.IsSet("sleep") {
		settings.Sleep = cmd.Float("sleep")
	}
	if cmd.IsSet("retries") {
		settings.Retries = int(cmd.Int("retries"))
	}
	if cmd.IsSet("backoff") {
		settings.Backoff = cmd.Float("backoff")
	}
	if cmd.IsSet("search-limit") {
		settings.SearchLimit = int(cmd.Int("search-limit"))
	}
	if cmd.IsSet("fuzzy") {
		settings.Fuzzy = cmd.Bool("fuzzy")
	}
	if cmd.IsSet("threshold") {
		settings.Threshold = cmd.Float("threshold")
	}
	if cmd.IsSet("translation") {
		settings.Translation = cmd.String("translation")
	}

	check := *r.config
	check.Fetch = settings
	if err := check.Validate(); err != nil {
		return settings, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}
	return settings, nil
}

func scorerFor(settings shared.FetchConfig) matcher.Scorer {
	weights := matcher.DefaultWeights()
	if settings.Threshold > 0 {
		weights.Threshold = settings.Threshold
	}
	return matcher.NewScorer(weights, settings.Fuzzy)
}

// newEngine builds a batch engine for settings reporting to observer.
func (r *Runner) newEngine(cmd *cli.Command, settings shared.FetchConfig, observer tasks.Observer) *tasks.Engine {
	return tasks.NewEngine(tasks.EngineOpts{
		Catalog:     r.service(cmd),
		Scorer:      scorerFor(settings),
		Sleep:       settings.SleepDuration(),
		Retries:     settings.Retries,
		Backoff:     settings.BackoffDuration(),
		SearchLimit: settings.SearchLimit,
		OutDir:      settings.OutDir,
		Translation: settings.Translation,
		Logger:      shared.WithLogger(r.logger, "command", cmd.Name),
		Observer:    observer,
	})
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
