package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/scanarr/internal/repositories"
	"github.com/desertthunder/scanarr/internal/services"
	"github.com/desertthunder/scanarr/internal/shared"
	"github.com/desertthunder/scanarr/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	lidarr      *services.LidarrService
	musicbrainz *services.MusicBrainzService
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	engine      *tasks.ImportEngine
	db          *sql.DB
	imports     *repositories.ImportRepository
	wait        tasks.WaitFunc
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB        // enables import history when set
	Wait       tasks.WaitFunc // overrides the settle wait, used by tests
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
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
		wait:       opts.Wait,
	}
	r.configure(opts.Config)
	return r
}

// configure (re)builds the service clients and the import engine from config.
func (r *Runner) configure(config *shared.Config) {
	r.config = config
	r.lidarr = services.NewLidarrService(config.Lidarr, r.httpClient)
	r.musicbrainz = services.NewMusicBrainzService(config.MusicBrainz, r.httpClient)

	opts := tasks.EngineOpts{
		Artist:      tasks.ArtistDefaultsFrom(config.Lidarr),
		SettleDelay: config.Workflow.SettleDelay,
		Wait:        r.wait,
		Logger:      shared.WithLogger(r.logger, "component", "engine"),
	}
	if r.db != nil {
		r.imports = repositories.NewImportRepository(r.db)
		opts.Recorder = repositories.NewImportRecorderAdapter(r.imports)
	}
	r.engine = tasks.NewImportEngine(r.musicbrainz, r.lidarr, opts)
}

// bootstrap loads the configuration named by the root flags and rebuilds the runner from it.
//
// A missing config file falls back to the embedded defaults so `setup` can create it.
func (r *Runner) bootstrap(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	configPath := cmd.String("config")

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			return ctx, err
		}
	}

	if err := shared.LoadEnvFile(cmd.String("env-file")); err != nil {
		return ctx, err
	}
	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return ctx, err
	}
	if cmd.Bool("verbose") {
		config.Log.Level = "debug"
	}

	r.SetLogger(shared.NewConfiguredLogger(nil, config.Log))
	r.logger.Debug("configuration loaded", "path", configPath, "lidarr", config.Lidarr.URL)
	r.configure(config)
	return ctx, nil
}

// withHistory opens the import history database and attaches it to the engine.
//
// History is optional: an empty database path or an open failure leaves the engine without a recorder.
func (r *Runner) withHistory() {
	if r.db != nil || r.config.Database.Path == "" {
		return
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		r.logger.Warn("import history disabled", "path", r.config.Database.Path, "error", err)
		return
	}

	r.db = db
	r.configure(r.config)
}

// close releases the history database, if one was opened.
func (r *Runner) close(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	r.imports = nil
	return err
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, scanCommand, checkCommand, resolveCommand, historyCommand, setupCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

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
