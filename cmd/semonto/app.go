package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/semonto/config"
	"github.com/c360studio/semonto/metric"
	"github.com/c360studio/semonto/ontology"
	"github.com/c360studio/semonto/source"
	"github.com/c360studio/semonto/summary"
)

// Exit codes.
const (
	exitOK          = 0
	exitError       = 1
	exitDomainError = 2
)

// globalFlags holds the persistent flags of the root command.
type globalFlags struct {
	configPath      string
	logLevel        string
	jsonOutput      bool
	metricsTextfile string
	registryPath    string
}

// App wires configuration, logging and metrics into the command tree.
type App struct {
	stdout io.Writer
	stderr io.Writer
	flags  globalFlags

	cfg      *config.Config
	logger   *slog.Logger
	metrics  *metric.Metrics
	registry *config.Registry
}

// NewApp creates an App writing results to stdout and logs to stderr.
func NewApp(stdout, stderr io.Writer) *App {
	return &App{stdout: stdout, stderr: stderr}
}

// Execute runs the command line and returns the process exit code.
// ParseError, NotFound and ValidationError exit with 2, other errors with 1.
func (a *App) Execute(args []string) int {
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	err := cmd.Execute()

	if a.cfg != nil && a.cfg.Metrics.Textfile != "" {
		if werr := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); werr != nil {
			a.logger.Warn("Failed to write metrics textfile",
				slog.String("path", a.cfg.Metrics.Textfile),
				slog.String("error", werr.Error()))
		}
	}

	if err == nil {
		return exitOK
	}
	code := exitCode(err)
	if code == exitDomainError && a.flags.jsonOutput {
		_ = writeJSON(a.stdout, map[string]string{"error": err.Error()})
		return code
	}
	fmt.Fprintf(a.stderr, "Error: %v\n", err)
	return code
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case ontology.IsParseError(err), ontology.IsNotFound(err), ontology.IsValidation(err):
		return exitDomainError
	default:
		return exitError
	}
}

// setup loads the configuration and builds the logger and metrics shared by
// every command.
func (a *App) setup(cmd *cobra.Command) error {
	bootstrap := slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: parseLevel(a.flags.logLevel)}))

	var (
		cfg *config.Config
		err error
	)
	if a.flags.configPath != "" {
		cfg, err = config.LoadFromFile(a.flags.configPath)
		if err == nil {
			err = cfg.Validate()
		}
	} else {
		cfg, err = config.NewLoader(bootstrap).Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cmd.Flags().Changed("log-level") || cfg.Log.Level == "" {
		cfg.Log.Level = a.flags.logLevel
	}
	if a.flags.metricsTextfile != "" {
		cfg.Metrics.Textfile = a.flags.metricsTextfile
	}
	if a.flags.registryPath != "" {
		cfg.Registry.Path = a.flags.registryPath
	}

	// Configure logging
	handler := slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: parseLevel(cfg.Log.Level)})
	logger := slog.New(handler).With(slog.String("run_id", uuid.New().String()))
	slog.SetDefault(logger)

	metrics, err := metric.New()
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	a.metrics = metrics

	logger.Debug("Semonto configured",
		slog.String("version", Version),
		slog.String("command", cmd.CommandPath()))
	return nil
}

func parseLevel(s string) slog.Level {
	level := slog.LevelInfo
	switch strings.ToLower(s) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return level
}

// fetcher returns a source fetcher configured from the fetch section.
func (a *App) fetcher() *source.Fetcher {
	return source.NewFetcher(
		source.WithTimeout(a.cfg.Fetch.Timeout),
		source.WithMaxBytes(a.cfg.Fetch.MaxBytes),
		source.WithUserAgent(a.cfg.Fetch.UserAgent),
		source.WithLogger(a.logger),
	)
}

// openRegistry loads the ontology registry once per invocation.
func (a *App) openRegistry() (*config.Registry, error) {
	if a.registry != nil {
		return a.registry, nil
	}
	r, err := config.OpenRegistry(a.cfg.Registry, a.logger)
	if err != nil {
		return nil, err
	}
	a.registry = r
	return r, nil
}

// ontologyRef selects an ontology by registry name or by explicit files.
// Explicit mapping and constraints files override the registry entry's.
type ontologyRef struct {
	name            string
	summaryFile     string
	mappingsFile    string
	constraintsFile string
}

func (r *ontologyRef) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.name, "ontology", "", "Registered ontology name")
	cmd.Flags().StringVar(&r.summaryFile, "summary-file", "", "Summary document path (instead of --ontology)")
}

func (r *ontologyRef) bindMappings(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.mappingsFile, "mappings-file", "", "Mapping config file (YAML or JSON)")
}

func (r *ontologyRef) bindConstraints(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.constraintsFile, "constraints-file", "", "Constraints file (YAML or JSON)")
}

func (r *ontologyRef) isSet() bool {
	return r.name != "" || r.summaryFile != ""
}

func (r *ontologyRef) inputs() map[string]any {
	in := map[string]any{}
	if r.name != "" {
		in["ontology"] = r.name
	}
	if r.summaryFile != "" {
		in["summary_file"] = r.summaryFile
	}
	return in
}

// entry resolves ref into registry entry form.
func (a *App) entry(ref *ontologyRef) (*config.RegistryEntry, error) {
	var e config.RegistryEntry
	switch {
	case ref.summaryFile != "":
		e = config.RegistryEntry{Name: ref.summaryFile, SummaryFile: ref.summaryFile}
	case ref.name != "":
		r, err := a.openRegistry()
		if err != nil {
			return nil, err
		}
		found, err := r.Lookup(ref.name)
		if err != nil {
			return nil, err
		}
		e = *found
	default:
		return nil, ontology.Invalidf("provide --ontology or --summary-file")
	}
	if ref.mappingsFile != "" {
		e.MappingsFile = ref.mappingsFile
	}
	if ref.constraintsFile != "" {
		e.ConstraintsFile = ref.constraintsFile
	}
	return &e, nil
}

// loadSummary reads the summary document of e.
func (a *App) loadSummary(e *config.RegistryEntry) (*ontology.Summary, error) {
	s, err := summary.Load(e.SummaryFile)
	if err != nil {
		return nil, err
	}
	a.metrics.RecordSummary(e.Name, s)
	a.logger.Debug("Loaded ontology summary",
		slog.String("ontology", e.Name),
		slog.String("path", e.SummaryFile),
		slog.Int("classes", s.Statistics.NumClasses))
	return s, nil
}

// envelope is the output of one command.
type envelope struct {
	Inputs  any `json:"inputs"`
	Results any `json:"results"`

	warnings int
}

// operation wraps a command body with metrics and output rendering.
func (a *App) operation(name string, fn func(ctx context.Context) (*envelope, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		env, err := fn(cmd.Context())
		a.metrics.ObserveOperation(name, start, err)
		if err != nil {
			return err
		}
		a.metrics.RecordWarnings(name, env.warnings)
		return a.emit(env)
	}
}

// emit prints the envelope as JSON with --json, or the results as YAML.
func (a *App) emit(env *envelope) error {
	if a.flags.jsonOutput {
		return writeJSON(a.stdout, env)
	}
	out, err := toYAML(env.Results)
	if err != nil {
		return err
	}
	_, err = a.stdout.Write(out)
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// toYAML renders v through its JSON form so field names and order follow
// the JSON tags.
func toYAML(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("convert output: %w", err)
	}
	blockStyle(&node)
	out, err := yaml.Marshal(&node)
	if err != nil {
		return nil, fmt.Errorf("convert output: %w", err)
	}
	return out, nil
}

// blockStyle drops the flow and quoting styles inherited from JSON.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// readInput returns the inline value, or the content of file when inline
// is empty. A file of "-" reads stdin.
func readInput(inline, file, what string) ([]byte, error) {
	switch {
	case inline != "":
		return []byte(inline), nil
	case file == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read %s from stdin: %w", what, err)
		}
		return data, nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, ontology.Invalidf("cannot read %s file %q: %v", what, file, err)
		}
		return data, nil
	default:
		return nil, ontology.Invalidf("provide --%s or --%s-file", what, what)
	}
}
