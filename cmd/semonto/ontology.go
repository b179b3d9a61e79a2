package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/semonto/ontology"
	"github.com/c360studio/semonto/query"
	"github.com/c360studio/semonto/source"
	"github.com/c360studio/semonto/source/owl"
	"github.com/c360studio/semonto/summary"
	"github.com/c360studio/semonto/watch"
)

// parseResult is the raw document with the class tree nested by declared
// parent.
type parseResult struct {
	*owl.Document
	ClassHierarchy ontology.Hierarchy `json:"class_hierarchy"`
}

func (a *App) parseCmd() *cobra.Command {
	var locator string

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse an OWL/XML source into its raw classes and properties",
	}
	cmd.Flags().StringVar(&locator, "source", "", "OWL file path or http(s) URL")
	_ = cmd.MarkFlagRequired("source")

	cmd.RunE = a.operation("parse", func(ctx context.Context) (*envelope, error) {
		doc, err := owl.NewParser(a.logger).ParseSource(ctx, a.fetcher(), locator)
		if err != nil {
			return nil, err
		}
		return &envelope{
			Inputs:  map[string]any{"source": locator},
			Results: parseResult{Document: doc, ClassHierarchy: doc.Hierarchy()},
		}, nil
	})
	return cmd
}

func (a *App) summarizeCmd() *cobra.Command {
	var (
		locator  string
		output   string
		watching bool
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Build the summary document of an OWL/XML source",
		Long: `Summarize parses an OWL/XML source and resolves it into the
label-indexed summary document. With --output the summary is written to a
file; with --watch the file is rebuilt whenever the local source changes.`,
	}
	cmd.Flags().StringVar(&locator, "source", "", "OWL file path or http(s) URL")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the summary to this file")
	cmd.Flags().BoolVar(&watching, "watch", false, "Rebuild the summary when the source file changes")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before a change triggers a rebuild")
	_ = cmd.MarkFlagRequired("source")

	build := func(ctx context.Context) (*ontology.Summary, error) {
		s, err := summary.FromSource(ctx, a.fetcher(), locator, summary.WithLogger(a.logger))
		if err != nil {
			return nil, err
		}
		a.metrics.RecordSummary(s.Metadata.Title, s)
		if output != "" {
			if err := summary.Save(output, s); err != nil {
				return nil, err
			}
			a.logger.Info("Wrote ontology summary",
				slog.String("path", output),
				slog.Int("classes", s.Statistics.NumClasses),
				slog.Int("object_properties", s.Statistics.NumObjectProperties),
				slog.Int("data_properties", s.Statistics.NumDataProperties))
		}
		return s, nil
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if watching {
			return a.watchSummary(cmd.Context(), locator, output, debounce, build)
		}
		return a.operation("summarize", func(ctx context.Context) (*envelope, error) {
			s, err := build(ctx)
			if err != nil {
				return nil, err
			}
			env := &envelope{Inputs: map[string]any{"source": locator}, Results: s}
			if output != "" {
				env.Inputs = map[string]any{"source": locator, "output": output}
				env.Results = map[string]any{"output": output, "statistics": s.Statistics}
			}
			return env, nil
		})(cmd, args)
	}
	return cmd
}

// watchSummary builds the summary once and again on every debounced change
// of the source file, until interrupted.
func (a *App) watchSummary(parent context.Context, locator, output string, debounce time.Duration,
	build func(context.Context) (*ontology.Summary, error)) error {
	if output == "" {
		return ontology.Invalidf("--watch requires --output")
	}
	if source.IsURL(locator) {
		return ontology.Invalidf("--watch requires a local source file, got %q", locator)
	}
	if parent == nil {
		parent = context.Background()
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rebuild := func(ctx context.Context) error {
		start := time.Now()
		_, err := build(ctx)
		a.metrics.ObserveOperation("summarize", start, err)
		if a.cfg.Metrics.Textfile != "" {
			if werr := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); werr != nil {
				a.logger.Warn("Failed to write metrics textfile", slog.String("error", werr.Error()))
			}
		}
		return err
	}

	// The watcher records the source hash before the first build, so an edit
	// made while building is still reported.
	w, err := watch.New(locator, debounce, a.logger)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		_ = w.Stop()
		return fmt.Errorf("start watcher: %w", err)
	}
	defer func() { _ = w.Stop() }()

	if err := rebuild(ctx); err != nil {
		return err
	}

	watch.Run(ctx, w, func(ctx context.Context, c watch.Change) error {
		if c.Removed {
			a.logger.Warn("Ontology source removed, keeping last summary", slog.String("path", c.Path))
			return nil
		}
		a.logger.Info("Ontology source changed, rebuilding summary", slog.String("path", c.Path))
		return rebuild(ctx)
	})

	if dropped := w.DroppedChanges(); dropped > 0 {
		a.logger.Warn("Source changes were dropped while rebuilding", slog.Int64("dropped", dropped))
	}
	a.logger.Info("Ontology source watcher stopped", slog.String("path", locator))
	return nil
}

func (a *App) browseCmd() *cobra.Command {
	var (
		ref ontologyRef
		req query.BrowseRequest
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the class hierarchy of an ontology",
	}
	ref.bind(cmd)
	cmd.Flags().StringVar(&req.Class, "class", "", "Class to describe")
	cmd.Flags().BoolVar(&req.ListRoots, "list-roots", false, "List the root classes")
	cmd.Flags().StringVar(&req.Search, "search", "", "Search class labels and descriptions")
	cmd.Flags().IntVar(&req.Depth, "depth", -1, "Subtree depth of --class (negative is unbounded)")

	cmd.RunE = a.operation("browse", func(ctx context.Context) (*envelope, error) {
		e, err := a.entry(&ref)
		if err != nil {
			return nil, err
		}
		s, err := a.loadSummary(e)
		if err != nil {
			return nil, err
		}
		result, err := query.BrowseClasses(s, req)
		if err != nil {
			return nil, err
		}
		in := ref.inputs()
		in["class"] = req.Class
		in["list_roots"] = req.ListRoots
		in["search"] = req.Search
		in["depth"] = req.Depth
		return &envelope{Inputs: in, Results: result}, nil
	})
	return cmd
}

func (a *App) propertyCmd() *cobra.Command {
	var (
		ref ontologyRef
		req query.PropertyRequest
	)

	cmd := &cobra.Command{
		Use:   "property",
		Short: "Look up ontology properties by name, class or search term",
	}
	ref.bind(cmd)
	cmd.Flags().StringVar(&req.Name, "property", "", "Property to describe")
	cmd.Flags().StringVar(&req.Class, "class", "", "List the properties applicable to this class")
	cmd.Flags().StringVar(&req.Search, "search", "", "Search property names and descriptions")
	cmd.Flags().StringVar(&req.Type, "type", query.TypeAll, "Property type filter (all, object, data)")

	cmd.RunE = a.operation("property", func(ctx context.Context) (*envelope, error) {
		e, err := a.entry(&ref)
		if err != nil {
			return nil, err
		}
		s, err := a.loadSummary(e)
		if err != nil {
			return nil, err
		}
		result, err := query.LookupProperties(s, req)
		if err != nil {
			return nil, err
		}
		in := ref.inputs()
		in["property"] = req.Name
		in["class"] = req.Class
		in["search"] = req.Search
		in["type"] = req.Type
		return &envelope{Inputs: in, Results: result}, nil
	})
	return cmd
}
