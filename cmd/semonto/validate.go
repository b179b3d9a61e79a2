package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/c360studio/semonto/config"
	"github.com/c360studio/semonto/validation"
)

func (a *App) validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate annotations against an ontology",
	}
	cmd.AddCommand(a.validateSchemaCmd(), a.validateCompletenessCmd(), a.validateRelationshipsCmd())
	return cmd
}

func (a *App) validateSchemaCmd() *cobra.Command {
	var (
		ref            ontologyRef
		annotation     string
		annotationFile string
	)

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Check that annotated classes and properties exist in the ontology",
	}
	ref.bind(cmd)
	cmd.Flags().StringVar(&annotation, "annotation", "", "Annotation as a JSON object")
	cmd.Flags().StringVar(&annotationFile, "annotation-file", "", "Annotation file (- for stdin)")

	cmd.RunE = a.operation("validate_schema", func(ctx context.Context) (*envelope, error) {
		data, err := readInput(annotation, annotationFile, "annotation")
		if err != nil {
			return nil, err
		}
		records, err := validation.DecodeAnnotation(data)
		if err != nil {
			return nil, err
		}
		e, err := a.entry(&ref)
		if err != nil {
			return nil, err
		}
		s, err := a.loadSummary(e)
		if err != nil {
			return nil, err
		}
		result := validation.CheckSchema(s, records)
		in := ref.inputs()
		in["records"] = len(records)
		return &envelope{Inputs: in, Results: result, warnings: len(result.Warnings)}, nil
	})
	return cmd
}

func (a *App) validateCompletenessCmd() *cobra.Command {
	var (
		ref      ontologyRef
		class    string
		provided []string
	)

	cmd := &cobra.Command{
		Use:   "completeness",
		Short: "Score the properties provided for a class against its constraints",
	}
	ref.bind(cmd)
	ref.bindConstraints(cmd)
	cmd.Flags().StringVar(&class, "class", "", "Class the properties describe")
	cmd.Flags().StringSliceVar(&provided, "provided", nil, "Comma-separated property names provided")

	cmd.RunE = a.operation("validate_completeness", func(ctx context.Context) (*envelope, error) {
		e, err := a.entry(&ref)
		if err != nil {
			return nil, err
		}
		s, err := a.loadSummary(e)
		if err != nil {
			return nil, err
		}
		constraints, err := e.Constraints()
		if err != nil {
			return nil, err
		}
		result, err := validation.CheckCompleteness(s, constraints, class, provided)
		if err != nil {
			return nil, err
		}
		in := ref.inputs()
		in["class"] = class
		in["provided"] = provided
		return &envelope{Inputs: in, Results: result}, nil
	})
	return cmd
}

func (a *App) validateRelationshipsCmd() *cobra.Command {
	var (
		ref               ontologyRef
		relationships     string
		relationshipsFile string
	)

	cmd := &cobra.Command{
		Use:   "relationships",
		Short: "Check subject-property-object triples against property domains and ranges",
	}
	ref.bind(cmd)
	cmd.Flags().StringVar(&relationships, "relationships", "", "JSON list of {subject_class, property, object_class}")
	cmd.Flags().StringVar(&relationshipsFile, "relationships-file", "", "Relationships file (- for stdin)")

	cmd.RunE = a.operation("validate_relationships", func(ctx context.Context) (*envelope, error) {
		data, err := readInput(relationships, relationshipsFile, "relationships")
		if err != nil {
			return nil, err
		}
		rels, err := validation.DecodeRelationships(data)
		if err != nil {
			return nil, err
		}
		e, err := a.entry(&ref)
		if err != nil {
			return nil, err
		}
		s, err := a.loadSummary(e)
		if err != nil {
			return nil, err
		}
		result, err := validation.CheckRelationships(s, rels)
		if err != nil {
			return nil, err
		}
		in := ref.inputs()
		in["relationships"] = rels
		return &envelope{Inputs: in, Results: result}, nil
	})
	return cmd
}

func (a *App) registryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the ontology registry",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the registered ontologies",
		RunE: a.operation("registry_list", func(ctx context.Context) (*envelope, error) {
			r, err := a.openRegistry()
			if err != nil {
				return nil, err
			}
			return &envelope{
				Inputs:  map[string]any{"registry": a.cfg.Registry.Path, "search_dir": a.cfg.Registry.SearchDir},
				Results: r.Entries(),
			}, nil
		}),
	})
	return cmd
}

func (a *App) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the semonto configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the user config file with defaults unless it exists",
		RunE: a.operation("config_init", func(ctx context.Context) (*envelope, error) {
			path, created, err := config.NewLoader(a.logger).EnsureUserConfig()
			if err != nil {
				return nil, err
			}
			return &envelope{
				Inputs:  map[string]any{},
				Results: map[string]any{"path": path, "created": created},
			}, nil
		}),
	})
	return cmd
}
