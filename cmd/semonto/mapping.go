package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/c360studio/semonto/config"
	"github.com/c360studio/semonto/mapping"
	"github.com/c360studio/semonto/ontology"
)

func (a *App) mapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Map free-text concepts and crystal structures onto ontology terms",
	}
	cmd.AddCommand(a.mapConceptCmd(), a.mapCrystalCmd())
	return cmd
}

// mappings loads the mapping config of ref, or the defaults when ref names
// no ontology and no mapping file.
func (a *App) mappings(ref *ontologyRef) (*config.MappingConfig, error) {
	if !ref.isSet() {
		return config.LoadMappingConfig(ref.mappingsFile)
	}
	e, err := a.entry(ref)
	if err != nil {
		return nil, err
	}
	return e.Mappings()
}

func (a *App) mapConceptCmd() *cobra.Command {
	var (
		ref   ontologyRef
		term  string
		terms []string
	)

	cmd := &cobra.Command{
		Use:   "concept",
		Short: "Map terms onto the classes and properties of an ontology",
	}
	ref.bind(cmd)
	ref.bindMappings(cmd)
	cmd.Flags().StringVar(&term, "term", "", "Term to map")
	cmd.Flags().StringSliceVar(&terms, "terms", nil, "Comma-separated terms to map")

	cmd.RunE = a.operation("map_concept", func(ctx context.Context) (*envelope, error) {
		e, err := a.entry(&ref)
		if err != nil {
			return nil, err
		}
		s, err := a.loadSummary(e)
		if err != nil {
			return nil, err
		}
		m, err := e.Mappings()
		if err != nil {
			return nil, err
		}
		result, err := mapping.MapConcepts(s, mapping.ConceptRequest{
			Term:     term,
			Terms:    terms,
			Mappings: m,
		})
		if err != nil {
			return nil, err
		}
		in := ref.inputs()
		in["term"] = term
		in["terms"] = terms
		return &envelope{Inputs: in, Results: result}, nil
	})
	return cmd
}

func (a *App) mapCrystalCmd() *cobra.Command {
	var (
		ref        ontologyRef
		in         mapping.CrystalInput
		spaceGroup int
		lengths    [3]float64
		angles     [3]float64
	)

	cmd := &cobra.Command{
		Use:   "crystal",
		Short: "Map a crystal structure description onto ontology terms",
	}
	cmd.Flags().StringVar(&ref.name, "ontology", "", "Registered ontology whose mapping config names the output terms")
	ref.bindMappings(cmd)
	cmd.Flags().StringVar(&in.System, "system", "", "Crystal system (triclinic ... cubic)")
	cmd.Flags().StringVar(&in.Bravais, "bravais", "", "Bravais lattice code or alias (e.g. cF, FCC)")
	cmd.Flags().IntVar(&spaceGroup, "space-group", 0, "Space group number (1-230)")
	cmd.Flags().Float64Var(&lengths[0], "a", 0, "Lattice length a")
	cmd.Flags().Float64Var(&lengths[1], "b", 0, "Lattice length b")
	cmd.Flags().Float64Var(&lengths[2], "c", 0, "Lattice length c")
	cmd.Flags().Float64Var(&angles[0], "alpha", 0, "Lattice angle alpha in degrees")
	cmd.Flags().Float64Var(&angles[1], "beta", 0, "Lattice angle beta in degrees")
	cmd.Flags().Float64Var(&angles[2], "gamma", 0, "Lattice angle gamma in degrees")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.Changed("space-group") {
			in.SpaceGroup = &spaceGroup
		}
		set := func(name string, v *float64) *float64 {
			if flags.Changed(name) {
				return v
			}
			return nil
		}
		in.A, in.B, in.C = set("a", &lengths[0]), set("b", &lengths[1]), set("c", &lengths[2])
		in.Alpha, in.Beta, in.Gamma = set("alpha", &angles[0]), set("beta", &angles[1]), set("gamma", &angles[2])

		return a.operation("map_crystal", func(ctx context.Context) (*envelope, error) {
			m, err := a.mappings(&ref)
			if err != nil {
				return nil, err
			}
			result, err := mapping.MapCrystal(in, m.Crystal())
			if err != nil {
				return nil, err
			}
			inputs := ref.inputs()
			inputs["crystal_system"] = in.System
			inputs["bravais_lattice"] = in.Bravais
			inputs["space_group"] = in.SpaceGroup
			inputs["lattice_parameters"] = map[string]*float64{
				"a": in.A, "b": in.B, "c": in.C,
				"alpha": in.Alpha, "beta": in.Beta, "gamma": in.Gamma,
			}
			return &envelope{Inputs: inputs, Results: result, warnings: len(result.ValidationWarnings)}, nil
		})(cmd, args)
	}
	return cmd
}

func (a *App) annotateCmd() *cobra.Command {
	var (
		ref        ontologyRef
		sample     string
		sampleFile string
	)

	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Annotate a sample description with ontology classes and properties",
		Long: `Annotate maps the fields of a JSON sample description onto ontology
classes and properties. With --ontology (or --summary-file) class IRIs are
attached and the ontology's mapping config supplies the labels; otherwise
generic labels are used.`,
	}
	ref.bind(cmd)
	ref.bindMappings(cmd)
	cmd.Flags().StringVar(&sample, "sample", "", "Sample description as a JSON object")
	cmd.Flags().StringVar(&sampleFile, "sample-file", "", "Sample description file (- for stdin)")

	cmd.RunE = a.operation("annotate", func(ctx context.Context) (*envelope, error) {
		data, err := readInput(sample, sampleFile, "sample")
		if err != nil {
			return nil, err
		}
		parsed, err := mapping.DecodeSample(data)
		if err != nil {
			return nil, err
		}

		var s *ontology.Summary
		if ref.isSet() {
			e, err := a.entry(&ref)
			if err != nil {
				return nil, err
			}
			if s, err = a.loadSummary(e); err != nil {
				return nil, err
			}
		}
		m, err := a.mappings(&ref)
		if err != nil {
			return nil, err
		}

		result, err := mapping.AnnotateSample(s, parsed, m)
		if err != nil {
			return nil, err
		}
		warnings := 0
		for _, ann := range result.Annotations {
			if ann.Type == mapping.AnnotationWarning {
				warnings++
			}
		}
		in := ref.inputs()
		in["sample"] = parsed.Keys()
		return &envelope{Inputs: in, Results: result, warnings: warnings}, nil
	})
	return cmd
}
