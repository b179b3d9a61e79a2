// Package main provides the semonto binary entry point.
// Semonto turns an OWL/XML ontology into a compact summary and answers
// browse, property, mapping and validation queries against it.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semonto"
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

	app := NewApp(os.Stdout, os.Stderr)
	os.Exit(app.Execute(os.Args[1:]))
}

func (a *App) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Ontology knowledge-base toolkit",
		Long: `Semonto parses OWL/XML ontologies into a label-indexed summary and
answers queries against registered summaries.

It provides:
- Class browsing and property lookup
- Concept, crystal structure and sample mapping onto ontology terms
- Schema, completeness and relationship validation of annotations`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.flags.configPath, "config", "c", "", "Config file path (YAML)")
	flags.StringVar(&a.flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.BoolVar(&a.flags.jsonOutput, "json", false, "Print the result as a JSON envelope")
	flags.StringVar(&a.flags.metricsTextfile, "metrics-textfile", "", "Write operation metrics to this file in Prometheus text format")
	flags.StringVar(&a.flags.registryPath, "registry", "", "Ontology registry file (overrides config)")

	cmd.AddCommand(
		a.parseCmd(),
		a.summarizeCmd(),
		a.browseCmd(),
		a.propertyCmd(),
		a.mapCmd(),
		a.annotateCmd(),
		a.validateCmd(),
		a.registryCmd(),
		a.configCmd(),
	)

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}
