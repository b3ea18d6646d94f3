// Command paramshape validates and coerces request payloads against a
// declarative schema file.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	ps "github.com/reoring/paramshape"
	"github.com/reoring/paramshape/schemafile"
)

// errIssues marks a run that completed but found invalid input; it maps to
// exit status 1 without an extra error line.
var errIssues = errors.New("input has issues")

type app struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	log        zerolog.Logger
	schemaPath string
	logLevel   string
	locale     string
	maxDepth   int
	bundle     *schemafile.Bundle
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:           "paramshape",
		Short:         "Schema-directed parameter validation",
		Long:          `paramshape checks JSON, YAML or query-string input against the contracts declared in a schema file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVarP(&a.schemaPath, "schema", "s", "", "schema file (.yaml, .yml, .toml or .json)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug|info|warn|error)")
	root.PersistentFlags().StringVar(&a.locale, "locale", "", "locale for issue details (e.g. en, ja)")
	root.PersistentFlags().IntVar(&a.maxDepth, "max-depth", ps.DefaultMaxDepth, "maximum nesting depth")
	_ = root.MarkPersistentFlagRequired("schema")

	root.AddCommand(a.validateCmd(), a.coerceCmd(), a.typesCmd(), a.serveCmd())
	return root
}

func (a *app) setup() error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(a.logLevel))
	if err != nil {
		return fmt.Errorf("invalid --log-level %q", a.logLevel)
	}
	a.log = zerolog.New(zerolog.ConsoleWriter{Out: a.stderr, NoColor: true}).Level(lvl).With().Timestamp().Logger()
	b, err := schemafile.LoadFile(a.schemaPath, schemafile.WithLogger(a.log))
	if err != nil {
		return err
	}
	a.bundle = b
	return nil
}

func main() {
	root := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errIssues) {
			fmt.Fprintln(os.Stderr, "paramshape:", err)
		}
		os.Exit(1)
	}
}
