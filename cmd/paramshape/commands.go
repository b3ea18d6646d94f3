package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fatih/color"
	j "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/reoring/paramshape/coerce"
	"github.com/reoring/paramshape/schema"
	"github.com/reoring/paramshape/source"
	"github.com/reoring/paramshape/validate"
)

type issueOut struct {
	Code    string         `json:"code"`
	Pointer string         `json:"pointer"`
	Detail  string         `json:"detail"`
	Meta    map[string]any `json:"meta,omitempty"`
}

type validateOut struct {
	OK     bool           `json:"ok"`
	Issues []issueOut     `json:"issues"`
	Params map[string]any `json:"params,omitempty"`
}

type fileOut struct {
	Input string `json:"input"`
	validateOut
}

var (
	okColor    = color.New(color.FgGreen, color.Bold)
	badColor   = color.New(color.FgRed, color.Bold)
	ptrColor   = color.New(color.FgYellow)
	detailText = color.New(color.Faint)
)

func (a *app) validateCmd() *cobra.Command {
	var format, output string
	var doCoerce, noColor bool
	var jobs int
	cmd := &cobra.Command{
		Use:   "validate <contract.action.request|response> [input...]",
		Short: "Validate input against a shape; reads stdin when input is omitted or -",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shape, err := a.shape(args[0])
			if err != nil {
				return err
			}
			if output != "json" && output != "text" {
				return fmt.Errorf("unknown --output %q", output)
			}
			if noColor {
				color.NoColor = true
			}
			inputs := args[1:]
			if len(inputs) == 0 {
				inputs = []string{"-"}
			}
			stdin := 0
			for _, name := range inputs {
				if name == "-" {
					stdin++
				}
			}
			if stdin > 1 {
				return fmt.Errorf("stdin (-) may be given only once, got %d", stdin)
			}
			results := make([]fileOut, len(inputs))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(max(1, jobs))
			for i, name := range inputs {
				i, name := i, name
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					data, err := a.input([]string{name}, format)
					if err != nil {
						return fmt.Errorf("%s: %w", name, err)
					}
					results[i] = fileOut{Input: name, validateOut: a.check(shape, data, doCoerce)}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if !r.OK {
					failed++
				}
				a.log.Debug().Str("shape", args[0]).Str("input", r.Input).Int("issues", len(r.Issues)).Msg("validated")
			}
			switch {
			case output == "text":
				for _, r := range results {
					a.printText(r)
				}
			case len(results) == 1:
				err = a.print(results[0].validateOut)
			default:
				err = a.print(results)
			}
			if err != nil {
				return err
			}
			if failed > 0 {
				return errIssues
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "input format (json|yaml|msgpack|query); defaults to the file extension, then json")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format (json|text)")
	cmd.Flags().BoolVar(&doCoerce, "coerce", false, "coerce string values before validating")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored text output")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.GOMAXPROCS(0), "inputs validated in parallel")
	return cmd
}

func (a *app) check(shape *schema.Shape, data any, doCoerce bool) validateOut {
	if doCoerce {
		data = coerce.New(a.bundle.Registry, coerce.WithMaxDepth(a.maxDepth)).Coerce(shape, data)
	}
	v := validate.New(a.bundle.Registry, validate.WithMaxDepth(a.maxDepth), validate.WithLocale(a.locale))
	res := v.Validate(shape, data)
	out := validateOut{OK: res.OK(), Issues: make([]issueOut, 0, len(res.Issues))}
	for _, it := range res.Issues {
		out.Issues = append(out.Issues, issueOut{Code: it.Code, Pointer: it.Pointer(), Detail: it.Detail, Meta: it.Meta})
	}
	if res.OK() {
		out.Params = res.Params
	}
	return out
}

func (a *app) printText(r fileOut) {
	if r.OK {
		okColor.Fprintf(a.stdout, "%s: ok\n", r.Input)
		return
	}
	badColor.Fprintf(a.stdout, "%s: %d issue(s)\n", r.Input, len(r.Issues))
	for _, it := range r.Issues {
		fmt.Fprintf(a.stdout, "  %s %s %s\n", ptrColor.Sprint(it.Pointer), it.Code, detailText.Sprint(it.Detail))
	}
}

func (a *app) coerceCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "coerce <contract.action.request|response> [input]",
		Short: "Print input with values converted to their declared types",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			shape, err := a.shape(args[0])
			if err != nil {
				return err
			}
			data, err := a.input(args[1:], format)
			if err != nil {
				return err
			}
			return a.print(coerce.New(a.bundle.Registry, coerce.WithMaxDepth(a.maxDepth)).Coerce(shape, data))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "input format (json|yaml|msgpack|query)")
	return cmd
}

type definitionOut struct {
	Scope string `json:"scope"`
	Kind  string `json:"kind"`
	Name  string `json:"name"`
}

type typesOut struct {
	Shapes      []string        `json:"shapes"`
	Definitions []definitionOut `json:"definitions"`
	Unresolved  []definitionOut `json:"unresolved,omitempty"`
}

func (a *app) typesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List shapes, named definitions and unresolved references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := a.bundle.Registry
			out := typesOut{Shapes: a.bundle.Keys(), Definitions: []definitionOut{}}
			for _, d := range reg.Definitions() {
				out.Definitions = append(out.Definitions, definitionOut{Scope: d.Scope.String(), Kind: d.Kind.String(), Name: d.Name})
			}
			for _, u := range reg.Unresolved() {
				out.Unresolved = append(out.Unresolved, definitionOut{Scope: u.Scope.String(), Kind: u.Kind.String(), Name: u.Name})
			}
			return a.print(out)
		},
	}
}

func (a *app) shape(key string) (*schema.Shape, error) {
	s, ok := a.bundle.Shape(key)
	if !ok {
		return nil, fmt.Errorf("no shape %q (have %s)", key, strings.Join(a.bundle.Keys(), ", "))
	}
	return s, nil
}

func (a *app) input(args []string, format string) (any, error) {
	var raw []byte
	var err error
	name := "-"
	if len(args) > 0 {
		name = args[0]
	}
	if name == "-" {
		raw, err = io.ReadAll(a.stdin)
	} else {
		raw, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, err
	}
	if format == "" {
		switch strings.ToLower(filepath.Ext(name)) {
		case ".yaml", ".yml":
			format = "yaml"
		case ".msgpack", ".mp":
			format = "msgpack"
		default:
			format = "json"
		}
	}
	switch strings.ToLower(format) {
	case "json":
		return source.JSONBytes(raw, source.Strict())
	case "yaml":
		return source.YAMLBytes(raw)
	case "msgpack":
		return source.MsgpackBytes(raw)
	case "query":
		return source.Query(string(bytes.TrimSpace(raw)))
	}
	return nil, fmt.Errorf("unknown input format %q", format)
}

func (a *app) print(v any) error {
	b, err := j.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, string(b))
	return err
}
