// uexpr - expression compiler
//
// Compiles the expressions listed in a manifest, or a single expression given
// on the command line, and prints their values. Uses manual argument parsing
// like the other tools of this family (supports -mfile and -j4 style flags).
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kolkov/uexpr"
	"github.com/kolkov/uexpr/binding"
	"github.com/kolkov/uexpr/internal/env"
	"github.com/kolkov/uexpr/internal/logging"
	"github.com/kolkov/uexpr/internal/manifest"
)

// version is set at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	shortUsage = "usage: uexpr [-m manifest] [-D declaration] [-j N] [-d | -dt | -da] ['expression']"
	longUsage  = `Arguments:
  -m manifest       load options, classes, variables and expressions from
                    a YAML manifest (default: $XDG_CONFIG_HOME/uexpr/manifest.yaml)
  -D declaration    declaration name for a command line expression
                    (default "cli")
  -j N              compile with N parallel workers

Compiler options:
  --truthy          allow non-boolean conditions
  --no-fold         disable constant folding

Debugging arguments:
  -d                print parsed expressions and exit
  -dt               print resolved types and exit
  -da               print bytecode assembly and exit
  -v                verbose (debug) logging

Other:
  -h, --help        show this help message
  -version          show uexpr version and exit
`
)

// options collects the parsed command line.
type options struct {
	manifestPath string
	declaration  string
	workers      int
	truthy       bool
	noFold       bool
	debug        bool
	debugTypes   bool
	debugAsm     bool
	verbose      bool
	text         string
}

//nolint:gocyclo,funlen // CLI argument parsing is inherently complex
func parseArgs(args []string) (*options, error) {
	opts := &options{declaration: "cli"}

	var i int
	for i = 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			i++
			break
		}
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			break
		}

		switch arg {
		case "-m", "-D", "-j":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("flag needs an argument: %s", arg)
			}
			i++
			if err := opts.set(arg, args[i]); err != nil {
				return nil, err
			}
		case "--truthy":
			opts.truthy = true
		case "--no-fold":
			opts.noFold = true
		case "-d":
			opts.debug = true
		case "-dt":
			opts.debugTypes = true
		case "-da":
			opts.debugAsm = true
		case "-v":
			opts.verbose = true
		default:
			// Handle flags with no space: -mfile, -Dname, -j4
			if len(arg) > 2 && strings.ContainsRune("mDj", rune(arg[1])) {
				if err := opts.set(arg[:2], arg[2:]); err != nil {
					return nil, err
				}
				continue
			}
			return nil, fmt.Errorf("flag provided but not defined: %s", arg)
		}
	}

	rest := args[i:]
	switch len(rest) {
	case 0:
	case 1:
		opts.text = rest[0]
	default:
		return nil, errors.New(shortUsage)
	}
	return opts, nil
}

func (o *options) set(flag, value string) error {
	switch flag {
	case "-m":
		o.manifestPath = value
	case "-D":
		o.declaration = value
	case "-j":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid number of workers: %s", value)
		}
		o.workers = n
	}
	return nil
}

func main() {
	for _, arg := range os.Args[1:] {
		switch arg {
		case "-h", "--help":
			fmt.Printf("uexpr %s - expression compiler\n\n%s\n\n%s", version, shortUsage, longUsage)
			os.Exit(0)
		case "-version", "--version":
			fmt.Printf("uexpr version %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
			os.Exit(0)
		}
	}

	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		errorExit(err)
	}
	logging.InitializeWithOptions(&env.OSReader{}, logging.StaticDebug(opts.verbose))

	stdout := bufio.NewWriter(os.Stdout)
	code := run(context.Background(), opts, stdout, os.Stderr)
	_ = stdout.Flush()
	os.Exit(code)
}

// run executes the command and returns the process exit code.
func run(ctx context.Context, opts *options, stdout, stderr io.Writer) int {
	m, err := loadManifest(opts.manifestPath)
	if err != nil {
		fmt.Fprintf(stderr, "uexpr: %v\n", err)
		return 1
	}
	scope, err := m.Scope()
	if err != nil {
		fmt.Fprintf(stderr, "uexpr: %v\n", err)
		return 1
	}

	requests := make([]uexpr.Request, 0, len(m.Expressions)+1)
	if opts.text != "" {
		requests = append(requests, uexpr.Request{Declaration: opts.declaration, Text: opts.text})
	} else {
		for _, e := range m.Expressions {
			requests = append(requests, uexpr.Request{Declaration: e.Declaration, Text: e.Text})
		}
	}
	if len(requests) == 0 {
		fmt.Fprintln(stderr, "uexpr: no expressions to compile")
		fmt.Fprintln(stderr, shortUsage)
		return 1
	}

	c := uexpr.New(compilerOptions(m, opts)...)
	report := c.CompileAll(ctx, requests, scope)

	code := 0
	for _, res := range report.Results {
		if res.Err != nil {
			printError(stderr, res.Err)
			code = 1
			continue
		}
		if err := show(stdout, res, scope, opts); err != nil {
			printError(stderr, err)
			code = 1
		}
	}
	return code
}

func loadManifest(path string) (*manifest.Manifest, error) {
	if path == "" {
		found, err := manifest.Find()
		if err != nil {
			// No manifest: an empty scope.
			logging.Debugw("no manifest found", "error", err)
			return &manifest.Manifest{}, nil
		}
		path = found
	}
	logging.Debugw("loading manifest", "path", path)
	return manifest.Load(path)
}

func compilerOptions(m *manifest.Manifest, opts *options) []uexpr.Option {
	out := []uexpr.Option{
		uexpr.WithCoerceTruthiness(m.Options.CoerceTruthiness || opts.truthy),
		uexpr.WithMaxExpressionLength(m.Options.MaxExpressionLength),
		uexpr.WithWorkers(m.Options.Workers),
	}
	if m.Options.ConstantFolding != nil {
		out = append(out, uexpr.WithConstantFolding(*m.Options.ConstantFolding))
	}
	if opts.noFold {
		out = append(out, uexpr.WithConstantFolding(false))
	}
	if opts.workers > 0 {
		out = append(out, uexpr.WithWorkers(opts.workers))
	}
	return out
}

// show prints one compiled expression according to the debug flags, or
// evaluates it.
func show(w io.Writer, res uexpr.Result, ctx binding.Context, opts *options) error {
	expr := res.Expression
	switch {
	case opts.debug:
		fmt.Fprintf(w, "%s: %s\n", res.Declaration, expr.AST())
	case opts.debugTypes:
		fmt.Fprintf(w, "%s: %s\n", res.Declaration, expr.Type())
	case opts.debugAsm:
		fmt.Fprintf(w, "%s (%s):\n%s\n", res.Declaration, expr.Name(), expr.Disassemble())
	default:
		v, err := expr.Evaluate(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s = %s\n", res.Declaration, format(v))
	}
	return nil
}

func format(v any) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	if c, ok := v.(uint16); ok {
		return strconv.QuoteRune(rune(c))
	}
	if o, ok := v.(*binding.Object); ok {
		return fmt.Sprintf("%s%v", o.Class, o.Fields)
	}
	return fmt.Sprint(v)
}

// printError prints err, with a source pointer when it has one.
func printError(w io.Writer, err error) {
	var pretty interface{ Pretty() string }
	if errors.As(err, &pretty) {
		fmt.Fprintf(w, "uexpr: %v\n%s\n", err, pretty.Pretty())
		return
	}
	fmt.Fprintf(w, "uexpr: %v\n", err)
}

// errorExit prints error and exits with code 1
func errorExit(err error) {
	fmt.Fprintf(os.Stderr, "uexpr: %v\n", err)
	os.Exit(1)
}
