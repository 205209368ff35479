package commands

import (
	"errors"
	"flag"
	"fmt"
	"os"

	jesse "github.com/Phonebooth/jesse"
	"github.com/Phonebooth/jesse/codec"
	"github.com/Phonebooth/jesse/generator"
	"github.com/Phonebooth/jesse/internal/cliutil"
	"github.com/Phonebooth/jesse/jesseerrors"
	"github.com/Phonebooth/jesse/store"
	"github.com/Phonebooth/jesse/validator"
)

// GenerateFlags contains flags for the generate command
type GenerateFlags struct {
	Output      string
	PackageName string
	NoPointers  bool
	NoFormat    bool
	Quiet       bool
}

// SetupGenerateFlags creates and configures a FlagSet for the generate command.
// Returns the FlagSet and a GenerateFlags struct with bound flag variables.
func SetupGenerateFlags() (*flag.FlagSet, *GenerateFlags) {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	flags := &GenerateFlags{}

	fs.StringVar(&flags.Output, "o", "", "output directory for generated files (required)")
	fs.StringVar(&flags.Output, "output", "", "output directory for generated files (required)")
	fs.StringVar(&flags.PackageName, "p", "schemas", "Go package name for generated code")
	fs.StringVar(&flags.PackageName, "package", "schemas", "Go package name for generated code")
	fs.BoolVar(&flags.NoPointers, "no-pointers", false, "don't use pointer types for optional fields")
	fs.BoolVar(&flags.NoFormat, "no-format", false, "don't run generated code through gofmt")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: no diagnostic messages")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: no diagnostic messages")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: jesse generate [flags] -o <dir> <schema-file...|schema-dir|->\n\n")
		cliutil.Writef(fs.Output(), "Generate Go type declarations from JSON Schema documents.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  jesse generate -o ./types account.json\n")
		cliutil.Writef(fs.Output(), "  jesse generate -o ./types -p models account.json address.json\n")
		cliutil.Writef(fs.Output(), "  jesse generate -o ./types ./schemas\n")
		cliutil.Writef(fs.Output(), "  cat account.json | jesse generate -o ./types -\n")
		cliutil.Writef(fs.Output(), "\nNotes:\n")
		cliutil.Writef(fs.Output(), "  - A single directory argument is loaded the way the schema store loader\n")
		cliutil.Writef(fs.Output(), "    loads it: every regular file in the directory (non-recursive), keyed by\n")
		cliutil.Writef(fs.Output(), "    the schema's id; sources that fail to parse or lint are skipped\n")
		cliutil.Writef(fs.Output(), "  - Schemas may be JSON or YAML; generated code is always Go\n")
		cliutil.Writef(fs.Output(), "  - Unsupported constructs are reported as warnings and mapped to any\n")
	}

	return fs, flags
}

// HandleGenerate executes the generate command
func HandleGenerate(args []string) error {
	fs, flags := SetupGenerateFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("generate command requires at least one schema file, a schema directory, or '-' for stdin")
	}

	if flags.Output == "" {
		fs.Usage()
		return fmt.Errorf("output directory is required (use -o or --output)")
	}

	g := generator.New()
	g.PackageName = flags.PackageName
	g.UsePointers = !flags.NoPointers
	g.Format = !flags.NoFormat

	var (
		result *generator.Result
		err    error
	)
	if dir := singleDirArg(fs.Args()); dir != "" {
		result, err = generateFromDir(g, dir, flags.Quiet)
	} else {
		result, err = generateFromFiles(g, fs.Args())
	}
	if err != nil {
		return err
	}

	if err := result.WriteFiles(flags.Output); err != nil {
		return fmt.Errorf("writing generated files: %w", err)
	}

	if !flags.Quiet {
		cliutil.Writef(os.Stderr, "jesse version: %s\n", jesse.Version())
		cliutil.Writef(os.Stderr, "Package: %s\n", result.PackageName)
		cliutil.Writef(os.Stderr, "Generated Types: %d\n", result.GeneratedTypes)
		cliutil.Writef(os.Stderr, "Generate Time: %v\n", result.GenerateTime)
		for _, f := range result.Files {
			cliutil.Writef(os.Stderr, "Output: %s/%s\n", flags.Output, f.Name)
		}
		cliutil.Writef(os.Stderr, "\n")

		if len(result.Issues) > 0 {
			cliutil.Writef(os.Stderr, "Issues (%d):\n", len(result.Issues))
			for _, issue := range result.Issues {
				cliutil.Writef(os.Stderr, "  %s\n", renderIssue(issue))
			}
			cliutil.Writef(os.Stderr, "\n")
		}

		if result.Success {
			cliutil.Writef(os.Stderr, "%s Generation completed", okMark)
			if result.WarningCount > 0 {
				cliutil.Writef(os.Stderr, " with %d warning(s)", result.WarningCount)
			}
			cliutil.Writef(os.Stderr, "\n")
		} else {
			cliutil.Writef(os.Stderr, "%s Generation completed with errors\n", failMark)
		}
	}

	if !result.Success {
		os.Exit(1)
	}

	return nil
}

// singleDirArg returns the argument when it is exactly one existing
// directory, and "" otherwise.
func singleDirArg(args []string) string {
	if len(args) != 1 || args[0] == StdinFilePath {
		return ""
	}
	info, err := os.Stat(args[0])
	if err != nil || !info.IsDir() {
		return ""
	}
	return args[0]
}

// generateFromDir loads every schema source in dir into a fresh store and
// generates types for the loaded set. Sources that fail to parse, lint, or
// carry no id are reported and skipped; they do not abort generation.
func generateFromDir(g *generator.Generator, dir string, quiet bool) (*generator.Result, error) {
	st := store.New()
	loader, err := store.NewLoader(st)
	if err != nil {
		return nil, err
	}

	checker, err := validator.New()
	if err != nil {
		return nil, err
	}
	accept := func(doc any) bool {
		return checker.CheckSchema(doc) == nil
	}

	if err := loader.Update(dir, codec.Unmarshal, accept, validator.SchemaID); err != nil {
		var uerr *jesseerrors.UpdateError
		if !errors.As(err, &uerr) {
			return nil, err
		}
		if !quiet {
			cliutil.Writef(os.Stderr, "Skipped sources (%d):\n", len(uerr.Failures))
			for _, f := range uerr.Failures {
				cliutil.Writef(os.Stderr, "  %s: %v\n", f.SourceID, f.Reason)
			}
			cliutil.Writef(os.Stderr, "\n")
		}
	}

	if st.Len() == 0 {
		return nil, fmt.Errorf("no usable schemas found in %s", dir)
	}
	return g.GenerateFromStore(st)
}

// generateFromFiles parses each path into a schema document and generates
// types for the set.
func generateFromFiles(g *generator.Generator, paths []string) (*generator.Result, error) {
	docs := make([]map[string]any, 0, len(paths))
	for _, path := range paths {
		data, err := cliutil.ReadInput(path)
		if err != nil {
			return nil, err
		}
		v, err := codec.Unmarshal(data)
		if err != nil {
			return nil, fmt.Errorf("parsing schema %s: %w", FormatInputPath(path), err)
		}
		doc, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("schema %s must be an object, got %T", FormatInputPath(path), v)
		}
		docs = append(docs, doc)
	}
	return g.Generate(docs...)
}
