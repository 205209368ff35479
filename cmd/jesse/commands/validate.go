package commands

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	jesse "github.com/Phonebooth/jesse"
	"github.com/Phonebooth/jesse/codec"
	"github.com/Phonebooth/jesse/internal/cliutil"
	"github.com/Phonebooth/jesse/jesseerrors"
	"github.com/Phonebooth/jesse/validator"
)

// ValidateFlags contains flags for the validate command
type ValidateFlags struct {
	Schema string
	Draft  string
	All    bool
	Quiet  bool
	Format string
}

// SetupValidateFlags creates and configures a FlagSet for the validate command.
// Returns the FlagSet and a ValidateFlags struct with bound flag variables.
func SetupValidateFlags() (*flag.FlagSet, *ValidateFlags) {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	flags := &ValidateFlags{}

	fs.StringVar(&flags.Schema, "s", "", "path to the schema document, or '-' for stdin (required)")
	fs.StringVar(&flags.Schema, "schema", "", "path to the schema document, or '-' for stdin (required)")
	fs.StringVar(&flags.Draft, "draft", "", "dialect assumed when the schema has no $schema declaration: draft3 (default) or draft4")
	fs.BoolVar(&flags.All, "a", false, "collect all validation errors instead of stopping at the first")
	fs.BoolVar(&flags.All, "all", false, "collect all validation errors instead of stopping at the first")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: only output the validation result, no diagnostic messages")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: only output the validation result, no diagnostic messages")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: jesse validate [flags] -s <schema> <data-file|->\n\n")
		cliutil.Writef(fs.Output(), "Validate a JSON or YAML document against a JSON Schema (draft 3 or draft 4).\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nOutput Formats:\n")
		cliutil.Writef(fs.Output(), "  text (default)  Human-readable text output\n")
		cliutil.Writef(fs.Output(), "  json            JSON format for programmatic processing\n")
		cliutil.Writef(fs.Output(), "  yaml            YAML format for programmatic processing\n")
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  jesse validate -s account.json user.json\n")
		cliutil.Writef(fs.Output(), "  jesse validate -s account.json --all user.json\n")
		cliutil.Writef(fs.Output(), "  jesse validate -s account.json --draft draft4 user.yaml\n")
		cliutil.Writef(fs.Output(), "  cat user.json | jesse validate -q -s account.json -\n")
		cliutil.Writef(fs.Output(), "  jesse validate -s account.json --format json user.json | jq '.valid'\n")
		cliutil.Writef(fs.Output(), "\nPipelining:\n")
		cliutil.Writef(fs.Output(), "  - Use '-' as the data file path to read the document from stdin\n")
		cliutil.Writef(fs.Output(), "  - Use --quiet/-q to suppress diagnostic output for pipelining\n")
		cliutil.Writef(fs.Output(), "  - Use --format json/yaml for structured output that can be parsed\n")
		cliutil.Writef(fs.Output(), "\nExit Codes:\n")
		cliutil.Writef(fs.Output(), "  0    Document is valid\n")
		cliutil.Writef(fs.Output(), "  1    Document is invalid, or the schema itself is malformed\n")
	}

	return fs, flags
}

// validationIssue is one validation failure in a structured report.
type validationIssue struct {
	Path    string `json:"path" yaml:"path"`
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

// validationReport is the structured result of a validate run.
type validationReport struct {
	Valid      bool              `json:"valid" yaml:"valid"`
	Schema     string            `json:"schema" yaml:"schema"`
	Data       string            `json:"data" yaml:"data"`
	ErrorCount int               `json:"error_count" yaml:"error_count"`
	Errors     []validationIssue `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// HandleValidate executes the validate command
func HandleValidate(args []string) error {
	fs, flags := SetupValidateFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("validate command requires exactly one data file path or '-' for stdin")
	}

	dataPath := fs.Arg(0)

	// Validate flags early to fail fast before reading any input
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}
	if flags.Schema == "" {
		fs.Usage()
		return fmt.Errorf("schema is required (use -s or --schema)")
	}
	if flags.Schema == StdinFilePath && dataPath == StdinFilePath {
		return fmt.Errorf("schema and data cannot both be read from stdin")
	}

	opts := []validator.Option{}
	if flags.All {
		opts = append(opts, validator.WithErrorMode(validator.CollectAll))
	}
	if flags.Draft != "" {
		d, err := validator.ParseDraft(flags.Draft)
		if err != nil {
			return err
		}
		opts = append(opts, validator.WithDefaultDraft(d))
	}
	v, err := validator.New(opts...)
	if err != nil {
		return err
	}

	schemaBytes, err := cliutil.ReadInput(flags.Schema)
	if err != nil {
		return err
	}
	schema, err := codec.Unmarshal(schemaBytes)
	if err != nil {
		return fmt.Errorf("parsing schema %s: %w", FormatInputPath(flags.Schema), err)
	}

	dataBytes, err := cliutil.ReadInput(dataPath)
	if err != nil {
		return err
	}
	value, err := codec.Unmarshal(dataBytes)
	if err != nil {
		return fmt.Errorf("parsing data %s: %w", FormatInputPath(dataPath), err)
	}

	startTime := time.Now()
	verr := v.Validate(value, schema)
	totalTime := time.Since(startTime)

	report := validationReport{
		Valid:  verr == nil,
		Schema: FormatInputPath(flags.Schema),
		Data:   FormatInputPath(dataPath),
	}
	if verr != nil {
		var (
			list   jesseerrors.DataErrors
			single *jesseerrors.DataError
		)
		switch {
		case errors.As(verr, &list):
			for _, e := range list {
				report.Errors = append(report.Errors, validationIssue{
					Path:    e.Path,
					Kind:    string(e.Kind),
					Message: e.Message,
				})
			}
		case errors.As(verr, &single):
			report.Errors = []validationIssue{{
				Path:    single.Path,
				Kind:    string(single.Kind),
				Message: single.Message,
			}}
		default:
			// A malformed schema, broken reference, or resource limit: the
			// document was never judged, so this is a command failure rather
			// than a validation verdict.
			return fmt.Errorf("validating data: %w", verr)
		}
		report.ErrorCount = len(report.Errors)
	}

	// Handle structured output formats
	if flags.Format == FormatJSON || flags.Format == FormatYAML {
		if err := OutputStructured(report, flags.Format); err != nil {
			return err
		}
		if !report.Valid {
			os.Exit(1)
		}
		return nil
	}

	// Text format output (always to stderr so stdout stays pipeable)
	if !flags.Quiet {
		cliutil.Writef(os.Stderr, "jesse version: %s\n", jesse.Version())
		cliutil.Writef(os.Stderr, "Schema: %s\n", report.Schema)
		cliutil.Writef(os.Stderr, "Data: %s\n", report.Data)
		cliutil.Writef(os.Stderr, "Total Time: %v\n\n", totalTime)

		if len(report.Errors) > 0 {
			cliutil.Writef(os.Stderr, "Errors (%d):\n", report.ErrorCount)
			for _, e := range report.Errors {
				cliutil.Writef(os.Stderr, "  %s at %s: %s\n", e.Kind, e.Path, e.Message)
			}
			cliutil.Writef(os.Stderr, "\n")
		}

		if report.Valid {
			cliutil.Writef(os.Stderr, "%s Validation passed\n", okMark)
		} else {
			cliutil.Writef(os.Stderr, "%s Validation failed: %d error(s)\n", failMark, report.ErrorCount)
		}
	}

	if !report.Valid {
		os.Exit(1)
	}

	return nil
}
