package commands

import (
	"errors"
	"flag"
	"fmt"
	"os"

	jesse "github.com/Phonebooth/jesse"
	"github.com/Phonebooth/jesse/internal/cliutil"
	"github.com/Phonebooth/jesse/internal/issues"
	"github.com/Phonebooth/jesse/internal/lint"
	"github.com/Phonebooth/jesse/internal/severity"
	"github.com/Phonebooth/jesse/validator"
)

// LintFlags contains flags for the lint command
type LintFlags struct {
	Draft  string
	Quiet  bool
	Format string
}

// SetupLintFlags creates and configures a FlagSet for the lint command.
// Returns the FlagSet and a LintFlags struct with bound flag variables.
func SetupLintFlags() (*flag.FlagSet, *LintFlags) {
	fs := flag.NewFlagSet("lint", flag.ContinueOnError)
	flags := &LintFlags{}

	fs.StringVar(&flags.Draft, "draft", "", "dialect assumed when the schema has no $schema declaration: draft3 (default) or draft4")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: only output the lint result, no diagnostic messages")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: only output the lint result, no diagnostic messages")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: jesse lint [flags] <schema-file|->\n\n")
		cliutil.Writef(fs.Output(), "Check a JSON Schema document for structural faults and common pitfalls.\n\n")
		cliutil.Writef(fs.Output(), "Error findings mean the schema cannot be used for validation. Warnings\n")
		cliutil.Writef(fs.Output(), "and notes flag constructs that are legal but probably not what the\n")
		cliutil.Writef(fs.Output(), "author intended, such as bounds that have no effect.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  jesse lint account.json\n")
		cliutil.Writef(fs.Output(), "  jesse lint --draft draft4 account.yaml\n")
		cliutil.Writef(fs.Output(), "  cat account.json | jesse lint -\n")
		cliutil.Writef(fs.Output(), "  jesse lint --format json account.json | jq '.findings'\n")
		cliutil.Writef(fs.Output(), "\nExit Codes:\n")
		cliutil.Writef(fs.Output(), "  0    No error-severity findings\n")
		cliutil.Writef(fs.Output(), "  1    The schema has at least one structural fault\n")
	}

	return fs, flags
}

// lintFinding is one lint finding in a structured report.
type lintFinding struct {
	Severity string `json:"severity" yaml:"severity"`
	Path     string `json:"path" yaml:"path"`
	Message  string `json:"message" yaml:"message"`
}

// lintReport is the structured result of a lint run.
type lintReport struct {
	Valid        bool          `json:"valid" yaml:"valid"`
	Schema       string        `json:"schema" yaml:"schema"`
	ErrorCount   int           `json:"error_count" yaml:"error_count"`
	WarningCount int           `json:"warning_count" yaml:"warning_count"`
	InfoCount    int           `json:"info_count" yaml:"info_count"`
	Findings     []lintFinding `json:"findings,omitempty" yaml:"findings,omitempty"`
}

// HandleLint executes the lint command
func HandleLint(args []string) error {
	fs, flags := SetupLintFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("lint command requires exactly one schema file path or '-' for stdin")
	}

	schemaPath := fs.Arg(0)

	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	opts := []validator.Option{}
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

	data, err := cliutil.ReadInput(schemaPath)
	if err != nil {
		return err
	}

	findings := lint.CheckBytes(v, data)

	report := lintReport{
		Schema:       FormatInputPath(schemaPath),
		ErrorCount:   issues.Count(findings, severity.SeverityError),
		WarningCount: issues.Count(findings, severity.SeverityWarning),
		InfoCount:    issues.Count(findings, severity.SeverityInfo),
	}
	report.Valid = report.ErrorCount == 0
	for _, f := range findings {
		report.Findings = append(report.Findings, lintFinding{
			Severity: f.Severity.String(),
			Path:     f.Path,
			Message:  f.Message,
		})
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

	// Text format output
	if !flags.Quiet {
		cliutil.Writef(os.Stderr, "jesse version: %s\n", jesse.Version())
		cliutil.Writef(os.Stderr, "Schema: %s\n\n", report.Schema)

		if len(findings) > 0 {
			cliutil.Writef(os.Stderr, "Findings (%d):\n", len(findings))
			for _, f := range findings {
				cliutil.Writef(os.Stderr, "  %s\n", renderIssue(f))
			}
			cliutil.Writef(os.Stderr, "\n")
		}

		if report.Valid {
			cliutil.Writef(os.Stderr, "%s Schema is usable", okMark)
			if report.WarningCount > 0 || report.InfoCount > 0 {
				cliutil.Writef(os.Stderr, " (%d warning(s), %d note(s))", report.WarningCount, report.InfoCount)
			}
			cliutil.Writef(os.Stderr, "\n")
		} else {
			cliutil.Writef(os.Stderr, "%s Schema has %d structural fault(s)\n", failMark, report.ErrorCount)
		}
	}

	if !report.Valid {
		os.Exit(1)
	}

	return nil
}
