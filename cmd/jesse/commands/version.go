package commands

import (
	"errors"
	"flag"
	"fmt"

	jesse "github.com/Phonebooth/jesse"
	"github.com/Phonebooth/jesse/internal/cliutil"
)

// VersionFlags contains flags for the version command
type VersionFlags struct {
	Build  bool
	Format string
}

// SetupVersionFlags creates and configures a FlagSet for the version command.
// Returns the FlagSet and a VersionFlags struct with bound flag variables.
func SetupVersionFlags() (*flag.FlagSet, *VersionFlags) {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	flags := &VersionFlags{}

	fs.BoolVar(&flags.Build, "build", false, "show full build metadata")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: jesse version [flags]\n\n")
		cliutil.Writef(fs.Output(), "Show version information.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  jesse version\n")
		cliutil.Writef(fs.Output(), "  jesse version --build\n")
		cliutil.Writef(fs.Output(), "  jesse version --format json | jq '.commit'\n")
	}

	return fs, flags
}

// buildReport is the structured form of the build metadata.
type buildReport struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

// HandleVersion executes the version command
func HandleVersion(args []string) error {
	fs, flags := SetupVersionFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 0 {
		fs.Usage()
		return fmt.Errorf("version command takes no positional arguments")
	}

	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	if flags.Format == FormatJSON || flags.Format == FormatYAML {
		return OutputStructured(buildReport{
			Version:   jesse.Version(),
			Commit:    jesse.Commit(),
			BuildTime: jesse.BuildTime(),
			GoVersion: jesse.GoVersion(),
		}, flags.Format)
	}

	if flags.Build {
		fmt.Println(jesse.BuildInfo())
		return nil
	}

	fmt.Printf("jesse v%s\n", jesse.Version())
	return nil
}
