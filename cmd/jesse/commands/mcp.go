package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/Phonebooth/jesse/internal/cliutil"
	"github.com/Phonebooth/jesse/internal/mcpserver"
)

// SetupMCPFlags creates and configures a FlagSet for the mcp command.
// The command takes no flags beyond --help; the FlagSet exists for help
// output and argument validation.
func SetupMCPFlags() *flag.FlagSet {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: jesse mcp\n\n")
		cliutil.Writef(fs.Output(), "Serve jesse's validation tools over the Model Context Protocol on stdio.\n\n")
		cliutil.Writef(fs.Output(), "Tools:\n")
		cliutil.Writef(fs.Output(), "  validate       Validate a document against an inline or stored schema\n")
		cliutil.Writef(fs.Output(), "  lint           Check a schema document for faults and pitfalls\n")
		cliutil.Writef(fs.Output(), "  load_schemas   Load a directory of schema sources into the session store\n")
		cliutil.Writef(fs.Output(), "  schema_keys    List the schema keys held in the session store\n")
		cliutil.Writef(fs.Output(), "\nThe session's schema store lives for the lifetime of the connection.\n")
		cliutil.Writef(fs.Output(), "Configure your MCP client to run: jesse mcp\n")
	}

	return fs
}

// HandleMCP executes the mcp command
func HandleMCP(args []string) error {
	fs := SetupMCPFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 0 {
		fs.Usage()
		return fmt.Errorf("mcp command takes no positional arguments")
	}

	if err := mcpserver.Run(context.Background()); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
