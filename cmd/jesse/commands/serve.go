package commands

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	jesse "github.com/Phonebooth/jesse"
	"github.com/Phonebooth/jesse/codec"
	"github.com/Phonebooth/jesse/internal/cliutil"
	"github.com/Phonebooth/jesse/internal/httpserver"
	"github.com/Phonebooth/jesse/jesseerrors"
	"github.com/Phonebooth/jesse/store"
	"github.com/Phonebooth/jesse/validator"
)

// ServeFlags contains flags for the serve command
type ServeFlags struct {
	Addr       string
	SchemasDir string
	Verbose    bool
}

// SetupServeFlags creates and configures a FlagSet for the serve command.
// Returns the FlagSet and a ServeFlags struct with bound flag variables.
func SetupServeFlags() (*flag.FlagSet, *ServeFlags) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	flags := &ServeFlags{}

	fs.StringVar(&flags.Addr, "addr", ":8080", "address to listen on")
	fs.StringVar(&flags.SchemasDir, "schemas", "", "directory of schema sources to preload into the store")
	fs.BoolVar(&flags.Verbose, "verbose", false, "log at debug level")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: jesse serve [flags]\n\n")
		cliutil.Writef(fs.Output(), "Serve the schema store and validation HTTP API.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nEndpoints:\n")
		cliutil.Writef(fs.Output(), "  GET  /healthz                 liveness and store size\n")
		cliutil.Writef(fs.Output(), "  POST /v1/validate             validate a document against an inline or stored schema\n")
		cliutil.Writef(fs.Output(), "  GET  /v1/schemas              list stored schema keys\n")
		cliutil.Writef(fs.Output(), "  PUT  /v1/schemas/{key}        store a schema under a URL-escaped key\n")
		cliutil.Writef(fs.Output(), "  GET  /v1/schemas/{key}        fetch a stored schema\n")
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  jesse serve\n")
		cliutil.Writef(fs.Output(), "  jesse serve --addr :9090 --schemas ./schemas\n")
		cliutil.Writef(fs.Output(), "  curl -s localhost:8080/healthz\n")
		cliutil.Writef(fs.Output(), "\nNotes:\n")
		cliutil.Writef(fs.Output(), "  - Preloaded sources that fail to parse or lint are skipped with a warning\n")
		cliutil.Writef(fs.Output(), "  - Schema keys in request paths must be URL-path-escaped\n")
	}

	return fs, flags
}

// HandleServe executes the serve command
func HandleServe(args []string) error {
	fs, flags := SetupServeFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 0 {
		fs.Usage()
		return fmt.Errorf("serve command takes no positional arguments")
	}

	level := slog.LevelInfo
	if flags.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	st := store.New()
	if flags.SchemasDir != "" {
		if err := preloadSchemas(st, flags.SchemasDir); err != nil {
			return err
		}
	}

	srv, err := httpserver.New(st, httpserver.WithLogger(store.NewSlogAdapter(logger)))
	if err != nil {
		return err
	}

	logger.Info("jesse API server listening",
		"version", jesse.Version(), "addr", flags.Addr, "schemas", st.Len())

	httpSrv := &http.Server{
		Addr:              flags.Addr,
		Handler:           srv.Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

// preloadSchemas loads every schema source in dir into the store. Sources
// that fail to parse, fail the structural check, or carry no id are skipped
// with a warning; only an unreadable directory aborts startup.
func preloadSchemas(st *store.Store, dir string) error {
	loader, err := store.NewLoader(st)
	if err != nil {
		return err
	}
	checker, err := validator.New()
	if err != nil {
		return err
	}
	accept := func(doc any) bool {
		return checker.CheckSchema(doc) == nil
	}

	if err := loader.Update(dir, codec.Unmarshal, accept, validator.SchemaID); err != nil {
		var uerr *jesseerrors.UpdateError
		if !errors.As(err, &uerr) {
			return err
		}
		cliutil.Writef(os.Stderr, "Skipped sources (%d):\n", len(uerr.Failures))
		for _, f := range uerr.Failures {
			cliutil.Writef(os.Stderr, "  %s: %v\n", f.SourceID, f.Reason)
		}
	}
	return nil
}
