package store

import (
	"io/fs"

	"github.com/Phonebooth/jesse/jesseerrors"
)

// LoaderOption is a function that configures a Loader.
type LoaderOption func(*Loader) error

// WithLogger sets the logger used for load diagnostics.
// The default is NopLogger.
func WithLogger(logger Logger) LoaderOption {
	return func(l *Loader) error {
		if logger == nil {
			return &jesseerrors.ConfigError{Option: "logger", Message: "logger must not be nil"}
		}
		l.logger = logger
		return nil
	}
}

// WithFS reads sources from fsys instead of the operating system filesystem.
// Directory arguments to Update are then fsys-relative. This is the seam for
// substituting a remote or in-memory source of schema bytes.
func WithFS(fsys fs.FS) LoaderOption {
	return func(l *Loader) error {
		if fsys == nil {
			return &jesseerrors.ConfigError{Option: "fs", Message: "fs must not be nil"}
		}
		l.fsys = fsys
		return nil
	}
}
