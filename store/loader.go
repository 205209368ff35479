package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Phonebooth/jesse/jesseerrors"
)

// ErrRejected marks a parsed document that the accept function refused.
// It appears as the Reason of the corresponding SourceFailure.
var ErrRejected = errors.New("document rejected by accept function")

// ParseFunc decodes raw source bytes into a schema document.
type ParseFunc func(data []byte) (any, error)

// AcceptFunc decides whether a parsed document may enter the store.
type AcceptFunc func(v any) bool

// KeyFunc derives the primary store key from an accepted document.
// An error excludes the document and is reported as a source failure.
type KeyFunc func(v any) (string, error)

// Loader reads schema sources from a directory and republishes the stale
// ones into a Store.
//
// Staleness is per source: a source is reloaded when the store has no
// recorded modification time under the source's stem, or when its current
// modification time is strictly newer than the recorded one. An unchanged
// directory therefore reloads nothing. Sources that fail to read, parse, or
// gain acceptance never block the others; they are collected and reported
// after the batch.
type Loader struct {
	store  *Store
	fsys   fs.FS
	logger Logger
}

// NewLoader returns a Loader that publishes into st.
func NewLoader(st *Store, opts ...LoaderOption) (*Loader, error) {
	if st == nil {
		return nil, &jesseerrors.ConfigError{Option: "store", Message: "store must not be nil"}
	}
	l := &Loader{store: st, logger: NopLogger{}}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, fmt.Errorf("store: invalid loader option: %w", err)
		}
	}
	return l, nil
}

// Update enumerates the sources directly under dir (no recursion), reloads
// every stale one, and publishes each accepted document under
// key(document). Accepted entries are in the store by the time Update
// returns, regardless of how the other sources fared.
//
// The returned error is nil when every source loaded cleanly, a
// *jesseerrors.UpdateError listing the rejected sources when some failed,
// or a plain error when dir itself cannot be enumerated.
//
// Concurrent Update calls against the same directory are not serialized
// here; callers that need that guarantee serialize externally.
func (l *Loader) Update(dir string, parse ParseFunc, accept AcceptFunc, key KeyFunc) error {
	if parse == nil || accept == nil || key == nil {
		return &jesseerrors.ConfigError{
			Option:  "update",
			Message: "parse, accept, and key functions must not be nil",
		}
	}

	sources, err := l.readDir(dir)
	if err != nil {
		return fmt.Errorf("enumerating schema sources in %s: %w", dir, err)
	}

	var failures []jesseerrors.SourceFailure
	loaded := 0
	for _, src := range sources {
		if src.IsDir() {
			continue
		}
		name := src.Name()
		info, err := src.Info()
		if err != nil {
			failures = append(failures, jesseerrors.SourceFailure{
				SourceID: name,
				Reason:   fmt.Errorf("reading source metadata: %w", err),
			})
			continue
		}
		modTime := info.ModTime()
		stem := strings.TrimSuffix(name, filepath.Ext(name))

		if recorded, ok := l.store.SourceModTime(stem); ok && !modTime.After(recorded) {
			l.logger.Debug("source unchanged", "source", name, "mtime", modTime)
			continue
		}

		data, err := l.readFile(dir, name)
		if err != nil {
			failures = append(failures, jesseerrors.SourceFailure{
				SourceID: name,
				ModTime:  modTime,
				Reason:   fmt.Errorf("reading source: %w", err),
			})
			continue
		}

		doc, err := parse(data)
		if err != nil {
			l.logger.Warn("source failed to parse", "source", name, "error", err)
			failures = append(failures, jesseerrors.SourceFailure{
				SourceID: name,
				ModTime:  modTime,
				Reason:   err,
			})
			continue
		}

		if !accept(doc) {
			l.logger.Warn("source rejected", "source", name)
			failures = append(failures, jesseerrors.SourceFailure{
				SourceID: name,
				ModTime:  modTime,
				Reason:   ErrRejected,
			})
			continue
		}

		k, err := key(doc)
		if err != nil {
			l.logger.Warn("source has no usable key", "source", name, "error", err)
			failures = append(failures, jesseerrors.SourceFailure{
				SourceID: name,
				ModTime:  modTime,
				Reason:   fmt.Errorf("deriving key: %w", err),
			})
			continue
		}

		l.store.Put(Entry{Key: k, Source: stem, ModTime: modTime, Schema: doc})
		l.logger.Debug("schema loaded", "source", name, "key", k, "mtime", modTime)
		loaded++
	}

	l.logger.Info("schema update complete", "dir", dir, "loaded", loaded, "failed", len(failures))
	if len(failures) > 0 {
		return &jesseerrors.UpdateError{Dir: dir, Failures: failures}
	}
	return nil
}

func (l *Loader) readDir(dir string) ([]fs.DirEntry, error) {
	if l.fsys != nil {
		return fs.ReadDir(l.fsys, dir)
	}
	return os.ReadDir(dir)
}

func (l *Loader) readFile(dir, name string) ([]byte, error) {
	if l.fsys != nil {
		return fs.ReadFile(l.fsys, path.Join(dir, name))
	}
	return os.ReadFile(filepath.Join(dir, name))
}
