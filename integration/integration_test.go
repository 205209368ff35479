//go:build integration

// Package integration runs jesse end to end: every corpus case is judged in
// both failure delivery modes, and the schemas directory feeds a full
// loader-store-validator round trip including a reference that crosses
// documents.
//
// Run with: go test -tags=integration ./integration/... -v
package integration

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Phonebooth/jesse/codec"
	"github.com/Phonebooth/jesse/integration/harness"
	"github.com/Phonebooth/jesse/jesseerrors"
	"github.com/Phonebooth/jesse/store"
	"github.com/Phonebooth/jesse/validator"
)

// getIntegrationDir returns the absolute path to the integration directory.
func getIntegrationDir(t *testing.T) string {
	t.Helper()

	// Works whether the test runs from the repo root or from integration/
	wd, err := os.Getwd()
	require.NoError(t, err, "failed to get working directory")

	if filepath.Base(wd) == "integration" {
		return wd
	}

	integrationDir := filepath.Join(wd, "integration")
	if _, err := os.Stat(integrationDir); err == nil {
		return integrationDir
	}

	integrationDir = filepath.Join(filepath.Dir(wd), "integration")
	if _, err := os.Stat(integrationDir); err == nil {
		return integrationDir
	}

	require.Failf(t, "could not find integration directory", "from %s", wd)
	return ""
}

// TestCorpusSchemasAreSound verifies every corpus schema passes the
// structural check before any verdict depends on it.
func TestCorpusSchemasAreSound(t *testing.T) {
	integrationDir := getIntegrationDir(t)
	corpusDir := filepath.Join(integrationDir, "corpus")

	groups, err := harness.LoadAllCorpora(corpusDir)
	require.NoError(t, err, "failed to load corpus")
	require.NotEmpty(t, groups, "corpus is empty")
	t.Logf("Found %d corpus groups", len(groups))

	v, err := validator.New()
	require.NoError(t, err)

	for _, g := range groups {
		t.Run(harness.GroupTestName(g, corpusDir), func(t *testing.T) {
			assert.NoError(t, v.CheckSchema(g.Schema), "corpus schema is not structurally sound")
		})
	}
}

// TestCorpus judges every corpus case under both failure delivery modes.
// The verdict must agree in both; collect mode must additionally deliver
// structured entries for every failing case.
func TestCorpus(t *testing.T) {
	integrationDir := getIntegrationDir(t)
	corpusDir := filepath.Join(integrationDir, "corpus")

	groups, err := harness.LoadAllCorpora(corpusDir)
	require.NoError(t, err, "failed to load corpus")
	if len(groups) == 0 {
		t.Skip("no corpus groups found")
	}

	cases := 0
	for _, g := range groups {
		cases += len(g.Tests)
	}
	t.Logf("Found %d groups holding %d cases", len(groups), cases)

	modes := []struct {
		name string
		mode validator.ErrorMode
	}{
		{"failfast", validator.FailFast},
		{"collect", validator.CollectAll},
	}

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			v, err := validator.New(validator.WithErrorMode(m.mode))
			require.NoError(t, err)

			for _, g := range groups {
				t.Run(harness.GroupTestName(g, corpusDir), func(t *testing.T) {
					for _, c := range g.Tests {
						t.Run(c.Description, func(t *testing.T) {
							err := v.Validate(c.Data, g.Schema)
							if c.Valid {
								assert.NoError(t, err, "wanted a pass")
								return
							}
							require.Error(t, err, "wanted a failure")
							assertDataVerdict(t, err, m.mode)
						})
					}
				})
			}
		})
	}
}

// assertDataVerdict checks that a corpus failure is a data verdict rather
// than a schema fault, in the delivery shape the mode promises.
func assertDataVerdict(t *testing.T, err error, mode validator.ErrorMode) {
	t.Helper()

	require.True(t, errors.Is(err, jesseerrors.ErrDataInvalid),
		"failure must be in the data-invalid family: %v", err)

	if mode == validator.CollectAll {
		var list jesseerrors.DataErrors
		require.True(t, errors.As(err, &list), "collect mode delivers DataErrors: %v", err)
		require.NotEmpty(t, list)
		for _, de := range list {
			assert.NotEmpty(t, de.Kind, "every entry carries a kind")
			assert.NotEmpty(t, de.Message, "every entry carries a message")
		}
		return
	}

	var de *jesseerrors.DataError
	require.True(t, errors.As(err, &de), "fail-fast delivers a single DataError: %v", err)
	assert.NotEmpty(t, de.Kind)
	assert.NotEmpty(t, de.Message)
}

// acceptSound is the loader accept policy used throughout: only schemas
// that pass the structural check enter the store.
func acceptSound(t *testing.T) store.AcceptFunc {
	t.Helper()
	checker, err := validator.New()
	require.NoError(t, err)
	return func(doc any) bool { return checker.CheckSchema(doc) == nil }
}

// TestStoreRoundTrip loads the schema fixtures through the directory loader
// and judges instances by key, crossing from the draft-4 account document
// into the draft-3 address document through the store.
func TestStoreRoundTrip(t *testing.T) {
	integrationDir := getIntegrationDir(t)
	schemasDir := filepath.Join(integrationDir, "schemas")

	st := store.New()
	loader, err := store.NewLoader(st)
	require.NoError(t, err)

	require.NoError(t, loader.Update(schemasDir, codec.Unmarshal, acceptSound(t), validator.SchemaID))
	require.Equal(t, 2, st.Len(), "both fixtures should load")

	v, err := validator.New(validator.WithStore(st), validator.WithErrorMode(validator.CollectAll))
	require.NoError(t, err)

	const accountKey = "http://example.com/integration/account#"

	t.Run("conforming document passes", func(t *testing.T) {
		account := map[string]any{
			"name":    "Robbie",
			"balance": 12.5,
			"address": map[string]any{
				"street": "5 Main St",
				"city":   "Springfield",
				"zip":    "01101",
			},
		}
		assert.NoError(t, v.ValidateByKey(account, accountKey))
	})

	t.Run("failure across the document boundary keeps its path", func(t *testing.T) {
		account := map[string]any{
			"name": "Robbie",
			"address": map[string]any{
				"street": "5 Main St",
			},
		}
		err := v.ValidateByKey(account, accountKey)
		require.Error(t, err)
		require.True(t, errors.Is(err, jesseerrors.ErrDataInvalid))

		var list jesseerrors.DataErrors
		require.True(t, errors.As(err, &list))
		require.Len(t, list, 1)
		assert.Equal(t, jesseerrors.KindMissingRequiredProperty, list[0].Kind)
		assert.Equal(t, "$.address.city", list[0].Path)
	})

	t.Run("referenced document applies its own keywords", func(t *testing.T) {
		account := map[string]any{
			"name": "Robbie",
			"address": map[string]any{
				"street": "5 Main St",
				"city":   "Springfield",
				"zip":    "none",
			},
		}
		err := v.ValidateByKey(account, accountKey)
		require.Error(t, err)
		var list jesseerrors.DataErrors
		require.True(t, errors.As(err, &list))
		require.Len(t, list, 1)
		assert.Equal(t, jesseerrors.KindNoMatch, list[0].Kind)
		assert.Equal(t, "$.address.zip", list[0].Path)
	})

	t.Run("unknown key is the store's not-found error", func(t *testing.T) {
		err := v.ValidateByKey(map[string]any{}, "http://example.com/integration/absent#")
		require.Error(t, err)
		assert.True(t, errors.Is(err, jesseerrors.ErrSchemaNotFound))
		assert.False(t, errors.Is(err, jesseerrors.ErrDataInvalid))
		assert.False(t, errors.Is(err, jesseerrors.ErrSchemaInvalid))
	})

	t.Run("unchanged directory reloads nothing", func(t *testing.T) {
		require.NoError(t, loader.Update(schemasDir, codec.Unmarshal, acceptSound(t), validator.SchemaID))
		assert.Equal(t, 2, st.Len())
	})
}

// TestLoaderPartialFailure checks that one bad source never blocks the rest:
// the good fixtures load and stay usable while the bad one is reported, and
// it stays stale so a later update retries it.
func TestLoaderPartialFailure(t *testing.T) {
	integrationDir := getIntegrationDir(t)
	schemasDir := filepath.Join(integrationDir, "schemas")

	dir := t.TempDir()
	for _, name := range []string{"account.json", "address.json"} {
		data, err := os.ReadFile(filepath.Join(schemasDir, name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	broken := []byte(`{"id": "http://example.com/integration/broken#", "type": 3}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), broken, 0o644))

	st := store.New()
	loader, err := store.NewLoader(st)
	require.NoError(t, err)
	accept := acceptSound(t)

	err = loader.Update(dir, codec.Unmarshal, accept, validator.SchemaID)
	require.Error(t, err)
	require.True(t, errors.Is(err, jesseerrors.ErrUpdateFailed))

	var ue *jesseerrors.UpdateError
	require.True(t, errors.As(err, &ue))
	require.Len(t, ue.Failures, 1)
	assert.Equal(t, "broken.json", ue.Failures[0].SourceID)
	assert.True(t, errors.Is(ue.Failures[0].Reason, store.ErrRejected))

	assert.Equal(t, 2, st.Len(), "the good sources loaded anyway")

	v, err := validator.New(validator.WithStore(st))
	require.NoError(t, err)
	address := map[string]any{"street": "5 Main St", "city": "Springfield"}
	assert.NoError(t, v.ValidateByKey(address, "http://example.com/integration/address#"))

	// Failures record no modification time, so the bad source stays stale
	// and the next update reports it again.
	err = loader.Update(dir, codec.Unmarshal, accept, validator.SchemaID)
	require.Error(t, err)
	require.True(t, errors.As(err, &ue))
	require.Len(t, ue.Failures, 1)
	assert.Equal(t, "broken.json", ue.Failures[0].SourceID)
	assert.Equal(t, 2, st.Len())
}
