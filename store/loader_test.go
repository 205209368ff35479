package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Phonebooth/jesse/codec"
	"github.com/Phonebooth/jesse/jesseerrors"
)

// idKey derives the store key from a document's id, the conventional layout
// of the schema files these tests write.
func idKey(v any) (string, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return "", fmt.Errorf("document is not an object")
	}
	id, ok := m["id"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("document has no id")
	}
	return id, nil
}

func acceptObjects(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func mustLoader(t *testing.T, st *Store, opts ...LoaderOption) *Loader {
	t.Helper()
	l, err := NewLoader(st, opts...)
	require.NoError(t, err)
	return l
}

func TestLoader_LoadsFreshDirectory(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "account.json", `{"id":"http://example.com/account#","type":"object"}`)
	writeSource(t, dir, "address.json", `{"id":"http://example.com/address#","type":"object"}`)

	st := New()
	l := mustLoader(t, st)
	require.NoError(t, l.Update(dir, codec.Unmarshal, acceptObjects, idKey))

	assert.Equal(t, []string{"http://example.com/account#", "http://example.com/address#"}, st.Keys())

	doc, err := st.Get("http://example.com/account#")
	require.NoError(t, err)
	m, ok := doc.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", m["type"])
}

func TestLoader_UnchangedSourcesAreSkipped(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "account.json", `{"id":"http://example.com/account#"}`)

	st := New()
	l := mustLoader(t, st)

	parses := 0
	counting := func(data []byte) (any, error) {
		parses++
		return codec.Unmarshal(data)
	}

	require.NoError(t, l.Update(dir, counting, acceptObjects, idKey))
	require.NoError(t, l.Update(dir, counting, acceptObjects, idKey))
	assert.Equal(t, 1, parses, "second pass over an unchanged directory reloads nothing")
}

func TestLoader_ModifiedSourceIsReloaded(t *testing.T) {
	dir := t.TempDir()
	p := writeSource(t, dir, "account.json", `{"id":"http://example.com/account#","rev":1}`)

	st := New()
	l := mustLoader(t, st)
	require.NoError(t, l.Update(dir, codec.Unmarshal, acceptObjects, idKey))

	writeSource(t, dir, "account.json", `{"id":"http://example.com/account#","rev":2}`)
	// push the modification time firmly past the recorded one
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(p, future, future))

	require.NoError(t, l.Update(dir, codec.Unmarshal, acceptObjects, idKey))

	doc, err := st.Get("http://example.com/account#")
	require.NoError(t, err)
	rev, _ := doc.(map[string]any)["rev"].(interface{ Int64() (int64, error) }).Int64()
	assert.Equal(t, int64(2), rev)
}

func TestLoader_EqualModTimeIsNotStale(t *testing.T) {
	dir := t.TempDir()
	p := writeSource(t, dir, "account.json", `{"id":"http://example.com/account#"}`)
	when := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(p, when, when))

	st := New()
	l := mustLoader(t, st)

	parses := 0
	counting := func(data []byte) (any, error) {
		parses++
		return codec.Unmarshal(data)
	}
	require.NoError(t, l.Update(dir, counting, acceptObjects, idKey))
	require.NoError(t, l.Update(dir, counting, acceptObjects, idKey))
	assert.Equal(t, 1, parses, "strictly-newer means equal timestamps do not reload")
}

func TestLoader_ParseFailureIsMarkerNotAbort(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "bad.json", `{"id": truncated`)
	writeSource(t, dir, "good.json", `{"id":"http://example.com/good#"}`)

	st := New()
	l := mustLoader(t, st)
	err := l.Update(dir, codec.Unmarshal, acceptObjects, idKey)

	require.Error(t, err)
	assert.True(t, errors.Is(err, jesseerrors.ErrUpdateFailed))

	var ue *jesseerrors.UpdateError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, dir, ue.Dir)
	require.Len(t, ue.Failures, 1)
	assert.Equal(t, "bad.json", ue.Failures[0].SourceID)
	assert.True(t, errors.Is(ue.Failures[0].Reason, jesseerrors.ErrParse))

	_, getErr := st.Get("http://example.com/good#")
	assert.NoError(t, getErr, "accepted sources land despite failing neighbors")
	assert.Equal(t, 1, st.Len())
}

func TestLoader_SourceTurnedInvalidKeepsPriorEntry(t *testing.T) {
	dir := t.TempDir()
	p := writeSource(t, dir, "account.json", `{"id":"http://example.com/account#"}`)

	st := New()
	l := mustLoader(t, st)
	require.NoError(t, l.Update(dir, codec.Unmarshal, acceptObjects, idKey))

	writeSource(t, dir, "account.json", `{broken`)
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(p, future, future))

	err := l.Update(dir, codec.Unmarshal, acceptObjects, idKey)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jesseerrors.ErrUpdateFailed))

	_, getErr := st.Get("http://example.com/account#")
	assert.NoError(t, getErr, "a source gone bad does not evict the last good document")
}

func TestLoader_RejectedDocument(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "list.json", `["not","an","object"]`)

	st := New()
	l := mustLoader(t, st)
	err := l.Update(dir, codec.Unmarshal, acceptObjects, idKey)

	require.Error(t, err)
	var ue *jesseerrors.UpdateError
	require.True(t, errors.As(err, &ue))
	require.Len(t, ue.Failures, 1)
	assert.True(t, errors.Is(ue.Failures[0].Reason, ErrRejected))
	assert.Equal(t, 0, st.Len())
}

func TestLoader_KeyDerivationFailure(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "anon.json", `{"type":"object"}`)

	st := New()
	l := mustLoader(t, st)
	err := l.Update(dir, codec.Unmarshal, acceptObjects, idKey)

	require.Error(t, err)
	var ue *jesseerrors.UpdateError
	require.True(t, errors.As(err, &ue))
	require.Len(t, ue.Failures, 1)
	assert.Contains(t, ue.Failures[0].Reason.Error(), "no id")
	assert.Equal(t, 0, st.Len())
}

func TestLoader_SubdirectoriesAreNotEntered(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	writeSource(t, filepath.Join(dir, "nested"), "deep.json", `{"id":"http://example.com/deep#"}`)
	writeSource(t, dir, "top.json", `{"id":"http://example.com/top#"}`)

	st := New()
	l := mustLoader(t, st)
	require.NoError(t, l.Update(dir, codec.Unmarshal, acceptObjects, idKey))

	assert.Equal(t, []string{"http://example.com/top#"}, st.Keys())
}

func TestLoader_MissingDirectory(t *testing.T) {
	st := New()
	l := mustLoader(t, st)
	err := l.Update(filepath.Join(t.TempDir(), "nope"), codec.Unmarshal, acceptObjects, idKey)

	require.Error(t, err)
	assert.False(t, errors.Is(err, jesseerrors.ErrUpdateFailed), "an unreadable directory is not a per-source failure")
}

func TestLoader_YAMLSources(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "account.yaml", "id: \"http://example.com/account#\"\ntype: object\n")

	st := New()
	l := mustLoader(t, st)
	require.NoError(t, l.Update(dir, codec.Unmarshal, acceptObjects, idKey))

	doc, err := st.Get("http://example.com/account#")
	require.NoError(t, err)
	assert.Equal(t, "object", doc.(map[string]any)["type"])
}

func TestLoader_WithFS(t *testing.T) {
	fsys := fstest.MapFS{
		"schemas/account.json": &fstest.MapFile{
			Data:    []byte(`{"id":"http://example.com/account#"}`),
			ModTime: time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC),
		},
		"schemas/address.json": &fstest.MapFile{
			Data:    []byte(`{"id":"http://example.com/address#"}`),
			ModTime: time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC),
		},
	}

	st := New()
	l := mustLoader(t, st, WithFS(fsys))
	require.NoError(t, l.Update("schemas", codec.Unmarshal, acceptObjects, idKey))
	assert.Equal(t, 2, st.Len())

	// same modification times: nothing is stale on the second pass
	parses := 0
	counting := func(data []byte) (any, error) {
		parses++
		return codec.Unmarshal(data)
	}
	require.NoError(t, l.Update("schemas", counting, acceptObjects, idKey))
	assert.Equal(t, 0, parses)
}

func TestLoader_StemCollisionAcrossExtensions(t *testing.T) {
	// "account.json" and "account.yaml" share the stem "account"; the
	// staleness record is per stem, so the second file is seen as current
	// once the first loads. Keeping one format per stem avoids the overlap.
	dir := t.TempDir()
	now := time.Now()
	p1 := writeSource(t, dir, "account.json", `{"id":"http://example.com/a#"}`)
	p2 := writeSource(t, dir, "account.yaml", "id: \"http://example.com/b#\"\n")
	require.NoError(t, os.Chtimes(p1, now, now))
	require.NoError(t, os.Chtimes(p2, now, now))

	st := New()
	l := mustLoader(t, st)
	require.NoError(t, l.Update(dir, codec.Unmarshal, acceptObjects, idKey))
	assert.Equal(t, 1, st.Len())
}

func TestNewLoader_Validation(t *testing.T) {
	t.Run("nil store", func(t *testing.T) {
		_, err := NewLoader(nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, jesseerrors.ErrConfig))
	})

	t.Run("nil logger option", func(t *testing.T) {
		_, err := NewLoader(New(), WithLogger(nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid loader option")
	})

	t.Run("nil fs option", func(t *testing.T) {
		_, err := NewLoader(New(), WithFS(nil))
		require.Error(t, err)
		assert.True(t, errors.Is(err, jesseerrors.ErrConfig))
	})

	t.Run("nil update functions", func(t *testing.T) {
		l := mustLoader(t, New())
		err := l.Update(t.TempDir(), nil, acceptObjects, idKey)
		require.Error(t, err)
		assert.True(t, errors.Is(err, jesseerrors.ErrConfig))

		err = l.Update(t.TempDir(), codec.Unmarshal, nil, idKey)
		require.Error(t, err)
		assert.True(t, errors.Is(err, jesseerrors.ErrConfig))

		err = l.Update(t.TempDir(), codec.Unmarshal, acceptObjects, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, jesseerrors.ErrConfig))
	})
}
