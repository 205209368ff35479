package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Phonebooth/jesse/jesseerrors"
	"github.com/Phonebooth/jesse/store"
)

func TestNew_Defaults(t *testing.T) {
	v, err := New()
	require.NoError(t, err)
	assert.Equal(t, Draft3, v.defaultDraft)
	assert.Equal(t, FailFast, v.mode)
	assert.Equal(t, DefaultMaxDepth, v.maxDepth)
	assert.Equal(t, DefaultMaxRefDepth, v.maxRefDepth)
	assert.Nil(t, v.store)
}

func TestNew_AppliesOptions(t *testing.T) {
	st := store.New()
	v, err := New(
		WithStore(st),
		WithDefaultDraft(Draft4),
		WithErrorMode(CollectAll),
		WithMaxDepth(7),
		WithMaxRefDepth(3),
		WithFormat("even", func(any) error { return nil }),
	)
	require.NoError(t, err)
	assert.Same(t, st, v.store)
	assert.Equal(t, Draft4, v.defaultDraft)
	assert.Equal(t, CollectAll, v.mode)
	assert.Equal(t, 7, v.maxDepth)
	assert.Equal(t, 3, v.maxRefDepth)
	assert.Contains(t, v.formats, "even")
}

func TestNew_RejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"nil store", WithStore(nil)},
		{"unsupported draft", WithDefaultDraft(Draft(7))},
		{"unknown error mode", WithErrorMode(ErrorMode(9))},
		{"zero max depth", WithMaxDepth(0)},
		{"negative max depth", WithMaxDepth(-1)},
		{"zero ref depth", WithMaxRefDepth(0)},
		{"empty format name", WithFormat("", func(any) error { return nil })},
		{"nil format check", WithFormat("x", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opt)
			require.Error(t, err)
			assert.True(t, errors.Is(err, jesseerrors.ErrConfig), "got %v", err)
			assert.Contains(t, err.Error(), "invalid option")
		})
	}
}

func TestErrorMode_String(t *testing.T) {
	assert.Equal(t, "fail-fast", FailFast.String())
	assert.Equal(t, "collect-all", CollectAll.String())
	assert.Equal(t, "unknown", ErrorMode(42).String())
}
