package validator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Phonebooth/jesse/jesseerrors"
)

func TestFormat_UnregisteredNamesAreIgnored(t *testing.T) {
	v := mustValidator(t)
	schema := doc(t, `{"type":"string","format":"carrier-pigeon"}`)
	assert.NoError(t, v.Validate(doc(t, `"anything"`), schema))
}

func TestFormat_RegisteredCheckApplies(t *testing.T) {
	even := func(value any) error {
		n, ok := value.(interface{ Int64() (int64, error) })
		if !ok {
			return nil
		}
		i, err := n.Int64()
		if err != nil {
			return nil
		}
		if i%2 != 0 {
			return fmt.Errorf("%d is not even", i)
		}
		return nil
	}
	v := mustValidator(t, WithFormat("even", even))
	schema := doc(t, `{"format":"even"}`)

	assert.NoError(t, v.Validate(doc(t, `4`), schema))

	err := v.Validate(doc(t, `3`), schema)
	require.Error(t, err)
	var de *jesseerrors.DataError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, jesseerrors.KindWrongFormat, de.Kind)
	assert.Contains(t, de.Message, "not even")
	assert.True(t, errors.Is(err, jesseerrors.ErrDataInvalid))
}

func TestFormat_NonStringOperandIsSchemaFault(t *testing.T) {
	v := mustValidator(t)
	err := v.Validate(doc(t, `"x"`), doc(t, `{"format":12}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, jesseerrors.ErrSchemaInvalid))
}

func TestStandardFormats(t *testing.T) {
	opts := make([]Option, 0, len(StandardFormats()))
	for name, check := range StandardFormats() {
		opts = append(opts, WithFormat(name, check))
	}
	v := mustValidator(t, opts...)

	tests := []struct {
		format string
		value  string
		valid  bool
	}{
		{"date-time", `"2026-08-25T10:30:00Z"`, true},
		{"date-time", `"2026-08-25"`, false},
		{"date", `"2026-08-25"`, true},
		{"date", `"25/08/2026"`, false},
		{"time", `"10:30:00"`, true},
		{"time", `"10:30"`, false},
		{"email", `"dev@example.com"`, true},
		{"email", `"not-an-email"`, false},
		{"hostname", `"example.com"`, true},
		{"hostname", `"-bad-.com"`, false},
		{"ipv4", `"192.168.0.1"`, true},
		{"ipv4", `"999.1.1.1"`, false},
		{"ipv6", `"::1"`, true},
		{"ipv6", `"192.168.0.1"`, false},
		{"uri", `"https://example.com/x"`, true},
		{"uri", `"not a uri at all"`, false},
		{"regex", `"^a+$"`, true},
		{"regex", `"[unclosed"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.format+" "+tt.value, func(t *testing.T) {
			schema := doc(t, fmt.Sprintf(`{"format":%q}`, tt.format))
			err := v.Validate(doc(t, tt.value), schema)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var de *jesseerrors.DataError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, jesseerrors.KindWrongFormat, de.Kind)
		})
	}

	t.Run("non-string values pass every string format", func(t *testing.T) {
		assert.NoError(t, v.Validate(doc(t, `42`), doc(t, `{"format":"email"}`)))
		assert.NoError(t, v.Validate(doc(t, `null`), doc(t, `{"format":"ipv4"}`)))
	})
}
