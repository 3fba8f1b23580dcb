package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("open provider: %w", NotFound(`key "Foo"`))

	require.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrFormat)
	assert.NotErrorIs(t, err, ErrStore)
	assert.Equal(t, `open provider: key "Foo" not found`, err.Error())
}

func TestStoreError_CarriesCode(t *testing.T) {
	cause := errors.New("access denied")
	err := StoreError("open key", 5, cause)

	require.ErrorIs(t, err, ErrStore)
	require.ErrorIs(t, err, cause)
	assert.Equal(t, "open key (code 5): access denied", err.Error())

	var typed *Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, uint32(5), typed.Code)
}

func TestKindOf(t *testing.T) {
	kind, ok := KindOf(fmt.Errorf("wrapped: %w", FormatError("bad version", nil)))
	require.True(t, ok)
	assert.Equal(t, ErrKindFormat, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)

	_, ok = KindOf(nil)
	assert.False(t, ok)
}

func TestError_NilReceiver(t *testing.T) {
	var e *Error
	assert.Equal(t, "<nil>", e.Error())
	assert.False(t, e.Is(ErrNotFound))
}
