package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScope(t *testing.T) {
	tests := []struct {
		in      string
		want    Scope
		wantErr bool
	}{
		{in: "machine", want: ScopeMachine},
		{in: "Machine", want: ScopeMachine},
		{in: "USER", want: ScopeUser},
		{in: " user ", want: ScopeUser},
		{in: "global", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScope(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNotSupported)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}

func TestScope_DefaultIsMachine(t *testing.T) {
	var s Scope
	assert.Equal(t, ScopeMachine, s)
	require.NoError(t, s.Set("user"))
	assert.Equal(t, ScopeUser, s)
	assert.Error(t, s.Set("nope"))
	assert.Equal(t, ScopeUser, s, "failed Set must not change the scope")
}

func TestAttributes(t *testing.T) {
	var a Attributes
	assert.False(t, a.IsMinInclusive())
	assert.False(t, a.IsMaxInclusive())
	assert.Equal(t, "None", a.String())

	a = a.With(AttrMinVersionInclusive)
	assert.True(t, a.IsMinInclusive())
	assert.False(t, a.IsMaxInclusive())

	a = a.With(AttrMaxVersionInclusive)
	assert.True(t, a.IsMaxInclusive())
	assert.Equal(t, Attributes(0x300), a)
	assert.Equal(t, "MinVersionInclusive|MaxVersionInclusive", a.String())
}
