package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		ok       bool
	}{
		{name: "minimal", password: "Abc1@x", ok: true},
		{name: "typical", password: "Str0ng!Pass", ok: true},
		{name: "repeated lower", password: "aaaaaaA1$", ok: true},
		{name: "too short", password: "Ab1@"},
		{name: "no upper", password: "abc1@xyz"},
		{name: "no lower", password: "ABC1@XYZ"},
		{name: "no digit", password: "Abcd@xyz"},
		{name: "no symbol", password: "Abcd1xyz"},
		{name: "space", password: "Abc1@x yz"},
		{name: "symbol outside set", password: "Abc1@x#"},
		{name: "non-ascii", password: "Ünïcode1@A"},
	}
	for _, tc := range cases {
		err := ValidatePassword(tc.password)
		if tc.ok {
			assert.NoError(t, err, tc.name)
		} else {
			assert.ErrorIs(t, err, ErrWeakPassword, tc.name)
		}
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Str0ng!Pass")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng!Pass", hash)
	assert.True(t, CheckPassword(hash, "Str0ng!Pass"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
