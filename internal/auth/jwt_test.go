package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubhub-dev/clubhub/internal/domain"
)

func TestDecodeRoundtrip(t *testing.T) {
	j := New("secret")

	original := &domain.AuthContext{
		UserId:       7,
		IsSuperAdmin: true,
		ClubPerms:    map[int64]bool{5: true},
		BoardPerms:   map[int64]bool{12: true},
	}
	token, err := j.NewToken(original)
	require.NoError(t, err)

	decoded, err := j.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, original.UserId, decoded.UserId)
	assert.True(t, decoded.IsSuperAdmin)
	assert.Equal(t, original.ClubPerms, decoded.ClubPerms)
	assert.Equal(t, original.BoardPerms, decoded.BoardPerms)
}

func TestDecodeMinimalClaims(t *testing.T) {
	j := New("secret")

	token, err := j.NewToken(&domain.AuthContext{UserId: 3})
	require.NoError(t, err)

	decoded, err := j.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, domain.UserId(3), decoded.UserId)
	assert.False(t, decoded.IsSuperAdmin)
	assert.Empty(t, decoded.ClubPerms)
	assert.Empty(t, decoded.BoardPerms)
}

func TestDecodeRejects(t *testing.T) {
	j := New("secret")

	t.Run("garbage", func(t *testing.T) {
		_, err := j.Decode("not-a-token")
		assert.Error(t, err)
	})

	t.Run("wrong key", func(t *testing.T) {
		token, err := New("other").NewToken(&domain.AuthContext{UserId: 7})
		require.NoError(t, err)
		_, err = j.Decode(token)
		assert.Error(t, err)
	})

	t.Run("missing uid", func(t *testing.T) {
		raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"admin": true})
		token, err := raw.SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = j.Decode(token)
		assert.Error(t, err)
	})

	t.Run("unexpected signing method", func(t *testing.T) {
		raw := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"uid": float64(7)})
		token, err := raw.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = j.Decode(token)
		assert.Error(t, err)
	})
}

func TestParsePermsIgnoresJunk(t *testing.T) {
	perms := parsePerms(map[string]any{
		"5":     true,
		"6":     false,
		"seven": true,
		"8":     "yes",
	})
	assert.Equal(t, map[int64]bool{5: true}, perms)

	assert.Empty(t, parsePerms(nil))
	assert.Empty(t, parsePerms("bogus"))
}
