package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec([]byte("test-secret-key-minimum-32-characters"))
	require.NoError(t, err)
	return codec
}

func TestNewCodec_rejectsShortSecret(t *testing.T) {
	_, err := NewCodec([]byte("too-short"))
	require.Error(t, err)
}

func TestCodec_roundTrip(t *testing.T) {
	codec := newTestCodec(t)

	enabled := true
	cookie, err := codec.Encode(&Bag{JS: &enabled})
	require.NoError(t, err)
	require.Equal(t, CookieName, cookie.Name)

	bag := codec.DecodeValue(cookie.Value)
	require.NotNil(t, bag.JS)
	require.True(t, *bag.JS)

	// Re-encoding the decoded bag must produce the same token.
	again, err := codec.Encode(bag)
	require.NoError(t, err)
	require.Equal(t, cookie.Value, again.Value)
}

func TestCodec_explicitFalseSurvives(t *testing.T) {
	codec := newTestCodec(t)

	disabled := false
	cookie, err := codec.Encode(&Bag{JS: &disabled})
	require.NoError(t, err)

	bag := codec.DecodeValue(cookie.Value)
	require.NotNil(t, bag.JS, "explicit false must not decode as unset")
	require.False(t, *bag.JS)
}

func TestCodec_emptyBagDecodesToUnset(t *testing.T) {
	codec := newTestCodec(t)

	cookie, err := codec.Encode(&Bag{})
	require.NoError(t, err)

	bag := codec.DecodeValue(cookie.Value)
	require.Nil(t, bag.JS)
}

func TestCodec_decodeFailsOpen(t *testing.T) {
	codec := newTestCodec(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "no separator", token: "garbage"},
		{name: "too many parts", token: "a.b.c"},
		{name: "bad signature encoding", token: "eyJqcyI6dHJ1ZX0=.%%%"},
		{name: "bad payload encoding", token: "%%%.c2ln"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := codec.DecodeValue(tt.token)
			require.NotNil(t, bag)
			require.Nil(t, bag.JS)
		})
	}
}

func TestCodec_tamperedPayloadDiscarded(t *testing.T) {
	codec := newTestCodec(t)

	enabled := true
	cookie, err := codec.Encode(&Bag{JS: &enabled})
	require.NoError(t, err)

	// Swap the payload while keeping the original signature.
	parts := strings.Split(cookie.Value, ".")
	require.Len(t, parts, 2)
	forged := "eyJqcyI6ZmFsc2V9." + parts[1]

	bag := codec.DecodeValue(forged)
	require.Nil(t, bag.JS)
}

func TestCodec_differentSecretDiscarded(t *testing.T) {
	codec := newTestCodec(t)
	other, err := NewCodec([]byte("another-secret-key-32-characters-long"))
	require.NoError(t, err)

	enabled := true
	cookie, err := codec.Encode(&Bag{JS: &enabled})
	require.NoError(t, err)

	bag := other.DecodeValue(cookie.Value)
	require.Nil(t, bag.JS)
}

func TestCodec_decodeFromRequest(t *testing.T) {
	codec := newTestCodec(t)

	t.Run("missing cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/products/classic-tee", nil)
		bag := codec.Decode(r)
		require.NotNil(t, bag)
		require.Nil(t, bag.JS)
	})

	t.Run("valid cookie", func(t *testing.T) {
		enabled := true
		cookie, err := codec.Encode(&Bag{JS: &enabled})
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/products/classic-tee", nil)
		r.AddCookie(cookie)

		bag := codec.Decode(r)
		require.NotNil(t, bag.JS)
		require.True(t, *bag.JS)
	})
}
