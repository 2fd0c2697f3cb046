package audio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataURI(t *testing.T) {
	mt, payload, ok := ParseDataURI("data:image/png;base64,iVBORw0KGgo=")
	require.True(t, ok)
	assert.Equal(t, "image/png", mt)
	assert.Equal(t, "iVBORw0KGgo=", payload)

	_, _, ok = ParseDataURI("https://example.com/a.png")
	assert.False(t, ok)
	_, _, ok = ParseDataURI("data:image/png,raw")
	assert.False(t, ok)
}

func TestResolveInput(t *testing.T) {
	ctx := context.Background()

	b, mt, err := ResolveInput(ctx, Input{Bytes: []byte("x"), MediaType: "audio/mpeg"})
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), b)
	assert.Equal(t, "audio/mpeg", mt)

	b, mt, err = ResolveInput(ctx, Input{Base64: DataURI("video/mp4", "aGVsbG8=")})
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), b)
	assert.Equal(t, "video/mp4", mt)

	_, mt, err = ResolveInput(ctx, Input{Base64: "aGVsbG8="})
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", mt)

	_, _, err = ResolveInput(ctx, Input{})
	assert.True(t, errors.Is(err, ErrNoInput))
}

func TestResolveInput_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "audio/ogg")
		_, _ = w.Write([]byte("ogg"))
	}))
	defer srv.Close()

	b, mt, err := ResolveInput(context.Background(), Input{URL: srv.URL + "/a.ogg"})
	require.NoError(t, err)
	assert.Equal(t, []byte("ogg"), b)
	assert.Equal(t, "audio/ogg", mt)

	_, _, err = ResolveInput(context.Background(), Input{URL: srv.URL + "/missing"})
	assert.Error(t, err)
}
