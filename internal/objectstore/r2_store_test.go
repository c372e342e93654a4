// Package objectstore_test tests the R2 store configuration handling.
package objectstore_test

import (
	"testing"

	"github.com/audio-studio/kokoro-service/internal/objectstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestR2Store_PublicURL(t *testing.T) {
	t.Parallel()

	store := objectstore.NewR2Store(nil, "audio-studio", "https://audio.example.com/")

	// The trailing slash on the base URL must not double up.
	assert.Equal(
		t,
		"https://audio.example.com/kokoro_audio/123/project_p_chapter_c.wav",
		store.PublicURL("kokoro_audio/123/project_p_chapter_c.wav"),
	)
}

func TestNewR2StoreFromEnv_MissingCredentials(t *testing.T) {
	t.Setenv("R2_ACCOUNT_ID", "")
	t.Setenv("R2_ACCESS_KEY_ID", "")
	t.Setenv("R2_SECRET_ACCESS_KEY", "")

	_, err := objectstore.NewR2StoreFromEnv()
	require.ErrorIs(t, err, objectstore.ErrAccountIDMissing)

	t.Setenv("R2_ACCOUNT_ID", "acct")

	_, err = objectstore.NewR2StoreFromEnv()
	require.ErrorIs(t, err, objectstore.ErrAccessKeyIDMissing)

	t.Setenv("R2_ACCESS_KEY_ID", "key")

	_, err = objectstore.NewR2StoreFromEnv()
	require.ErrorIs(t, err, objectstore.ErrSecretAccessKeyMissing)
}

func TestNewR2StoreFromEnv_BuildsClient(t *testing.T) {
	t.Setenv("R2_ACCOUNT_ID", "acct")
	t.Setenv("R2_ACCESS_KEY_ID", "key")
	t.Setenv("R2_SECRET_ACCESS_KEY", "secret")
	t.Setenv("R2_BUCKET_NAME", "my-audio")
	t.Setenv("R2_PUBLIC_URL", "https://pub.example.com")

	store, err := objectstore.NewR2StoreFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "https://pub.example.com/some.wav", store.PublicURL("some.wav"))
}
