package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	s := &Store{Dir: filepath.Join(t.TempDir(), "cfg")}

	_, err := s.FetchToken(GitHub)
	require.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, s.StoreToken(" GitHub ", "ghp_secret"))
	tok, err := s.FetchToken(GitHub)
	require.NoError(t, err)
	require.Equal(t, "ghp_secret", tok)

	raw, err := os.ReadFile(filepath.Join(s.Dir, fileName))
	require.NoError(t, err)
	require.NotContains(t, string(raw), "ghp_secret")

	info, err := os.Stat(filepath.Join(s.Dir, fileName))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, s.DeleteToken(GitHub))
	_, err = s.FetchToken(GitHub)
	require.ErrorIs(t, err, ErrTokenNotFound)
	require.NoError(t, s.DeleteToken(GitHub), "deleting twice is fine")
}

func TestStoreEmptyTokenDeletes(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	require.NoError(t, s.StoreToken(GitHub, "abc"))
	require.NoError(t, s.StoreToken(GitHub, "   "))
	_, err := s.FetchToken(GitHub)
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestProviderRequired(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	require.ErrorIs(t, s.StoreToken(" ", "x"), ErrProviderRequired)
	_, err := s.FetchToken("")
	require.ErrorIs(t, err, ErrProviderRequired)
}

func TestResolvePrefersEnv(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	require.NoError(t, s.StoreToken(GitHub, "stored"))

	t.Setenv("FRONTFREND_TEST_TOKEN", "from-env")
	require.Equal(t, "from-env", s.Resolve(GitHub, "FRONTFREND_TEST_TOKEN"))

	t.Setenv("FRONTFREND_TEST_TOKEN", "")
	require.Equal(t, "stored", s.Resolve(GitHub, "FRONTFREND_TEST_TOKEN"))

	var none *Store
	require.Empty(t, none.Resolve(GitHub, ""))
}
