package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	s := &Store{Dir: filepath.Join(t.TempDir(), "nested")}

	p, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, Default(), p, "nothing saved yet")

	want := Default().Toggle("accessibility")
	want.Theme = "dark"
	want.AdditionalDetails = "keep the logo"
	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, want, got)

	info, err := os.Stat(filepath.Join(s.Dir, preferencesFile))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStoreFallsBackOnInvalidFile(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	path := filepath.Join(s.Dir, preferencesFile)

	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"solarized"}`), 0o600))
	p, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, Default(), p)

	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))
	p, err = s.Load()
	require.Error(t, err)
	require.Equal(t, Default(), p)
}
