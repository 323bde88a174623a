package paths

import (
	"os"
	"os/user"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHomeDir_NoSudo(t *testing.T) {
	t.Setenv("SUDO_USER", "")

	got, err := UserHomeDir()
	require.NoError(t, err)

	expected, _ := os.UserHomeDir()
	assert.Equal(t, expected, got)
}

func TestUserHomeDir_WithSudoUser(t *testing.T) {
	currentUser, err := user.Current()
	if err != nil {
		t.Skip("Cannot get current user")
	}
	t.Setenv("SUDO_USER", currentUser.Username)

	got, err := UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, currentUser.HomeDir, got)
}

func TestUserHomeDir_Fallbacks(t *testing.T) {
	expected, _ := os.UserHomeDir()
	for _, sudoUser := range []string{"root", "nonexistent_user_12345"} {
		t.Run(sudoUser, func(t *testing.T) {
			t.Setenv("SUDO_USER", sudoUser)
			got, err := UserHomeDir()
			require.NoError(t, err)
			assert.Equal(t, expected, got)
		})
	}
}

func TestAppDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	got, err := AppDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	tests := []struct {
		fn   func() (string, error)
		want string
	}{
		{DatabasePath, filepath.Join(dir, "stampwatch.db")},
		{ConfigPath, filepath.Join(dir, "config.toml")},
		{PlansDir, filepath.Join(dir, "plans")},
		{ActivityDir, filepath.Join(dir, "activity")},
		{LogPath, filepath.Join(dir, "logs", "stampwatch.log")},
	}
	for _, tt := range tests {
		got, err := tt.fn()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestAppDirDefault(t *testing.T) {
	t.Setenv(HomeEnv, "")
	t.Setenv("SUDO_USER", "")

	got, err := AppDir()
	require.NoError(t, err)
	assert.Equal(t, "stampwatch", filepath.Base(got))
	assert.Equal(t, ".config", filepath.Base(filepath.Dir(got)))
}
