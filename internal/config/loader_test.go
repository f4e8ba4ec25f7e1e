package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/charliek/devcli/internal/constants"
	"github.com/charliek/devcli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFile(t *testing.T) {
	t.Run("empty path returns nil", func(t *testing.T) {
		env, err := LoadEnvFile("")
		assert.NoError(t, err)
		assert.Nil(t, env)
	})

	t.Run("loads env file", func(t *testing.T) {
		dir := t.TempDir()
		envPath := filepath.Join(dir, ".env")
		err := os.WriteFile(envPath, []byte("FOO=bar\nBAZ=qux"), 0644)
		require.NoError(t, err)

		env, err := LoadEnvFile(envPath)
		require.NoError(t, err)
		assert.Equal(t, "bar", env["FOO"])
		assert.Equal(t, "qux", env["BAZ"])
	})

	t.Run("file not found", func(t *testing.T) {
		_, err := LoadEnvFile("nonexistent.env")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestMergeEnv(t *testing.T) {
	env1 := map[string]string{"A": "1", "B": "2"}
	env2 := map[string]string{"B": "3", "C": "4"}

	result := MergeEnv(nil, env1, env2, nil)
	assert.Equal(t, "1", result["A"])
	assert.Equal(t, "3", result["B"]) // env2 overrides
	assert.Equal(t, "4", result["C"])
}

func TestLoadProcessEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GLOBAL=1\nSHARED=global"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.api"), []byte("SVC=2\nSHARED=svc"), 0644))

	t.Run("merges all sources", func(t *testing.T) {
		env, err := LoadProcessEnv(".env", ".env.api", map[string]string{
			"INLINE": "3",
			"SHARED": "inline",
		}, dir)
		require.NoError(t, err)

		assert.Equal(t, "1", env["GLOBAL"])
		assert.Equal(t, "2", env["SVC"])
		assert.Equal(t, "3", env["INLINE"])
		assert.Equal(t, "inline", env["SHARED"]) // inline wins
	})

	t.Run("handles missing workspace env file", func(t *testing.T) {
		_, err := LoadProcessEnv("nonexistent.env", "", nil, dir)
		require.Error(t, err)
	})
}

func TestDiscover(t *testing.T) {
	t.Setenv(constants.ConfigPathEnvVar, "")

	root := t.TempDir()
	nested := filepath.Join(root, "apps", "web")
	require.NoError(t, os.MkdirAll(nested, 0755))

	t.Run("nothing found is not an error", func(t *testing.T) {
		path, err := Discover(nested, "")
		require.NoError(t, err)
		assert.Empty(t, path)
	})

	cfg := filepath.Join(root, constants.DefaultConfigFile)
	require.NoError(t, os.WriteFile(cfg, []byte("services: {}\n"), 0644))

	t.Run("searches upward", func(t *testing.T) {
		path, err := Discover(nested, "")
		require.NoError(t, err)
		assert.Equal(t, cfg, path)
	})

	t.Run("explicit path wins", func(t *testing.T) {
		other := filepath.Join(nested, "other.yaml")
		require.NoError(t, os.WriteFile(other, []byte("services: {}\n"), 0644))

		path, err := Discover(nested, other)
		require.NoError(t, err)
		assert.Equal(t, other, path)
	})

	t.Run("env override", func(t *testing.T) {
		t.Setenv(constants.ConfigPathEnvVar, cfg)
		path, err := Discover(t.TempDir(), "")
		require.NoError(t, err)
		assert.Equal(t, cfg, path)
	})

	t.Run("missing explicit path", func(t *testing.T) {
		_, err := Discover(nested, "missing.yaml")
		assert.ErrorIs(t, err, domain.ErrConfigNotFound)
	})
}

func TestCheckFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not checked on windows")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, constants.DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("services: {}\n"), 0644))

	assert.NoError(t, CheckFilePermissions(path))

	require.NoError(t, os.Chmod(path, 0666))
	err := CheckFilePermissions(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "world-writable")
}
