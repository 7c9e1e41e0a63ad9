package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadDefaults(t *testing.T) {
	resetViper(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./features", cfg.Features.Root)
	assert.Equal(t, []string{"node_modules", "vendor", "testdata"}, cfg.Features.ExcludeDirs)
	assert.Equal(t, "./featforge", cfg.Generate.OutputDir)
	assert.Equal(t, "en", cfg.Generate.Collation)
	assert.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, "localhost", cfg.Reload.Host)
	assert.Equal(t, 7791, cfg.Reload.Port)
	assert.False(t, cfg.Reload.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	resetViper(t)
	viper.Set("features.root", "./modules")
	viper.Set("features.exclude_dirs", []string{"dist"})
	viper.Set("generate.output_dir", "./gen")
	viper.Set("generate.collation", "de")
	viper.Set("watch.debounce", "150ms")
	viper.Set("reload.enabled", true)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./modules", cfg.Features.Root)
	assert.Equal(t, []string{"dist"}, cfg.Features.ExcludeDirs)
	assert.Equal(t, "./gen", cfg.Generate.OutputDir)
	assert.Equal(t, "de", cfg.Generate.Collation)
	assert.Equal(t, 150*time.Millisecond, cfg.Watch.Debounce)
	assert.True(t, cfg.Reload.Enabled)
}

func TestLoadRejectsPathTraversal(t *testing.T) {
	resetViper(t)
	viper.Set("features.root", "../../etc")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "traversal")
}

func TestLoadRejectsDangerousPath(t *testing.T) {
	resetViper(t)
	viper.Set("generate.output_dir", "./out;rm -rf")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dangerous character")
}

func TestLoadRejectsNonPlainExcludeDir(t *testing.T) {
	resetViper(t)
	viper.Set("features.exclude_dirs", []string{"nested/dir"})

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plain directory names")
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	resetViper(t)
	viper.Set("reload.port", 70000)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in valid range")
}

func TestValidatePath(t *testing.T) {
	assert.NoError(t, validatePath("./features"))
	assert.NoError(t, validatePath("/abs/path/features"))
	assert.Error(t, validatePath(""))
	assert.Error(t, validatePath("../outside"))
	assert.Error(t, validatePath("dir$(whoami)"))
}
