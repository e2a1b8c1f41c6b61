package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/nginject/internal/config"
)

// TestGenerateConfigParses verifies that the generated file loads back into
// the default settings.
func TestGenerateConfigParses(t *testing.T) {
	t.Parallel()
	content, err := generateConfig()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(content, configHeader), "missing header:\n%s", content)

	cfg, err := config.Parse([]byte(content))
	require.NoError(t, err)
	assert.Equal(t, "@ngInject", cfg.DocTag)
	assert.Equal(t, "$inject", cfg.InjectProperty)
}

// TestRunInitCreatesFile verifies that init writes a file inside a directory
// argument.
func TestRunInitCreatesFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"init", dir}, nil, &stdout, &stderr))

	data, err := os.ReadFile(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "doc_tag:")
	assert.Contains(t, stderr.String(), "wrote default config to")
}

// TestRunInitRefusesOverwrite verifies that an existing file is only replaced
// with --force.
func TestRunInitRefusesOverwrite(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("doc_tag: \"@inject\"\n"), 0o644))

	var stdout, stderr bytes.Buffer
	err := run([]string{"init", path}, nil, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, run([]string{"init", "--force", path}, nil, &stdout, &stderr))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "@inject\"", "file was not overwritten")
}

// TestRunInitDryRun verifies that --dry-run prints the file and writes
// nothing.
func TestRunInitDryRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"init", "--dry-run", dir}, nil, &stdout, &stderr))
	assert.True(t, strings.HasPrefix(stdout.String(), configHeader), "stdout:\n%s", stdout.String())
	assert.NoFileExists(t, filepath.Join(dir, config.FileName))
}
