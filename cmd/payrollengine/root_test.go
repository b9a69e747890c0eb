package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(old) })
}

func TestConfigFileIsOptional(t *testing.T) {
	viper.Reset()
	chdir(t, t.TempDir())

	// No payrollengine.yaml anywhere: startup proceeds on flags alone.
	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
}

func TestMalformedConfigFileIsAnError(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "payrollengine.yaml"), []byte("out: [unclosed"), 0o644))
	chdir(t, dir)

	assert.Error(t, rootCmd.PersistentPreRunE(rootCmd, nil))
}
