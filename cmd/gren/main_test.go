package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func runConfig(t *testing.T, dir string, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	outFile, err := os.CreateTemp(t.TempDir(), "stdout")
	require.NoError(t, err)
	errFile, err := os.CreateTemp(t.TempDir(), "stderr")
	require.NoError(t, err)
	defer outFile.Close()
	defer errFile.Close()

	cfg := &Config{
		WorkingDir: dir,
		Args:       append([]string{"gren"}, args...),
		Stdout:     outFile,
		Stderr:     errFile,
	}
	code = cfg.Run()

	outBytes, _ := os.ReadFile(outFile.Name())
	errBytes, _ := os.ReadFile(errFile.Name())
	return string(outBytes), string(errBytes), code
}

func TestInitThenMakeApplication(t *testing.T) {
	dir := t.TempDir()

	_, stderr, code := runConfig(t, dir, "init")
	require.Equal(t, 0, code, stderr)

	manifestPath := filepath.Join(dir, "gren.json")
	require.FileExists(t, manifestPath)

	stdout, stderr, code := runConfig(t, dir, "make")
	require.Equal(t, 0, code, stderr)
	require.Contains(t, stdout, "compiled successfully")

	require.FileExists(t, filepath.Join(dir, ".gren", "details.dat"))
}

func TestInitThenMakePackage(t *testing.T) {
	dir := t.TempDir()

	_, stderr, code := runConfig(t, dir, "init", "-package")
	require.Equal(t, 0, code, stderr)

	stdout, stderr, code := runConfig(t, dir, "make")
	require.Equal(t, 0, code, stderr)
	require.Contains(t, stdout, "compiled successfully")
}

func TestInitRefusesExistingManifest(t *testing.T) {
	dir := t.TempDir()

	_, stderr, code := runConfig(t, dir, "init")
	require.Equal(t, 0, code, stderr)

	_, stderr, code = runConfig(t, dir, "init")
	require.NotEqual(t, 0, code)
	require.NotEmpty(t, stderr)
}

func TestMakeWithOutputStdout(t *testing.T) {
	dir := t.TempDir()
	_, stderr, code := runConfig(t, dir, "init")
	require.Equal(t, 0, code, stderr)

	stdout, stderr, code := runConfig(t, dir, "make", "-output", "/dev/stdout")
	require.Equal(t, 0, code, stderr)
	require.True(t, bytes.Contains([]byte(stdout), []byte("generated by the reference codegen")))
}

func TestNoSuchCommand(t *testing.T) {
	dir := t.TempDir()
	_, stderr, code := runConfig(t, dir, "bogus")
	require.NotEqual(t, 0, code)
	require.Contains(t, stderr, "no such command")
}
