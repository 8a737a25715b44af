package main

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	defer func() { os.Stdout = old }()

	f()
	_ = w.Close()
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func TestRootCmd_Version(t *testing.T) {
	t.Cleanup(func() { rootCmd.SetArgs([]string{}) })
	rootCmd.SetArgs([]string{"version"})
	out := captureOutput(func() { _ = rootCmd.Execute() })
	assert.Contains(t, out, "apiserver version")
}

func TestRootCmd_Subcommands(t *testing.T) {
	for _, path := range [][]string{{"version"}, {"migrate"}, {"superadmin", "create"}} {
		cmd, rest, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Empty(t, rest)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	flag := rootCmd.PersistentFlags().Lookup("conf")
	require.NotNil(t, flag)
	assert.Equal(t, "apiserver.yaml", flag.DefValue)
}

func TestSuperAdminCreate_RequiresCredentials(t *testing.T) {
	t.Cleanup(func() { rootCmd.SetArgs([]string{}) })
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	t.Cleanup(func() { rootCmd.SetOut(nil); rootCmd.SetErr(nil) })

	rootCmd.SetArgs([]string{"superadmin", "create", "--name", "Ops"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestRootCmd_Help(t *testing.T) {
	t.Cleanup(func() { rootCmd.SetArgs([]string{}) })
	rootCmd.SetArgs([]string{"--help"})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() { rootCmd.SetOut(nil) })
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "superadmin")
}
