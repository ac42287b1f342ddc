package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "yes\n", want: true},
		{input: "Y\n", want: true},
		{input: "no\n", want: false},
		{input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			assert.Equal(t, tt.want, confirm(strings.NewReader(tt.input), &out))
			assert.Contains(t, out.String(), "proceed")
		})
	}
}

func TestSeedCommand_DryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stores.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
stores:
  - name: Denim Den
    address:
      address_line_1: Jalan Bukit Bintang
      city: Kuala Lumpur
      state: WP
      latitude: 3.1466
      longitude: 101.7101
`), 0o600))

	var out bytes.Buffer
	cmd := newSeedCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--file", path, "--dry-run"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Stores to import: 1")
	assert.NotContains(t, out.String(), "Created")
}

func TestSeedCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "Missing file flag", args: []string{}},
		{name: "Unsupported extension", args: []string{"--file", "stores.csv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newSeedCommand()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(tt.args)
			assert.Error(t, cmd.Execute())
		})
	}
}
