package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommandStructure(t *testing.T) {
	assert.Equal(t, "validate", validateCmd.Use)
	assert.NotEmpty(t, validateCmd.Long)
	assert.NotNil(t, validateCmd.RunE)
}

func TestRunValidateHealthyApp(t *testing.T) {
	writeTestConfig(t, writeFixtureApp(t))

	var buf bytes.Buffer
	validateCmd.SetOut(&buf)
	validateCmd.SetContext(context.Background())

	require.NoError(t, runValidate(validateCmd, nil))

	out := buf.String()
	assert.Contains(t, out, "Modules: 3")
	assert.Contains(t, out, "client: 1")
	assert.Contains(t, out, "Validation complete")
}

func TestRunValidateBrokenImport(t *testing.T) {
	root := writeFixtureApp(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "server.js"),
		[]byte("import x from \"./ghost.js\";\n"), 0644))
	writeTestConfig(t, root)

	var buf bytes.Buffer
	validateCmd.SetOut(&buf)
	validateCmd.SetContext(context.Background())

	err := runValidate(validateCmd, nil)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "analysis failed")
}
