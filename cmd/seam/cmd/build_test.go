package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seamui/seam/internal/manifest"
)

func TestBuildCommandStructure(t *testing.T) {
	assert.Equal(t, "build", buildCmd.Use)
	assert.NotEmpty(t, buildCmd.Short)
	assert.NotNil(t, buildCmd.RunE)
}

func TestRunBuildProducesOutput(t *testing.T) {
	root := writeFixtureApp(t)
	writeTestConfig(t, root)
	dist := filepath.Join(t.TempDir(), "dist")
	outDir = dist

	var buf bytes.Buffer
	buildCmd.SetOut(&buf)
	buildCmd.SetContext(context.Background())

	require.NoError(t, runBuild(buildCmd, nil))

	out := buf.String()
	assert.Contains(t, out, "Build Complete")
	assert.Contains(t, out, "analyze")
	assert.Contains(t, out, "client-build")
	assert.Contains(t, out, "Client components: 1")

	set, err := manifest.Load(dist)
	require.NoError(t, err)
	_, ok := set.LookupClient("counter.js")
	assert.True(t, ok)
}

func TestRunBuildFailsOnBrokenSource(t *testing.T) {
	root := writeFixtureApp(t)
	bad := `"use client";
"use server";
export default 1;
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "counter.js"), []byte(bad), 0644))
	writeTestConfig(t, root)
	outDir = filepath.Join(t.TempDir(), "dist")

	buildCmd.SetOut(new(bytes.Buffer))
	buildCmd.SetContext(context.Background())

	err := runBuild(buildCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analyze")
}
