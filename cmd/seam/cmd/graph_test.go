package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphCommandStructure(t *testing.T) {
	assert.Equal(t, "graph", graphCmd.Use)
	assert.NotNil(t, graphCmd.Flags().Lookup("ascii"))
	assert.NotNil(t, graphCmd.Flags().Lookup("no-color"))
}

func TestRunGraph(t *testing.T) {
	writeTestConfig(t, writeFixtureApp(t))

	origASCII, origNoColor := graphASCII, graphNoColor
	t.Cleanup(func() { graphASCII, graphNoColor = origASCII, origNoColor })
	graphASCII = true
	graphNoColor = true

	var buf bytes.Buffer
	graphCmd.SetOut(&buf)
	graphCmd.SetContext(context.Background())

	require.NoError(t, runGraph(graphCmd, nil))

	out := buf.String()
	assert.Contains(t, out, "modules: 3")
	assert.Contains(t, out, "counter.js [client]")
	assert.Contains(t, out, "server.js [shared]")
}
