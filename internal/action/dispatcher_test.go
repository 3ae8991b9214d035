package action

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seamui/seam/internal/logger"
	"github.com/seamui/seam/internal/manifest"
	"github.com/seamui/seam/internal/payload"
)

func testManifests() *manifest.Set {
	e := manifest.NewEmitter()
	e.RecordAction("actions/posts.js", "action__posts-11aa22bb.mjs")
	return e.Set()
}

func argBody(t *testing.T, args ...any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, EncodeArgs(&buf, args))
	return &buf
}

func TestInvoke_Success(t *testing.T) {
	reg := NewRegistry()
	reg.Register("actions/posts.js", "like", func(ctx context.Context, args []any) (any, error) {
		require.Len(t, args, 1)
		assert.Equal(t, "hello", args[0])
		return "success", nil
	})
	d := NewDispatcher(testManifests(), reg, logger.NewNop())

	result, err := d.Invoke(context.Background(), "actions/posts.js#like", argBody(t, "hello"))
	require.NoError(t, err)
	assert.Equal(t, "success", result)
}

func TestInvoke_UnknownModule(t *testing.T) {
	d := NewDispatcher(testManifests(), NewRegistry(), logger.NewNop())

	_, err := d.Invoke(context.Background(), "actions/unknown.js#run", argBody(t))
	require.Error(t, err)
	assert.True(t, IsUnknownAction(err))
}

func TestInvoke_UnknownExport(t *testing.T) {
	reg := NewRegistry()
	reg.Register("actions/posts.js", "like", func(ctx context.Context, args []any) (any, error) {
		return nil, nil
	})
	d := NewDispatcher(testManifests(), reg, logger.NewNop())

	_, err := d.Invoke(context.Background(), "actions/posts.js#missing", argBody(t))
	require.Error(t, err)
	assert.True(t, IsUnknownAction(err))
}

func TestInvoke_HandlerErrorWrapped(t *testing.T) {
	cause := errors.New("boom")
	reg := NewRegistry()
	reg.Register("actions/posts.js", "like", func(ctx context.Context, args []any) (any, error) {
		return nil, cause
	})
	d := NewDispatcher(testManifests(), reg, logger.NewNop())

	_, err := d.Invoke(context.Background(), "actions/posts.js#like", argBody(t))
	require.Error(t, err)
	assert.True(t, IsInvocationError(err))
	assert.True(t, errors.Is(err, cause))
}

func TestInvoke_HandlerPanicWrapped(t *testing.T) {
	reg := NewRegistry()
	reg.Register("actions/posts.js", "like", func(ctx context.Context, args []any) (any, error) {
		panic("unexpected")
	})
	d := NewDispatcher(testManifests(), reg, logger.NewNop())

	_, err := d.Invoke(context.Background(), "actions/posts.js#like", argBody(t))
	require.Error(t, err)
	assert.True(t, IsInvocationError(err))
}

func TestStream_ValueResult(t *testing.T) {
	reg := NewRegistry()
	reg.Register("actions/posts.js", "like", func(ctx context.Context, args []any) (any, error) {
		return "success", nil
	})
	d := NewDispatcher(testManifests(), reg, logger.NewNop())

	var out bytes.Buffer
	require.NoError(t, d.Stream(context.Background(), "actions/posts.js#like", argBody(t, "hello"), &out))

	dec := payload.NewDecoder(&out)
	row, err := dec.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, payload.RowValue, row.Kind)
	assert.Equal(t, "success", row.Value)

	row, err = dec.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, payload.RowDone, row.Kind)
}

func TestStream_NodeResult(t *testing.T) {
	reg := NewRegistry()
	reg.Register("actions/posts.js", "like", func(ctx context.Context, args []any) (any, error) {
		return payload.Element("p", nil, payload.Text("liked")), nil
	})
	d := NewDispatcher(testManifests(), reg, logger.NewNop())

	var out bytes.Buffer
	require.NoError(t, d.Stream(context.Background(), "actions/posts.js#like", argBody(t), &out))

	row, err := payload.NewDecoder(&out).ReadRow()
	require.NoError(t, err)
	assert.Equal(t, payload.RowTree, row.Kind)
	require.NotNil(t, row.Node)
	assert.Equal(t, "p", row.Node.Tag)
}

func TestStream_ErrorRow(t *testing.T) {
	d := NewDispatcher(testManifests(), NewRegistry(), logger.NewNop())

	var out bytes.Buffer
	err := d.Stream(context.Background(), "actions/unknown.js#run", argBody(t), &out)
	require.Error(t, err)

	row, derr := payload.NewDecoder(&out).ReadRow()
	require.NoError(t, derr)
	assert.Equal(t, payload.RowError, row.Kind)
	assert.Contains(t, row.Message, "actions/unknown.js#run")
}
