package payload

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RowRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	tree := Element("div", map[string]any{"class": "post"},
		Text("hello"),
		Client("components/counter.js", map[string]any{"start": int8(3)}),
	)
	require.NoError(t, enc.WriteRow(Row{Kind: RowTree, Node: tree}))
	require.NoError(t, enc.WriteRow(Row{Kind: RowDone}))

	dec := NewDecoder(&buf)

	row, err := dec.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, 0, row.Seq)
	assert.Equal(t, RowTree, row.Kind)
	require.NotNil(t, row.Node)
	assert.Equal(t, "div", row.Node.Tag)
	require.Len(t, row.Node.Children, 2)
	assert.Equal(t, "hello", row.Node.Children[0].Text)
	require.NotNil(t, row.Node.Children[1].Ref)
	assert.Equal(t, "components/counter.js", row.Node.Children[1].Ref.ID)

	row, err = dec.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, 1, row.Seq)
	assert.Equal(t, RowDone, row.Kind)

	_, err = dec.ReadRow()
	assert.Equal(t, io.EOF, err)
}

func TestDecode_TruncatedBody(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.WriteRow(Row{Kind: RowDone}))

	truncated := buf.Bytes()[:buf.Len()-1]
	_, err := NewDecoder(bytes.NewReader(truncated)).ReadRow()
	require.Error(t, err)
	assert.True(t, IsStreamError(err, ErrPartial))
}

func TestDecode_TruncatedPrefix(t *testing.T) {
	_, err := NewDecoder(bytes.NewReader([]byte{0x00, 0x01})).ReadRow()
	require.Error(t, err)
	assert.True(t, IsStreamError(err, ErrPartial))
}

func TestDecode_OversizedFrame(t *testing.T) {
	prefix := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	_, err := NewDecoder(bytes.NewReader(prefix)).ReadRow()
	require.Error(t, err)
	assert.True(t, IsStreamError(err, ErrTooLarge))
}

func TestDecode_GarbageBody(t *testing.T) {
	frame := []byte{0x00, 0x00, 0x00, 0x03, 0xC1, 0xC1, 0xC1}
	_, err := NewDecoder(bytes.NewReader(frame)).ReadRow()
	require.Error(t, err)
	assert.True(t, IsStreamError(err, ErrDecode))
}
