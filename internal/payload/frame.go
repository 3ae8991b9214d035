package payload

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Frame size constants.
const (
	// MaxFrameSize is the maximum frame size (16 MiB), including length prefix.
	MaxFrameSize = 16 * 1024 * 1024
	// MaxRowSize is the maximum encoded row size (MaxFrameSize - 4 bytes).
	MaxRowSize = MaxFrameSize - LengthPrefixSize
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 4
)

// RowKind is the type discriminant of a payload row.
type RowKind string

const (
	// RowTree carries the root component tree (suspense placeholders inline).
	RowTree RowKind = "tree"
	// RowBoundary carries the resolved content of one suspense boundary.
	RowBoundary RowKind = "boundary"
	// RowValue carries a plain serialized value (action results).
	RowValue RowKind = "value"
	// RowError carries a render or invocation failure.
	RowError RowKind = "error"
	// RowDone terminates the stream.
	RowDone RowKind = "done"
)

// Row is one unit of the component stream.
type Row struct {
	Seq      int     `msgpack:"seq"`
	Kind     RowKind `msgpack:"kind"`
	Boundary string  `msgpack:"boundary,omitempty"`
	Node     *Node   `msgpack:"node,omitempty"`
	Value    any     `msgpack:"value,omitempty"`
	Message  string  `msgpack:"message,omitempty"`
}

// ErrorKind classifies stream decoding errors.
type ErrorKind int

const (
	// ErrPartial indicates a truncated or incomplete frame.
	ErrPartial ErrorKind = iota
	// ErrTooLarge indicates a frame exceeding MaxFrameSize.
	ErrTooLarge
	// ErrDecode indicates a msgpack decoding error.
	ErrDecode
)

// StreamError represents a payload stream decoding error.
type StreamError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *StreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// IsStreamError reports whether err is a StreamError of the given kind.
func IsStreamError(err error, kind ErrorKind) bool {
	var se *StreamError
	return errors.As(err, &se) && se.Kind == kind
}

// Encoder writes length-prefixed msgpack rows to a stream.
type Encoder struct {
	writer io.Writer
	seq    int
}

// NewEncoder creates an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{writer: w}
}

// WriteRow encodes and writes one row, assigning the next sequence number.
func (e *Encoder) WriteRow(row Row) error {
	row.Seq = e.seq

	body, err := msgpack.Marshal(&row)
	if err != nil {
		return fmt.Errorf("payload: marshal row %d: %w", row.Seq, err)
	}
	if len(body) > MaxRowSize {
		return &StreamError{
			Kind: ErrTooLarge,
			Msg:  fmt.Sprintf("payload: row %d is %d bytes, exceeds %d", row.Seq, len(body), MaxRowSize),
		}
	}

	var prefix [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(body)))
	if _, err := e.writer.Write(prefix[:]); err != nil {
		return fmt.Errorf("payload: write length prefix: %w", err)
	}
	if _, err := e.writer.Write(body); err != nil {
		return fmt.Errorf("payload: write row body: %w", err)
	}

	e.seq++
	return nil
}

// Decoder reads length-prefixed msgpack rows from a stream.
type Decoder struct {
	reader io.Reader
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{reader: r}
}

// ReadRow reads and decodes the next row. Returns io.EOF at a clean frame
// boundary; a frame cut mid-way is an ErrPartial StreamError.
func (d *Decoder) ReadRow() (*Row, error) {
	var prefix [LengthPrefixSize]byte
	if _, err := io.ReadFull(d.reader, prefix[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, &StreamError{Kind: ErrPartial, Msg: "payload: truncated length prefix", Err: err}
	}

	size := binary.BigEndian.Uint32(prefix[:])
	if size > MaxRowSize {
		return nil, &StreamError{
			Kind: ErrTooLarge,
			Msg:  fmt.Sprintf("payload: frame of %d bytes exceeds %d", size, MaxRowSize),
		}
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(d.reader, body); err != nil {
		return nil, &StreamError{Kind: ErrPartial, Msg: "payload: truncated row body", Err: err}
	}

	var row Row
	if err := msgpack.Unmarshal(body, &row); err != nil {
		return nil, &StreamError{Kind: ErrDecode, Msg: "payload: undecodable row", Err: err}
	}
	return &row, nil
}
