package payload

import (
	"bytes"
	"io"
)

// Bytes adapts an in-memory byte slice to a Source.
type Bytes struct {
	reader *bytes.Reader
}

// NewBytes wraps data in a rewindable source. The slice is not copied.
func NewBytes(data []byte) *Bytes {
	return &Bytes{reader: bytes.NewReader(data)}
}

func (b *Bytes) Read(p []byte) (int, error) {
	return b.reader.Read(p)
}

// Rewind seeks back to the start of the payload.
func (b *Bytes) Rewind() error {
	_, err := b.reader.Seek(0, io.SeekStart)
	return err
}
