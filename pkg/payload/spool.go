package payload

import (
	"fmt"
	"io"
	"os"
)

// Spool is a payload buffer backed by a temporary file. It implements
// both Source and Sink: bytes written while downloading can be rewound
// and read back for an upload or for streaming to a client.
//
// Every Spool must be closed; Close removes the backing file.
type Spool struct {
	file *os.File
}

// NewSpool creates an empty spool in dir, or in the system temporary
// directory when dir is empty.
func NewSpool(dir string) (*Spool, error) {
	file, err := os.CreateTemp(dir, "driftfs-spool-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create spool file: %w", err)
	}
	return &Spool{file: file}, nil
}

func (s *Spool) Read(p []byte) (int, error) {
	return s.file.Read(p)
}

func (s *Spool) Write(p []byte) (int, error) {
	return s.file.Write(p)
}

// Rewind seeks back to the start of the spooled bytes.
func (s *Spool) Rewind() error {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind spool: %w", err)
	}
	return nil
}

// Size reports how many bytes the spool currently holds.
func (s *Spool) Size() (int64, error) {
	info, err := s.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat spool: %w", err)
	}
	return info.Size(), nil
}

// Close closes and removes the backing file.
func (s *Spool) Close() error {
	name := s.file.Name()
	closeErr := s.file.Close()
	if err := os.Remove(name); err != nil {
		return err
	}
	return closeErr
}
