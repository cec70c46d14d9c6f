package storage

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// Magic bytes identifying a catalogue snapshot
	MagicBytes = "LBSM"
	// Current version
	FormatVersion = 1
	// File extension for snapshots
	FileExtension = ".lbsm"
)

// Header flags
const (
	// FlagCompressed marks an lz4 block payload. Without it the payload is raw msgpack.
	FlagCompressed uint8 = 1 << iota
)

// FileHeader represents the header of a snapshot file
type FileHeader struct {
	Magic    [4]byte // "LBSM"
	Version  uint8   // Format version
	Flags    uint8   // Payload flags
	Reserved [2]byte // Reserved for future use
}

// Compressed reports whether the payload is an lz4 block.
func (h FileHeader) Compressed() bool {
	return h.Flags&FlagCompressed != 0
}

func newHeader(flags uint8) FileHeader {
	return FileHeader{
		Magic:   [4]byte{'L', 'B', 'S', 'M'},
		Version: FormatVersion,
		Flags:   flags,
	}
}

// WriteHeader writes the file header to the given writer
func WriteHeader(w io.Writer, flags uint8) error {
	return binary.Write(w, binary.LittleEndian, newHeader(flags))
}

// ReadHeader reads and validates the file header
func ReadHeader(r io.Reader) (*FileHeader, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if string(header.Magic[:]) != MagicBytes {
		return nil, fmt.Errorf("invalid file format: expected %s, got %s", MagicBytes, string(header.Magic[:]))
	}

	if header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported file version: %d", header.Version)
	}

	return &header, nil
}
