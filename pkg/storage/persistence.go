// Package storage writes catalogue snapshots to disk and exports records as
// JSON. A snapshot is a header followed by an lz4 compressed msgpack body.
package storage

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/adfharrison1/go-library/pkg/domain"
	"github.com/adfharrison1/go-library/pkg/errors"
	"github.com/adfharrison1/go-library/pkg/library"
)

// maxPayload caps the declared uncompressed size read from a file.
const maxPayload = 256 << 20

// Snapshot is the stored state of one catalogue.
type Snapshot struct {
	Name      string          `msgpack:"name" json:"name"`
	Books     []domain.Record `msgpack:"books" json:"books"`
	ChangeLog []string        `msgpack:"change_log,omitempty" json:"change_log,omitempty"`
}

// SnapshotOf captures the current state of lib.
func SnapshotOf(lib *library.Library) *Snapshot {
	return &Snapshot{
		Name:      lib.Name(),
		Books:     lib.Records(),
		ChangeLog: lib.ChangeLog(),
	}
}

// WriteSnapshot encodes snap to w.
func WriteSnapshot(w io.Writer, snap *Snapshot) error {
	msgpackData, err := msgpack.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	flags := FlagCompressed
	payload := make([]byte, lz4.CompressBlockBound(len(msgpackData)))
	var hashTable [1 << 16]int
	n, err := lz4.CompressBlock(msgpackData, payload, hashTable[:])
	if err != nil {
		return fmt.Errorf("failed to compress snapshot: %w", err)
	}
	if n == 0 || n >= len(msgpackData) {
		// incompressible
		flags = 0
		payload = msgpackData
	} else {
		payload = payload[:n]
	}

	if err := WriteHeader(w, flags); err != nil {
		return fmt.Errorf("failed to write file header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(msgpackData))); err != nil {
		return fmt.Errorf("failed to write payload size: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	return nil
}

// ReadSnapshot decodes a snapshot written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	header, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, fmt.Errorf("failed to read payload size: %w", err)
	}
	if size > maxPayload {
		return nil, fmt.Errorf("payload size %d exceeds limit", size)
	}

	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	data := payload
	if header.Compressed() {
		data = make([]byte, size)
		n, err := lz4.UncompressBlock(payload, data)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
		}
		data = data[:n]
	}
	if len(data) != int(size) {
		return nil, fmt.Errorf("payload is %d bytes, header declares %d", len(data), size)
	}

	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Save writes a snapshot of lib to path, replacing any previous file.
func Save(path string, lib *library.Library) error {
	return SaveSnapshot(path, SnapshotOf(lib))
}

// SaveSnapshot writes snap to path via a temporary file and a rename. A
// path without an extension gets FileExtension.
func SaveSnapshot(path string, snap *Snapshot) error {
	path = snapshotPath(path)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := WriteSnapshot(&buf, snap); err != nil {
		return err
	}

	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename snapshot file: %w", err)
	}
	return nil
}

// Load reads the snapshot at path, adding FileExtension the way
// SaveSnapshot does.
func Load(path string) (*Snapshot, error) {
	path = snapshotPath(path)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("snapshot %s not found", path).WithCause(err)
		}
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer file.Close()

	snap, err := ReadSnapshot(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return snap, nil
}

func snapshotPath(path string) string {
	if filepath.Ext(path) == "" {
		return path + FileExtension
	}
	return path
}

// Restore rebuilds a library from snap. The snapshot name is applied first
// so a WithName option overrides it. The restored change log starts afresh
// with one entry per restored book.
func Restore(snap *Snapshot, options ...library.Option) (*library.Library, error) {
	opts := append([]library.Option{library.WithName(snap.Name)}, options...)
	return library.FromRecords(snap.Books, opts...)
}
