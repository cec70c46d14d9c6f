package storage

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/adfharrison1/go-library/pkg/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ExportJSON writes records as an indented JSON array.
func ExportJSON(w io.Writer, records []domain.Record) error {
	if records == nil {
		records = []domain.Record{}
	}
	return WriteJSON(w, records)
}

// WriteJSON writes any value as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

// ImportJSON reads a JSON array of records and validates each one.
func ImportJSON(r io.Reader) ([]domain.Record, error) {
	var records []domain.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return records, nil
}
