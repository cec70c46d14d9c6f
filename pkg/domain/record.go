package domain

import (
	"github.com/adfharrison1/go-library/pkg/errors"
	"github.com/adfharrison1/go-library/pkg/validation"
)

// Record is the flat export form of a Book. Type is the variant
// discriminator. Only the discriminator and the ISBN are required.
type Record struct {
	Type          string `msgpack:"type" json:"type" validate:"required"`
	Title         string `msgpack:"title" json:"title"`
	Author        string `msgpack:"author" json:"author"`
	Year          int    `msgpack:"year" json:"year"`
	Genre         string `msgpack:"genre" json:"genre"`
	ISBN          string `msgpack:"isbn" json:"isbn" validate:"required"`
	IsBorrowed    bool   `msgpack:"is_borrowed" json:"is_borrowed"`
	ReferenceKind string `msgpack:"reference_kind,omitempty" json:"reference_kind,omitempty"`
}

var recordValidator = validation.New()

// ToRecord exports the book.
func (b *Book) ToRecord() Record {
	return Record{
		Type:          b.variant.String(),
		Title:         b.title,
		Author:        b.author,
		Year:          b.year,
		Genre:         b.genre,
		ISBN:          b.isbn,
		IsBorrowed:    b.borrowed,
		ReferenceKind: string(b.kind),
	}
}

// Validate checks the book's fields with the same rules applied to
// imported records.
func (b *Book) Validate() error {
	r := b.ToRecord()
	return r.Validate()
}

// Validate checks the record's field constraints.
func (r Record) Validate() error {
	return recordValidator.Validate(r)
}

// FromRecord rebuilds a Book from its export form.
func FromRecord(r Record) (*Book, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	variant, err := ParseVariant(r.Type)
	if err != nil {
		return nil, errors.InvalidOperation("cannot import record %s: %v", r.ISBN, err)
	}

	var b *Book
	switch variant {
	case VariantReference:
		b = NewReferenceBook(r.Title, r.Author, r.Year, r.Genre, r.ISBN, ReferenceKind(r.ReferenceKind))
	case VariantFiction:
		b = NewFictionBook(r.Title, r.Author, r.Year, r.Genre, r.ISBN)
	default:
		b = NewBook(r.Title, r.Author, r.Year, r.Genre, r.ISBN)
	}
	b.borrowed = r.IsBorrowed
	return b, nil
}

// Records exports a list of books, preserving order.
func Records(books []*Book) []Record {
	out := make([]Record, 0, len(books))
	for _, b := range books {
		out = append(out, b.ToRecord())
	}
	return out
}
