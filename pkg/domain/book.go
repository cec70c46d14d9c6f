package domain

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// popularGenres is compared after case folding.
var popularGenres = map[string]struct{}{
	"fantasy":         {},
	"science fiction": {},
	"mystery":         {},
	"thriller":        {},
	"romance":         {},
	"detective":       {},
	"фэнтези":         {},
	"детектив":        {},
	"роман":           {},
	"антиутопия":      {},
}

// Book is a catalogue item. Identity is the ISBN: two books with the same
// ISBN are the same book regardless of their other fields.
type Book struct {
	title  string
	author string
	year   int
	genre  string
	isbn   string

	variant  Variant
	kind     ReferenceKind
	borrowed bool
}

// NewBook creates a regular book.
func NewBook(title, author string, year int, genre, isbn string) *Book {
	return &Book{
		title:   title,
		author:  author,
		year:    year,
		genre:   genre,
		isbn:    isbn,
		variant: VariantRegular,
	}
}

// NewReferenceBook creates a reference book of the given kind.
func NewReferenceBook(title, author string, year int, genre, isbn string, kind ReferenceKind) *Book {
	b := NewBook(title, author, year, genre, isbn)
	b.variant = VariantReference
	b.kind = kind
	return b
}

// NewFictionBook creates a fiction book.
func NewFictionBook(title, author string, year int, genre, isbn string) *Book {
	b := NewBook(title, author, year, genre, isbn)
	b.variant = VariantFiction
	return b
}

func (b *Book) Title() string  { return b.title }
func (b *Book) Author() string { return b.author }
func (b *Book) Year() int      { return b.year }
func (b *Book) Genre() string  { return b.genre }

// ISBN returns the book's identity. It is fixed at construction, as are
// the other catalogue fields, so indexed buckets never go stale.
func (b *Book) ISBN() string { return b.isbn }

// Variant returns the book's type tag.
func (b *Book) Variant() Variant {
	return b.variant
}

// ReferenceKind returns the reference sub-type, empty for other variants.
func (b *Book) ReferenceKind() ReferenceKind {
	return b.kind
}

// Key returns the identity of the book, suitable as a map key.
func (b *Book) Key() string {
	return b.isbn
}

// Equal reports whether both books carry the same ISBN.
func (b *Book) Equal(other *Book) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.isbn == other.isbn
}

// Borrow marks the book as lent. It returns false if it already was.
func (b *Book) Borrow() bool {
	if b.borrowed {
		return false
	}
	b.borrowed = true
	return true
}

// Return marks the book as back on the shelf. It returns false if it was
// not lent.
func (b *Book) Return() bool {
	if !b.borrowed {
		return false
	}
	b.borrowed = false
	return true
}

// IsAvailable reports whether the book is on the shelf.
func (b *Book) IsAvailable() bool {
	return !b.borrowed
}

// Policy returns the loan policy for the book's variant.
func (b *Book) Policy() LoanPolicy {
	return PolicyFor(b.variant)
}

func (b *Book) LoanPeriodDays() int {
	return b.Policy().LoanPeriodDays
}

func (b *Book) CanBeExtended() bool {
	return b.Policy().CanBeExtended()
}

func (b *Book) MaxRenewals() int {
	return b.Policy().MaxRenewals
}

// IsForLibraryUseOnly is true for encyclopedias and dictionaries.
func (b *Book) IsForLibraryUseOnly() bool {
	return b.variant == VariantReference && b.kind.LibraryUseOnly()
}

// IsPopularGenre is true for fiction in one of the popular genres.
func (b *Book) IsPopularGenre() bool {
	if b.variant != VariantFiction {
		return false
	}
	_, ok := popularGenres[fold(b.genre)]
	return ok
}

// MatchesKeyword reports whether keyword occurs, ignoring case, in the
// title, author, genre or the decimal year.
func (b *Book) MatchesKeyword(keyword string) bool {
	kw := fold(keyword)
	return strings.Contains(fold(b.title), kw) ||
		strings.Contains(fold(b.author), kw) ||
		strings.Contains(fold(b.genre), kw) ||
		strings.Contains(strconv.Itoa(b.year), kw)
}

func (b *Book) String() string {
	status := "available"
	if b.borrowed {
		status = "borrowed"
	}
	return fmt.Sprintf("Book(%q, %s, %d, %s, ISBN: %s, %s, status: %s)",
		b.title, b.author, b.year, b.genre, b.isbn, b.variant, status)
}

// fold applies Unicode case folding. Casers are stateful, so one is made
// per call.
func fold(s string) string {
	return cases.Fold().String(s)
}
