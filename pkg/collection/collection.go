// Package collection holds the ordered book sequence of a catalogue.
package collection

import (
	"fmt"
	"iter"
	"slices"

	"github.com/adfharrison1/go-library/pkg/domain"
	"github.com/adfharrison1/go-library/pkg/errors"
)

// BookCollection is an ordered sequence of books. It stores whatever it is
// given: uniqueness is the index's job.
type BookCollection struct {
	books []*domain.Book
}

// New creates a collection holding books in the given order.
func New(books ...*domain.Book) *BookCollection {
	return &BookCollection{books: slices.Clone(books)}
}

// Len returns the number of books.
func (c *BookCollection) Len() int {
	return len(c.books)
}

// Add appends a book.
func (c *BookCollection) Add(book *domain.Book) {
	c.books = append(c.books, book)
}

// Remove deletes the first book with the same ISBN. It returns false when
// there is none.
func (c *BookCollection) Remove(book *domain.Book) bool {
	i := c.indexOf(book)
	if i < 0 {
		return false
	}
	c.books = slices.Delete(c.books, i, i+1)
	return true
}

// Contains reports whether a book with the same ISBN is present.
func (c *BookCollection) Contains(book *domain.Book) bool {
	return c.indexOf(book) >= 0
}

// At returns the book at position i.
func (c *BookCollection) At(i int) (*domain.Book, error) {
	if i < 0 || i >= len(c.books) {
		return nil, errors.IndexOutOfRange(i, len(c.books))
	}
	return c.books[i], nil
}

// Slice returns a new collection with the books in [lo, hi). The books
// themselves are shared, not copied.
func (c *BookCollection) Slice(lo, hi int) (*BookCollection, error) {
	if lo < 0 || lo > len(c.books) {
		return nil, errors.IndexOutOfRange(lo, len(c.books)+1)
	}
	if hi < lo || hi > len(c.books) {
		return nil, errors.IndexOutOfRange(hi, len(c.books)+1)
	}
	return New(c.books[lo:hi]...), nil
}

// All iterates over the books from the start. Each call starts afresh.
func (c *BookCollection) All() iter.Seq[*domain.Book] {
	return func(yield func(*domain.Book) bool) {
		for _, b := range c.books {
			if !yield(b) {
				return
			}
		}
	}
}

// Books returns a copy of the sequence.
func (c *BookCollection) Books() []*domain.Book {
	return slices.Clone(c.books)
}

// Available returns the books on the shelf, in order.
func (c *BookCollection) Available() []*domain.Book {
	return c.filter(func(b *domain.Book) bool { return b.IsAvailable() })
}

// Borrowed returns the books out on loan, in order.
func (c *BookCollection) Borrowed() []*domain.Book {
	return c.filter(func(b *domain.Book) bool { return !b.IsAvailable() })
}

// SearchByKeyword returns the books matching keyword, in order.
func (c *BookCollection) SearchByKeyword(keyword string) *BookCollection {
	return &BookCollection{books: c.filter(func(b *domain.Book) bool { return b.MatchesKeyword(keyword) })}
}

// Filter returns a new collection of the books satisfying keep.
func (c *BookCollection) Filter(keep func(*domain.Book) bool) *BookCollection {
	return &BookCollection{books: c.filter(keep)}
}

// Clear empties the collection.
func (c *BookCollection) Clear() {
	c.books = nil
}

func (c *BookCollection) String() string {
	return fmt.Sprintf("BookCollection(%d books)", len(c.books))
}

func (c *BookCollection) indexOf(book *domain.Book) int {
	return slices.IndexFunc(c.books, func(b *domain.Book) bool { return b.Equal(book) })
}

func (c *BookCollection) filter(keep func(*domain.Book) bool) []*domain.Book {
	out := make([]*domain.Book, 0, len(c.books))
	for _, b := range c.books {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}
