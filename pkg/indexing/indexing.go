package indexing

import (
	"fmt"
	"sync"

	"github.com/adfharrison1/go-library/pkg/domain"
	"github.com/adfharrison1/go-library/pkg/errors"
)

const (
	FieldISBN   = "isbn"
	FieldAuthor = "author"
	FieldYear   = "year"
	FieldGenre  = "genre"
)

var _ domain.BookIndex = (*Index)(nil)

// Index implements domain.BookIndex. It keeps the unique ISBN map and the
// secondary buckets in step with each other.
type Index struct {
	mu     sync.RWMutex
	byISBN map[string]*domain.Book
	order  []string // ISBNs in insertion order

	author *Inverted[string]
	year   *Inverted[int]
	genre  *Inverted[string]

	changeLog []string
}

// New creates an empty index.
func New() *Index {
	return &Index{
		byISBN: make(map[string]*domain.Book),
		author: NewInverted(FieldAuthor, func(b *domain.Book) string { return b.Author() }),
		year:   NewInverted(FieldYear, func(b *domain.Book) int { return b.Year() }),
		genre:  NewInverted(FieldGenre, func(b *domain.Book) string { return b.Genre() }),
	}
}

// Add inserts a book under all four keys. A duplicate ISBN is rejected
// before anything is touched.
func (idx *Index) Add(book *domain.Book) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.byISBN[book.ISBN()]; exists {
		return errors.DuplicateKey("book with ISBN %s already exists", book.ISBN())
	}

	idx.byISBN[book.ISBN()] = book
	idx.order = append(idx.order, book.ISBN())
	idx.author.Insert(book)
	idx.year.Insert(book)
	idx.genre.Insert(book)
	idx.logChange(fmt.Sprintf("added book: %s (ISBN: %s)", book.Title(), book.ISBN()))

	return nil
}

// Remove drops a book from all four keys. It returns false if the ISBN is
// not indexed. The stored instance is removed, so a different instance
// with the same ISBN but stale fields still clears the right buckets.
func (idx *Index) Remove(book *domain.Book) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	stored, exists := idx.byISBN[book.ISBN()]
	if !exists {
		return false
	}

	delete(idx.byISBN, stored.ISBN())
	for i, isbn := range idx.order {
		if isbn == stored.ISBN() {
			idx.order = append(idx.order[:i:i], idx.order[i+1:]...)
			break
		}
	}
	idx.author.Delete(stored)
	idx.year.Delete(stored)
	idx.genre.Delete(stored)
	idx.logChange(fmt.Sprintf("removed book: %s (ISBN: %s)", stored.Title(), stored.ISBN()))

	return true
}

// Get returns the book stored under isbn.
func (idx *Index) Get(isbn string) (*domain.Book, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	book, ok := idx.byISBN[isbn]
	return book, ok
}

// Contains reports whether isbn is indexed.
func (idx *Index) Contains(isbn string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.byISBN[isbn]
	return ok
}

// Len returns the number of indexed books.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.byISBN)
}

// ISBNs returns the indexed ISBNs in insertion order.
func (idx *Index) ISBNs() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return append([]string(nil), idx.order...)
}

// ByAuthor returns a copy of the author bucket.
func (idx *Index) ByAuthor(author string) []*domain.Book {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.author.Query(author)
}

// ByYear returns a copy of the year bucket.
func (idx *Index) ByYear(year int) []*domain.Book {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.year.Query(year)
}

// ByGenre returns a copy of the genre bucket.
func (idx *Index) ByGenre(genre string) []*domain.Book {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.genre.Query(genre)
}

// BucketKeys returns the number of keys held by a secondary index,
// including keys whose bucket has been emptied.
func (idx *Index) BucketKeys(field string) (int, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	switch field {
	case FieldISBN:
		return len(idx.byISBN), nil
	case FieldAuthor:
		return idx.author.Keys(), nil
	case FieldYear:
		return idx.year.Keys(), nil
	case FieldGenre:
		return idx.genre.Keys(), nil
	default:
		return 0, errors.NotFound("index on field %s does not exist", field)
	}
}

// ChangeLog returns a copy of every recorded mutation, oldest first.
func (idx *Index) ChangeLog() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return append([]string(nil), idx.changeLog...)
}

// ChangeLogTail returns a copy of the last n entries.
func (idx *Index) ChangeLogTail(n int) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if n <= 0 {
		return []string{}
	}
	start := len(idx.changeLog) - n
	if start < 0 {
		start = 0
	}
	return append([]string{}, idx.changeLog[start:]...)
}

// Verify checks that the secondary buckets reference exactly the books in
// the ISBN map, each once. A failure means the index is corrupt.
func (idx *Index) Verify() error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.order) != len(idx.byISBN) {
		return errors.Internal("isbn order holds %d entries, map holds %d", len(idx.order), len(idx.byISBN))
	}
	for _, isbn := range idx.order {
		if _, ok := idx.byISBN[isbn]; !ok {
			return errors.Internal("isbn %s ordered but not mapped", isbn)
		}
	}
	if err := idx.author.verify(idx.byISBN); err != nil {
		return err
	}
	if err := idx.year.verify(idx.byISBN); err != nil {
		return err
	}
	return idx.genre.verify(idx.byISBN)
}

func (idx *Index) logChange(message string) {
	idx.changeLog = append(idx.changeLog, message)
}
