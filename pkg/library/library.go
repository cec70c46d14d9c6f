// Package library is the catalogue: it keeps an ordered collection and a
// multi-key index over the same books and applies the lending rules.
package library

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/adfharrison1/go-library/pkg/collection"
	"github.com/adfharrison1/go-library/pkg/domain"
	"github.com/adfharrison1/go-library/pkg/errors"
	"github.com/adfharrison1/go-library/pkg/indexing"
	"github.com/adfharrison1/go-library/pkg/logger"
)

// Library owns one index and one collection pointing at the same books.
// The mutex covers both, so no caller sees a book in one but not the other.
type Library struct {
	mu      sync.RWMutex
	name    string
	index   domain.BookIndex
	books   *collection.BookCollection
	logger  *slog.Logger
	verify  bool
	initial []*domain.Book
}

// Status summarises the catalogue.
type Status struct {
	Name      string `json:"name" msgpack:"name"`
	Total     int    `json:"total" msgpack:"total"`
	Available int    `json:"available" msgpack:"available"`
	Borrowed  int    `json:"borrowed" msgpack:"borrowed"`
}

func (s Status) String() string {
	return fmt.Sprintf("library %q: %d books, %d available, %d borrowed", s.Name, s.Total, s.Available, s.Borrowed)
}

// New creates a library. Without options it is empty and silent.
func New(options ...Option) *Library {
	lib := &Library{
		name:   DefaultName,
		books:  collection.New(),
		logger: logger.Discard(),
	}

	for _, option := range options {
		option(lib)
	}
	if lib.index == nil {
		lib.index = indexing.New()
	}

	for _, b := range lib.initial {
		if err := lib.addBook(b, true); err != nil {
			lib.logger.Debug("skipped initial book", "error", err)
		}
	}
	lib.initial = nil

	return lib
}

// FromRecords rebuilds a library from exported records, preserving order
// and loan state.
func FromRecords(records []domain.Record, options ...Option) (*Library, error) {
	lib := New(options...)
	for _, r := range records {
		b, err := domain.FromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("restore %s: %w", r.ISBN, err)
		}
		if err := lib.addBook(b, true); err != nil {
			return nil, fmt.Errorf("restore %s: %w", r.ISBN, err)
		}
	}
	return lib, nil
}

func (lib *Library) Name() string {
	return lib.name
}

func (lib *Library) String() string {
	return fmt.Sprintf("Library(name=%q, books=%d)", lib.name, lib.Len())
}

// Len returns the number of books in the catalogue.
func (lib *Library) Len() int {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	return lib.books.Len()
}

// AddBook adds a book to the catalogue. The ISBN must be non-empty. A book
// whose ISBN is already catalogued is rejected with DUPLICATE_KEY and
// nothing changes, even when its other fields differ.
func (lib *Library) AddBook(book *domain.Book) error {
	return lib.addBook(book, false)
}

func (lib *Library) addBook(book *domain.Book, silent bool) error {
	if book == nil {
		return errors.Validation("book is required")
	}
	if err := book.Validate(); err != nil {
		lib.logger.Warn("rejected malformed book", "isbn", book.ISBN(), "error", err)
		return err
	}

	lib.mu.Lock()
	defer lib.mu.Unlock()

	if lib.index.Contains(book.ISBN()) {
		lib.logger.Warn("book already exists", "isbn", book.ISBN())
		return errors.DuplicateKey("book with ISBN %s already exists", book.ISBN())
	}
	if err := lib.insert(book); err != nil {
		return err
	}

	if !silent {
		if book.IsForLibraryUseOnly() {
			lib.logger.Info("reference book is for library use only", "isbn", book.ISBN(), "kind", book.ReferenceKind())
		}
		lib.logger.Info("added book", "title", book.Title(), "isbn", book.ISBN())
	}
	return nil
}

// insert puts the book in the index first, then the collection. A failed
// consistency check takes the book back out of both.
func (lib *Library) insert(book *domain.Book) error {
	if err := lib.index.Add(book); err != nil {
		return err
	}
	lib.books.Add(book)

	if err := lib.check(); err != nil {
		lib.index.Remove(book)
		lib.books.Remove(book)
		return err
	}
	return nil
}

// RemoveBook removes the book with the given ISBN from the catalogue.
func (lib *Library) RemoveBook(isbn string) error {
	lib.mu.Lock()
	defer lib.mu.Unlock()

	book, ok := lib.index.Get(isbn)
	if !ok {
		lib.logger.Warn("book not found", "isbn", isbn)
		return errors.NotFound("book with ISBN %s not found", isbn)
	}

	if !lib.books.Contains(book) {
		err := errors.Internal("book %s was indexed but not in the collection", isbn)
		lib.logger.Error("catalogue out of sync", "isbn", isbn, "error", err)
		return err
	}
	if !lib.index.Remove(book) {
		err := errors.Internal("index refused to remove book %s", isbn)
		lib.logger.Error("catalogue out of sync", "isbn", isbn, "error", err)
		return err
	}
	lib.books.Remove(book)

	// Both structures have changed; INTERNAL here means the catalogue is corrupt.
	if err := lib.check(); err != nil {
		return err
	}

	lib.logger.Info("removed book", "title", book.Title(), "isbn", isbn)
	return nil
}

// BorrowBook lends a book and returns its loan policy.
func (lib *Library) BorrowBook(isbn string) (domain.LoanPolicy, error) {
	lib.mu.Lock()
	defer lib.mu.Unlock()

	book, ok := lib.index.Get(isbn)
	if !ok {
		lib.logger.Warn("book not found", "isbn", isbn)
		return domain.LoanPolicy{}, errors.NotFound("book with ISBN %s not found", isbn)
	}

	if book.IsForLibraryUseOnly() {
		lib.logger.Warn("book cannot be borrowed: library use only", "title", book.Title(), "isbn", isbn)
		return domain.LoanPolicy{}, errors.InvalidOperation("book %q cannot be borrowed: %s is for library use only", book.Title(), book.ReferenceKind())
	}

	if !book.Borrow() {
		lib.logger.Warn("book already borrowed", "title", book.Title(), "isbn", isbn)
		return domain.LoanPolicy{}, errors.InvalidOperation("book %q is already borrowed", book.Title())
	}

	policy := book.Policy()
	lib.logger.Info("borrowed book",
		"title", book.Title(),
		"isbn", isbn,
		"loan_days", policy.LoanPeriodDays,
		"can_extend", policy.CanBeExtended(),
	)
	return policy, nil
}

// ReturnBook takes a lent book back.
func (lib *Library) ReturnBook(isbn string) error {
	lib.mu.Lock()
	defer lib.mu.Unlock()

	book, ok := lib.index.Get(isbn)
	if !ok {
		lib.logger.Warn("book not found", "isbn", isbn)
		return errors.NotFound("book with ISBN %s not found", isbn)
	}

	if !book.Return() {
		lib.logger.Warn("book was not borrowed", "title", book.Title(), "isbn", isbn)
		return errors.InvalidOperation("book %q was not borrowed", book.Title())
	}

	lib.logger.Info("returned book", "title", book.Title(), "isbn", isbn)
	return nil
}

// Book returns the catalogued book with the given ISBN.
func (lib *Library) Book(isbn string) (*domain.Book, bool) {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	return lib.index.Get(isbn)
}

// Books returns the catalogue in insertion order.
func (lib *Library) Books() []*domain.Book {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	return lib.books.Books()
}

// AvailableBooks returns the books on the shelf, in catalogue order.
func (lib *Library) AvailableBooks() []*domain.Book {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	return lib.books.Available()
}

// BorrowedBooks returns the books out on loan, in catalogue order.
func (lib *Library) BorrowedBooks() []*domain.Book {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	return lib.books.Borrowed()
}

// SearchByKeyword returns the books matching keyword in title, author,
// genre or year.
func (lib *Library) SearchByKeyword(keyword string) *collection.BookCollection {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	return lib.books.SearchByKeyword(keyword)
}

// BooksByType returns every book of the given variant.
func (lib *Library) BooksByType(variant domain.Variant) *collection.BookCollection {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	return lib.books.Filter(func(b *domain.Book) bool { return b.Variant() == variant })
}

// Status counts the books by loan state.
func (lib *Library) Status() Status {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	return Status{
		Name:      lib.name,
		Total:     lib.books.Len(),
		Available: len(lib.books.Available()),
		Borrowed:  len(lib.books.Borrowed()),
	}
}

// ChangeLog returns a copy of the index change log.
func (lib *Library) ChangeLog() []string {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	return lib.index.ChangeLog()
}

// ChangeLogTail returns the last n change log entries.
func (lib *Library) ChangeLogTail(n int) []string {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	return lib.index.ChangeLogTail(n)
}

// Records exports the catalogue in order.
func (lib *Library) Records() []domain.Record {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	return domain.Records(lib.books.Books())
}

// Verify checks that the index and collection describe the same books.
func (lib *Library) Verify() error {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	return lib.consistent()
}

func (lib *Library) check() error {
	if !lib.verify {
		return nil
	}
	if err := lib.consistent(); err != nil {
		lib.logger.Error("catalogue out of sync", "error", err)
		return err
	}
	return nil
}

func (lib *Library) consistent() error {
	if err := lib.index.Verify(); err != nil {
		return err
	}
	if lib.index.Len() != lib.books.Len() {
		return errors.Internal("index holds %d books, collection holds %d", lib.index.Len(), lib.books.Len())
	}
	for b := range lib.books.All() {
		stored, ok := lib.index.Get(b.ISBN())
		if !ok || stored != b {
			return errors.Internal("collection book %s is not the indexed instance", b.ISBN())
		}
	}
	return nil
}
