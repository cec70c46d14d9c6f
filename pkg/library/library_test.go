package library_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adfharrison1/go-library/pkg/domain"
	liberrors "github.com/adfharrison1/go-library/pkg/errors"
	"github.com/adfharrison1/go-library/pkg/indexing"
	"github.com/adfharrison1/go-library/pkg/library"
	"github.com/adfharrison1/go-library/pkg/logger"
)

func newSeeded(t *testing.T) *library.Library {
	t.Helper()
	return library.New(
		library.WithName("Тестовая библиотека"),
		library.WithSeedCatalogue(),
		library.WithConsistencyChecks(true),
	)
}

func TestNew_Empty(t *testing.T) {
	lib := library.New()

	assert.Equal(t, library.DefaultName, lib.Name())
	assert.Equal(t, 0, lib.Len())
	assert.Equal(t, library.Status{Name: library.DefaultName}, lib.Status())
	assert.Empty(t, lib.ChangeLog())
}

func TestNew_SeedCatalogue(t *testing.T) {
	lib := newSeeded(t)

	assert.Equal(t, "Тестовая библиотека", lib.Name())
	assert.Equal(t, 8, lib.Len())
	assert.NoError(t, lib.Verify())
	assert.Len(t, lib.ChangeLog(), 8)
}

func TestNew_InitialBooksSkipDuplicates(t *testing.T) {
	lib := library.New(library.WithInitialBooks(
		domain.NewBook("A", "X", 2000, "G", "111"),
		domain.NewBook("A again", "X", 2000, "G", "111"),
		domain.NewBook("B", "Y", 2001, "G", "222"),
	))

	assert.Equal(t, 2, lib.Len())
	book, ok := lib.Book("111")
	require.True(t, ok)
	assert.Equal(t, "A", book.Title())
}

func TestAddBook_BorrowScenario(t *testing.T) {
	lib := library.New(library.WithConsistencyChecks(true))
	book := domain.NewBook("A", "X", 2000, "G", "111")

	require.NoError(t, lib.AddBook(book))

	got, ok := lib.Book("111")
	require.True(t, ok)
	assert.Same(t, book, got)
	assert.Contains(t, lib.Books(), book)

	policy, err := lib.BorrowBook("111")
	require.NoError(t, err)
	assert.Equal(t, 14, policy.LoanPeriodDays)
	assert.True(t, policy.CanBeExtended())

	_, err = lib.BorrowBook("111")
	assert.ErrorIs(t, err, liberrors.ErrInvalidOperation)
	assert.Contains(t, err.Error(), "already borrowed")

	require.NoError(t, lib.ReturnBook("111"))
	err = lib.ReturnBook("111")
	assert.ErrorIs(t, err, liberrors.ErrInvalidOperation)
	assert.Contains(t, err.Error(), "was not borrowed")
}

func TestAddBook_Duplicate(t *testing.T) {
	lib := newSeeded(t)
	require.NoError(t, lib.AddBook(domain.NewBook("Новая книга", "Новый автор", 2023, "Новый жанр", "999-999")))
	assert.Equal(t, 9, lib.Len())

	err := lib.AddBook(domain.NewBook("Другая книга", "Другой автор", 2023, "Другой жанр", "999-999"))
	assert.ErrorIs(t, err, liberrors.ErrDuplicateKey)
	assert.Contains(t, err.Error(), "already exists")
	assert.Equal(t, 9, lib.Len())
	assert.Empty(t, lib.SearchBooks(library.Query{}.WithAuthor("Другой автор")).Books())

	book, _ := lib.Book("999-999")
	assert.Equal(t, "Новая книга", book.Title())
}

func TestAddBook_Invalid(t *testing.T) {
	lib := library.New()

	err := lib.AddBook(nil)
	assert.ErrorIs(t, err, liberrors.ErrValidation)

	err = lib.AddBook(domain.NewBook("", "X", 2000, "G", ""))
	assert.ErrorIs(t, err, liberrors.ErrValidation)
	assert.Equal(t, 0, lib.Len())
}

func TestAddBook_OnlyISBNRequired(t *testing.T) {
	lib := library.New(library.WithConsistencyChecks(true))

	require.NoError(t, lib.AddBook(domain.NewBook("", "", -300, "", "111")))
	assert.Equal(t, 1, lib.Len())
	assert.Len(t, lib.SearchBooks(library.Query{}.WithYear(-300)).Books(), 1)

	restored, err := library.FromRecords(lib.Records())
	require.NoError(t, err)
	assert.Equal(t, lib.Records(), restored.Records())
}

func TestAddBook_IdentityFixedAfterInsert(t *testing.T) {
	lib := library.New(library.WithConsistencyChecks(true))
	book := domain.NewBook("A", "X", 2000, "G", "111")
	require.NoError(t, lib.AddBook(book))

	record := book.ToRecord()
	record.ISBN = "222"
	record.Author = "Y"
	record.Year = 1900
	listed := lib.Books()
	listed[0] = domain.NewBook("B", "Y", 1900, "H", "222")

	assert.NotEqual(t, record.ISBN, book.ISBN())
	assert.NotSame(t, listed[0], book)
	assert.Equal(t, "111", book.ISBN())
	assert.Equal(t, "X", book.Author())
	assert.Equal(t, []*domain.Book{book}, lib.SearchBooks(library.Query{}.WithAuthor("X")).Books())
	assert.Empty(t, lib.SearchBooks(library.Query{}.WithAuthor("Y")).Books())
	assert.NoError(t, lib.Verify())

	require.NoError(t, lib.AddBook(domain.NewBook("C", "X", 2001, "G", "333")))
	require.NoError(t, lib.RemoveBook("111"))
	_, ok := lib.Book("111")
	assert.False(t, ok)
	assert.Equal(t, 1, lib.Len())
	assert.NoError(t, lib.Verify())
}

// faultyIndex wraps the real index and can be told to misbehave.
type faultyIndex struct {
	*indexing.Index
	refuseRemove bool
	corrupt      bool
}

func (f *faultyIndex) Remove(book *domain.Book) bool {
	if f.refuseRemove {
		return false
	}
	return f.Index.Remove(book)
}

func (f *faultyIndex) Verify() error {
	if f.corrupt {
		return liberrors.Internal("index corrupt")
	}
	return f.Index.Verify()
}

func TestRemoveBook_IndexRefusesRemoval(t *testing.T) {
	idx := &faultyIndex{Index: indexing.New()}
	lib := library.New(library.WithIndex(idx), library.WithConsistencyChecks(true))
	book := domain.NewBook("A", "X", 2000, "G", "111")
	require.NoError(t, lib.AddBook(book))

	idx.refuseRemove = true
	err := lib.RemoveBook("111")

	assert.ErrorIs(t, err, liberrors.ErrInternal)
	assert.Equal(t, 1, lib.Len())
	got, ok := lib.Book("111")
	require.True(t, ok)
	assert.Same(t, book, got)
	assert.NoError(t, lib.Verify())

	idx.refuseRemove = false
	require.NoError(t, lib.RemoveBook("111"))
	assert.Equal(t, 0, lib.Len())
}

func TestAddBook_FailedCheckRollsBack(t *testing.T) {
	idx := &faultyIndex{Index: indexing.New()}
	lib := library.New(library.WithIndex(idx), library.WithConsistencyChecks(true))

	idx.corrupt = true
	err := lib.AddBook(domain.NewBook("A", "X", 2000, "G", "111"))

	assert.ErrorIs(t, err, liberrors.ErrInternal)
	assert.Equal(t, 0, lib.Len())
	assert.False(t, idx.Contains("111"))
	assert.Empty(t, idx.ByAuthor("X"))

	idx.corrupt = false
	require.NoError(t, lib.AddBook(domain.NewBook("A", "X", 2000, "G", "111")))
	assert.NoError(t, lib.Verify())
}

func TestAddBook_NReferencedOnce(t *testing.T) {
	lib := library.New(library.WithConsistencyChecks(true))
	books := []*domain.Book{
		domain.NewBook("A", "X", 2000, "G1", "1"),
		domain.NewBook("B", "X", 2001, "G2", "2"),
		domain.NewFictionBook("C", "Y", 2000, "G1", "3"),
		domain.NewReferenceBook("D", "Z", 2002, "G3", "4", domain.KindAtlas),
	}
	for _, b := range books {
		require.NoError(t, lib.AddBook(b))
	}

	assert.Equal(t, len(books), lib.Len())
	assert.NoError(t, lib.Verify())
}

func TestRemoveBook(t *testing.T) {
	lib := newSeeded(t)
	before := lib.Records()
	logBefore := lib.ChangeLog()

	err := lib.RemoveBook("000-0-00-000000-0")
	assert.ErrorIs(t, err, liberrors.ErrNotFound)
	assert.Equal(t, before, lib.Records())
	assert.Equal(t, logBefore, lib.ChangeLog())

	require.NoError(t, lib.RemoveBook("978-5-389-07435-1"))
	assert.Equal(t, 7, lib.Len())
	_, ok := lib.Book("978-5-389-07435-1")
	assert.False(t, ok)
	assert.Len(t, lib.SearchBooks(library.Query{}.WithAuthor("Лев Толстой")).Books(), 1)
	assert.Contains(t, lib.ChangeLogTail(1)[0], "removed book: Война и мир")
	assert.NoError(t, lib.Verify())

	err = lib.RemoveBook("978-5-389-07435-1")
	assert.ErrorIs(t, err, liberrors.ErrNotFound)
}

func TestBorrowReturn_NotFound(t *testing.T) {
	lib := newSeeded(t)

	_, err := lib.BorrowBook("000-0-00-000000-0")
	assert.ErrorIs(t, err, liberrors.ErrNotFound)

	err = lib.ReturnBook("000-0-00-000000-0")
	assert.ErrorIs(t, err, liberrors.ErrNotFound)
}

func TestBorrowBook_StatusCounts(t *testing.T) {
	lib := newSeeded(t)
	isbn := lib.Books()[0].ISBN()

	_, err := lib.BorrowBook(isbn)
	require.NoError(t, err)

	book, _ := lib.Book(isbn)
	assert.False(t, book.IsAvailable())
	assert.Equal(t, library.Status{Name: "Тестовая библиотека", Total: 8, Available: 7, Borrowed: 1}, lib.Status())
	assert.Equal(t, []*domain.Book{book}, lib.BorrowedBooks())
	assert.Len(t, lib.AvailableBooks(), 7)
}

func TestBorrowBook_LibraryUseOnly(t *testing.T) {
	var buf bytes.Buffer
	lib := library.New(library.WithLogger(logger.New(logger.Config{Writer: &buf})))
	encyclopedia := domain.NewReferenceBook("Britannica", "Various", 2010, "Reference", "e-1", domain.KindEncyclopedia)

	require.NoError(t, lib.AddBook(encyclopedia))
	assert.Contains(t, buf.String(), "library use only")

	_, err := lib.BorrowBook("e-1")
	assert.ErrorIs(t, err, liberrors.ErrInvalidOperation)
	assert.Contains(t, err.Error(), "cannot be borrowed")
	assert.True(t, encyclopedia.IsAvailable())
}

func TestBorrowBook_PolicyPerVariant(t *testing.T) {
	lib := library.New()
	require.NoError(t, lib.AddBook(domain.NewFictionBook("Dune", "Herbert", 1965, "Science Fiction", "f-1")))
	require.NoError(t, lib.AddBook(domain.NewReferenceBook("Atlas", "Various", 2015, "Reference", "a-1", domain.KindAtlas)))

	policy, err := lib.BorrowBook("f-1")
	require.NoError(t, err)
	assert.Equal(t, domain.LoanPolicy{Variant: domain.VariantFiction, LoanPeriodDays: 21, MaxRenewals: 2}, policy)

	policy, err = lib.BorrowBook("a-1")
	require.NoError(t, err)
	assert.Equal(t, 7, policy.LoanPeriodDays)
	assert.False(t, policy.CanBeExtended())
}

func TestBooksByType(t *testing.T) {
	lib := newSeeded(t)
	fiction := domain.NewFictionBook("Dune", "Herbert", 1965, "Science Fiction", "f-1")
	require.NoError(t, lib.AddBook(fiction))

	assert.Equal(t, []*domain.Book{fiction}, lib.BooksByType(domain.VariantFiction).Books())
	assert.Equal(t, 8, lib.BooksByType(domain.VariantRegular).Len())
	assert.Equal(t, 0, lib.BooksByType(domain.VariantReference).Len())
}

func TestSearchByKeyword(t *testing.T) {
	lib := newSeeded(t)

	assert.GreaterOrEqual(t, lib.SearchByKeyword("война").Len(), 1)
	assert.GreaterOrEqual(t, lib.SearchByKeyword("преступление").Len(), 1)
	assert.Equal(t, 2, lib.SearchByKeyword("1869").Len())
}

func TestFromRecords(t *testing.T) {
	lib := newSeeded(t)
	_, err := lib.BorrowBook("978-5-17-080115-9")
	require.NoError(t, err)

	restored, err := library.FromRecords(lib.Records(), library.WithName(lib.Name()))
	require.NoError(t, err)

	assert.Equal(t, lib.Records(), restored.Records())
	assert.Equal(t, lib.Status(), restored.Status())
	assert.NoError(t, restored.Verify())
}

func TestFromRecords_Duplicate(t *testing.T) {
	records := []domain.Record{
		domain.NewBook("A", "X", 2000, "G", "111").ToRecord(),
		domain.NewBook("B", "Y", 2001, "G", "111").ToRecord(),
	}

	_, err := library.FromRecords(records)
	assert.ErrorIs(t, err, liberrors.ErrDuplicateKey)
}

func TestLoggerReceivesOutcomes(t *testing.T) {
	var buf bytes.Buffer
	lib := library.New(library.WithLogger(logger.New(logger.Config{Writer: &buf})))

	require.NoError(t, lib.AddBook(domain.NewBook("A", "X", 2000, "G", "111")))
	_, _ = lib.BorrowBook("111")
	_, _ = lib.BorrowBook("111")

	out := buf.String()
	assert.Contains(t, out, "INFO: added book")
	assert.Contains(t, out, "INFO: borrowed book")
	assert.Contains(t, out, "loan_days=14")
	assert.Contains(t, out, "WARN: book already borrowed")
}
