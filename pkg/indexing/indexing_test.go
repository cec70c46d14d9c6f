package indexing_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adfharrison1/go-library/pkg/domain"
	liberrors "github.com/adfharrison1/go-library/pkg/errors"
	"github.com/adfharrison1/go-library/pkg/indexing"
)

func fixtureBooks() (*domain.Book, *domain.Book, *domain.Book) {
	return domain.NewBook("Книга 1", "Автор А", 2020, "Жанр X", "111"),
		domain.NewBook("Книга 2", "Автор Б", 2020, "Жанр Y", "222"),
		domain.NewBook("Книга 3", "Автор А", 2021, "Жанр X", "333")
}

func TestIndex_Add(t *testing.T) {
	book1, _, _ := fixtureBooks()
	idx := indexing.New()

	require.NoError(t, idx.Add(book1))

	assert.Equal(t, 1, idx.Len())
	assert.True(t, idx.Contains("111"))
	got, ok := idx.Get("111")
	require.True(t, ok)
	assert.Same(t, book1, got)
	assert.Len(t, idx.ByAuthor("Автор А"), 1)
	assert.Len(t, idx.ByYear(2020), 1)
	assert.Len(t, idx.ByGenre("Жанр X"), 1)
	assert.NoError(t, idx.Verify())
}

func TestIndex_AddDuplicateISBN(t *testing.T) {
	book1, _, _ := fixtureBooks()
	idx := indexing.New()
	require.NoError(t, idx.Add(book1))

	duplicate := domain.NewBook("Другая книга", "Другой автор", 1999, "Другой жанр", "111")
	err := idx.Add(duplicate)

	require.Error(t, err)
	assert.ErrorIs(t, err, liberrors.ErrDuplicateKey)
	assert.Contains(t, err.Error(), "already exists")

	// No partial state from the rejected add.
	assert.Equal(t, 1, idx.Len())
	assert.Empty(t, idx.ByAuthor("Другой автор"))
	assert.Empty(t, idx.ByYear(1999))
	assert.Empty(t, idx.ByGenre("Другой жанр"))
	assert.Len(t, idx.ChangeLog(), 1)
	assert.NoError(t, idx.Verify())
}

func TestIndex_Remove(t *testing.T) {
	book1, book2, book3 := fixtureBooks()
	idx := indexing.New()
	require.NoError(t, idx.Add(book1))
	require.NoError(t, idx.Add(book2))

	assert.True(t, idx.Remove(book1))
	assert.Equal(t, 1, idx.Len())
	assert.False(t, idx.Contains("111"))
	assert.Empty(t, idx.ByAuthor("Автор А"))
	assert.Len(t, idx.ByYear(2020), 1)

	assert.False(t, idx.Remove(book3))
	assert.Equal(t, 1, idx.Len())
	assert.NoError(t, idx.Verify())
}

func TestIndex_RemoveKeepsEmptyBucket(t *testing.T) {
	book1, _, _ := fixtureBooks()
	idx := indexing.New()
	require.NoError(t, idx.Add(book1))
	require.True(t, idx.Remove(book1))

	keys, err := idx.BucketKeys(indexing.FieldAuthor)
	require.NoError(t, err)
	assert.Equal(t, 1, keys)

	bucket := idx.ByAuthor("Автор А")
	assert.NotNil(t, bucket)
	assert.Empty(t, bucket)
}

func TestIndex_RemoveByOtherInstance(t *testing.T) {
	book1, _, _ := fixtureBooks()
	idx := indexing.New()
	require.NoError(t, idx.Add(book1))

	sameISBN := domain.NewBook("Copy", "Someone Else", 1900, "Other", "111")
	assert.True(t, idx.Remove(sameISBN))
	assert.Empty(t, idx.ByAuthor("Автор А"))
	assert.NoError(t, idx.Verify())
}

func TestIndex_SearchFunctions(t *testing.T) {
	book1, book2, book3 := fixtureBooks()
	idx := indexing.New()
	for _, b := range []*domain.Book{book1, book2, book3} {
		require.NoError(t, idx.Add(b))
	}

	assert.Equal(t, []*domain.Book{book1, book3}, idx.ByAuthor("Автор А"))
	assert.Equal(t, []*domain.Book{book1, book2}, idx.ByYear(2020))
	assert.Equal(t, []*domain.Book{book1, book3}, idx.ByGenre("Жанр X"))

	unknown := idx.ByAuthor("Nobody")
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)
}

func TestIndex_BucketSnapshotsAreIsolated(t *testing.T) {
	book1, _, book3 := fixtureBooks()
	idx := indexing.New()
	require.NoError(t, idx.Add(book1))
	require.NoError(t, idx.Add(book3))

	before := idx.ByAuthor("Автор А")
	require.True(t, idx.Remove(book1))

	assert.Equal(t, []*domain.Book{book1, book3}, before)
	assert.Equal(t, []*domain.Book{book3}, idx.ByAuthor("Автор А"))

	before[0] = nil
	assert.Equal(t, []*domain.Book{book3}, idx.ByAuthor("Автор А"))
}

func TestIndex_ISBNsInInsertionOrder(t *testing.T) {
	book1, book2, book3 := fixtureBooks()
	idx := indexing.New()
	require.NoError(t, idx.Add(book3))
	require.NoError(t, idx.Add(book1))
	require.NoError(t, idx.Add(book2))
	require.True(t, idx.Remove(book1))

	assert.Equal(t, []string{"333", "222"}, idx.ISBNs())
}

func TestIndex_ChangeLog(t *testing.T) {
	book1, book2, _ := fixtureBooks()
	idx := indexing.New()
	require.NoError(t, idx.Add(book1))
	require.NoError(t, idx.Add(book2))
	require.True(t, idx.Remove(book1))

	log := idx.ChangeLog()
	require.Len(t, log, 3)
	assert.Contains(t, log[0], "added book: Книга 1")
	assert.Contains(t, log[2], "removed book: Книга 1")

	// Snapshots are copies.
	log[0] = "tampered"
	assert.NotEqual(t, "tampered", idx.ChangeLog()[0])

	assert.Equal(t, log[1:], idx.ChangeLogTail(2))
	assert.Len(t, idx.ChangeLogTail(10), 3)
	assert.Empty(t, idx.ChangeLogTail(0))
}

func TestIndex_ManyBooksReferencedOnce(t *testing.T) {
	idx := indexing.New()
	const n = 200
	for i := 0; i < n; i++ {
		b := domain.NewBook(
			fmt.Sprintf("Title %d", i),
			fmt.Sprintf("Author %d", i%7),
			1900+i%13,
			fmt.Sprintf("Genre %d", i%5),
			fmt.Sprintf("isbn-%03d", i),
		)
		require.NoError(t, idx.Add(b))
	}

	assert.Equal(t, n, idx.Len())
	total := 0
	for a := 0; a < 7; a++ {
		total += len(idx.ByAuthor(fmt.Sprintf("Author %d", a)))
	}
	assert.Equal(t, n, total)
	assert.NoError(t, idx.Verify())

	for i := 0; i < n; i += 2 {
		b, ok := idx.Get(fmt.Sprintf("isbn-%03d", i))
		require.True(t, ok)
		require.True(t, idx.Remove(b))
	}
	assert.Equal(t, n/2, idx.Len())
	assert.NoError(t, idx.Verify())
}

func TestIndex_BucketKeysUnknownField(t *testing.T) {
	_, err := indexing.New().BucketKeys("publisher")
	assert.ErrorIs(t, err, liberrors.ErrNotFound)
}
