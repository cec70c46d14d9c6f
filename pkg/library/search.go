package library

import (
	"github.com/adfharrison1/go-library/pkg/collection"
	"github.com/adfharrison1/go-library/pkg/domain"
)

// Query selects books by author, year and genre. Nil fields are ignored.
type Query struct {
	Author *string
	Year   *int
	Genre  *string
}

func (q Query) WithAuthor(author string) Query {
	q.Author = &author
	return q
}

func (q Query) WithYear(year int) Query {
	q.Year = &year
	return q
}

func (q Query) WithGenre(genre string) Query {
	q.Genre = &genre
	return q
}

// IsEmpty reports whether no criterion is set.
func (q Query) IsEmpty() bool {
	return q.Author == nil && q.Year == nil && q.Genre == nil
}

// SearchBooks narrows the catalogue progressively. The first criterion set,
// in the order author, year, genre, picks the index bucket to start from;
// the remaining ones filter that bucket. An empty query matches nothing.
func (lib *Library) SearchBooks(q Query) *collection.BookCollection {
	lib.mu.RLock()
	defer lib.mu.RUnlock()

	var (
		results []*domain.Book
		seeded  bool
	)

	// An empty seed bucket stays empty; it does not fall through to the
	// next criterion's index as the earlier catalogue did.
	if q.Author != nil {
		results = lib.index.ByAuthor(*q.Author)
		seeded = true
	}

	if q.Year != nil {
		if seeded {
			results = keep(results, func(b *domain.Book) bool { return b.Year() == *q.Year })
		} else {
			results = lib.index.ByYear(*q.Year)
			seeded = true
		}
	}

	if q.Genre != nil {
		if seeded {
			results = keep(results, func(b *domain.Book) bool { return b.Genre() == *q.Genre })
		} else {
			results = lib.index.ByGenre(*q.Genre)
		}
	}

	return collection.New(results...)
}

func keep(books []*domain.Book, pred func(*domain.Book) bool) []*domain.Book {
	out := books[:0:0]
	for _, b := range books {
		if pred(b) {
			out = append(out, b)
		}
	}
	return out
}
