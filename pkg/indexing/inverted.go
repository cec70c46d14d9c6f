package indexing

import (
	"github.com/adfharrison1/go-library/pkg/domain"
	"github.com/adfharrison1/go-library/pkg/errors"
)

// Inverted maps one field's value to the books carrying it. Buckets keep
// insertion order. It is not safe for concurrent use on its own; Index
// guards it.
type Inverted[K comparable] struct {
	Field    string
	Inverted map[K][]*domain.Book
	keyOf    func(*domain.Book) K
}

// NewInverted creates an inverted index on a field extracted by keyOf.
func NewInverted[K comparable](field string, keyOf func(*domain.Book) K) *Inverted[K] {
	return &Inverted[K]{
		Field:    field,
		Inverted: make(map[K][]*domain.Book),
		keyOf:    keyOf,
	}
}

// Insert appends book to its bucket.
func (inv *Inverted[K]) Insert(book *domain.Book) {
	key := inv.keyOf(book)
	inv.Inverted[key] = append(inv.Inverted[key], book)
}

// Delete removes the book with the same ISBN from its bucket. The bucket
// is rebuilt in a new backing array, and an emptied bucket stays as an
// empty list.
func (inv *Inverted[K]) Delete(book *domain.Book) bool {
	key := inv.keyOf(book)
	bucket, ok := inv.Inverted[key]
	if !ok {
		return false
	}
	for i, b := range bucket {
		if b.Equal(book) {
			next := make([]*domain.Book, 0, len(bucket)-1)
			next = append(next, bucket[:i]...)
			next = append(next, bucket[i+1:]...)
			inv.Inverted[key] = next
			return true
		}
	}
	return false
}

// Query returns a copy of the bucket for value, empty when unknown.
func (inv *Inverted[K]) Query(value K) []*domain.Book {
	bucket := inv.Inverted[value]
	out := make([]*domain.Book, len(bucket))
	copy(out, bucket)
	return out
}

// Keys returns the number of distinct keys, empty buckets included.
func (inv *Inverted[K]) Keys() int {
	return len(inv.Inverted)
}

func (inv *Inverted[K]) verify(byISBN map[string]*domain.Book) error {
	seen := make(map[string]int, len(byISBN))
	for key, bucket := range inv.Inverted {
		for _, b := range bucket {
			stored, ok := byISBN[b.ISBN()]
			if !ok {
				return errors.Internal("%s index holds unknown ISBN %s", inv.Field, b.ISBN())
			}
			if stored != b {
				return errors.Internal("%s index holds a stale instance of ISBN %s", inv.Field, b.ISBN())
			}
			if inv.keyOf(b) != key {
				return errors.Internal("%s index holds ISBN %s under the wrong key", inv.Field, b.ISBN())
			}
			seen[b.ISBN()]++
		}
	}
	for isbn := range byISBN {
		if seen[isbn] != 1 {
			return errors.Internal("%s index holds ISBN %s %d times", inv.Field, isbn, seen[isbn])
		}
	}
	return nil
}
