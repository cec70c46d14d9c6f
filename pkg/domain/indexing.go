package domain

// BookIndex defines the lookup structure kept alongside a catalogue's
// ordered collection: a unique ISBN key plus author, year and genre buckets.
type BookIndex interface {
	Add(book *Book) error
	Remove(book *Book) bool
	Get(isbn string) (*Book, bool)
	Contains(isbn string) bool
	Len() int
	ISBNs() []string
	ByAuthor(author string) []*Book
	ByYear(year int) []*Book
	ByGenre(genre string) []*Book
	ChangeLog() []string
	ChangeLogTail(n int) []string
	Verify() error
}
