package simulation

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/adfharrison1/go-library/pkg/domain"
	"github.com/adfharrison1/go-library/pkg/errors"
	"github.com/adfharrison1/go-library/pkg/library"
)

// EventKind names a simulation event.
type EventKind string

const (
	EventAddBook        EventKind = "add_book"
	EventRemoveRandom   EventKind = "remove_random_book"
	EventBorrowRandom   EventKind = "borrow_random_book"
	EventReturnRandom   EventKind = "return_random_book"
	EventSearchAuthor   EventKind = "search_by_author"
	EventSearchGenre    EventKind = "search_by_genre"
	EventSearchYear     EventKind = "search_by_year"
	EventTryNonexistent EventKind = "try_nonexistent"
)

// EventKinds lists the events a step chooses from, in draw order.
var EventKinds = []EventKind{
	EventAddBook,
	EventRemoveRandom,
	EventBorrowRandom,
	EventReturnRandom,
	EventSearchAuthor,
	EventSearchGenre,
	EventSearchYear,
	EventTryNonexistent,
}

var newBookPool = []domain.Record{
	{Type: "regular", Title: "Собачье сердце", Author: "Михаил Булгаков", Year: 1925, Genre: "Сатира", ISBN: "978-5-389-06535-9"},
	{Type: "fiction", Title: "Улисс", Author: "Джеймс Джойс", Year: 1922, Genre: "Модернизм", ISBN: "978-5-389-03948-0"},
	{Type: "fiction", Title: "О дивный новый мир", Author: "Олдос Хаксли", Year: 1932, Genre: "Антиутопия", ISBN: "978-5-17-090689-1"},
	{Type: "fiction", Title: "Властелин колец", Author: "Дж. Р. Р. Толкин", Year: 1954, Genre: "Фэнтези", ISBN: "978-5-17-080185-2"},
	{Type: "regular", Title: "Шерлок Холмс", Author: "Артур Конан Дойл", Year: 1892, Genre: "Детектив", ISBN: "978-5-389-03215-3"},
	{Type: "reference", Title: "Толковый словарь", Author: "Сергей Ожегов", Year: 1949, Genre: "Справочник", ISBN: "978-5-17-057876-1", ReferenceKind: string(domain.KindDictionary)},
}

var (
	authorPool = []string{"Лев Толстой", "Федор Достоевский", "Джордж Оруэлл", "Джоан Роулинг", "Михаил Булгаков", "Антуан де Сент-Экзюпери"}
	genrePool  = []string{"Роман", "Фэнтези", "Антиутопия", "Сказка", "Детектив", "Приключения"}
	yearPool   = []int{1869, 1949, 1997, 1967, 1925}
)

type simulator struct {
	rng      *rand.Rand
	lib      *library.Library
	newBooks []domain.Record
	err      error // first unexpected error, ends the run
}

// fail records a rejected operation. Expected rejections are part of the
// run; anything else is kept so the run stops.
func (s *simulator) fail(ev *Event, err error) {
	ev.Message = err.Error()
	ev.Code = errors.CodeOf(err)

	var coded *errors.Error
	if !errors.As(err, &coded) || !coded.Expected() {
		if s.err == nil {
			s.err = err
		}
	}
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

func (s *simulator) step(n int) Event {
	ev := Event{Step: n, Kind: pick(s.rng, EventKinds)}

	switch ev.Kind {
	case EventAddBook:
		s.addBook(&ev)
	case EventRemoveRandom:
		s.removeRandom(&ev)
	case EventBorrowRandom:
		s.borrowRandom(&ev)
	case EventReturnRandom:
		s.returnRandom(&ev)
	case EventSearchAuthor:
		author := pick(s.rng, authorPool)
		s.search(&ev, author, library.Query{}.WithAuthor(author))
	case EventSearchGenre:
		genre := pick(s.rng, genrePool)
		s.search(&ev, genre, library.Query{}.WithGenre(genre))
	case EventSearchYear:
		year := pick(s.rng, yearPool)
		s.search(&ev, strconv.Itoa(year), library.Query{}.WithYear(year))
	case EventTryNonexistent:
		ev.ISBN = NonexistentISBN
		s.borrow(&ev)
	}

	return ev
}

func (s *simulator) addBook(ev *Event) {
	if len(s.newBooks) == 0 {
		ev.Message = "no new books to add"
		return
	}
	i := s.rng.IntN(len(s.newBooks))
	record := s.newBooks[i]
	s.newBooks = append(s.newBooks[:i:i], s.newBooks[i+1:]...)

	ev.ISBN = record.ISBN
	book, err := domain.FromRecord(record)
	if err != nil {
		s.fail(ev, err)
		return
	}
	if err := s.lib.AddBook(book); err != nil {
		s.fail(ev, err)
		return
	}
	ev.OK = true
	ev.Message = fmt.Sprintf("added %q", book.Title())
}

func (s *simulator) removeRandom(ev *Event) {
	books := s.lib.Books()
	if len(books) == 0 {
		ev.Message = "no books to remove"
		return
	}
	book := pick(s.rng, books)
	ev.ISBN = book.ISBN()
	if err := s.lib.RemoveBook(book.ISBN()); err != nil {
		s.fail(ev, err)
		return
	}
	ev.OK = true
	ev.Message = fmt.Sprintf("removed %q", book.Title())
}

func (s *simulator) borrowRandom(ev *Event) {
	available := s.lib.AvailableBooks()
	if len(available) == 0 {
		ev.Message = "no available books to borrow"
		return
	}
	ev.ISBN = pick(s.rng, available).ISBN()
	s.borrow(ev)
}

func (s *simulator) borrow(ev *Event) {
	policy, err := s.lib.BorrowBook(ev.ISBN)
	if err != nil {
		s.fail(ev, err)
		return
	}
	ev.OK = true
	ev.Message = fmt.Sprintf("borrowed for %s", policy)
}

func (s *simulator) returnRandom(ev *Event) {
	borrowed := s.lib.BorrowedBooks()
	if len(borrowed) == 0 {
		ev.Message = "no borrowed books to return"
		return
	}
	book := pick(s.rng, borrowed)
	ev.ISBN = book.ISBN()
	if err := s.lib.ReturnBook(book.ISBN()); err != nil {
		s.fail(ev, err)
		return
	}
	ev.OK = true
	ev.Message = fmt.Sprintf("returned %q", book.Title())
}

func (s *simulator) search(ev *Event, term string, q library.Query) {
	results := s.lib.SearchBooks(q)
	ev.Query = term
	ev.Found = results.Len()
	ev.OK = true
	ev.Message = fmt.Sprintf("found %d book(s) for %q", ev.Found, term)
}
