package library

import (
	"log/slog"

	"github.com/adfharrison1/go-library/pkg/domain"
)

type Option func(*Library)

func WithName(name string) Option {
	return func(lib *Library) {
		lib.name = name
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(lib *Library) {
		if logger != nil {
			lib.logger = logger
		}
	}
}

// WithIndex replaces the default index implementation. The index must be
// empty.
func WithIndex(index domain.BookIndex) Option {
	return func(lib *Library) {
		lib.index = index
	}
}

// WithInitialBooks adds books, silently, when the library is created.
// Duplicates among them are skipped.
func WithInitialBooks(books ...*domain.Book) Option {
	return func(lib *Library) {
		lib.initial = append(lib.initial, books...)
	}
}

// WithSeedCatalogue stocks the library with the classic starter set.
func WithSeedCatalogue() Option {
	return func(lib *Library) {
		lib.initial = append(lib.initial, SeedCatalogue()...)
	}
}

// WithConsistencyChecks verifies the index after every mutation.
func WithConsistencyChecks(enabled bool) Option {
	return func(lib *Library) {
		lib.verify = enabled
	}
}
