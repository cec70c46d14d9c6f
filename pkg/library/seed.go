package library

import "github.com/adfharrison1/go-library/pkg/domain"

const DefaultName = "Главная библиотека"

// SeedCatalogue returns fresh instances of the starter set.
func SeedCatalogue() []*domain.Book {
	return []*domain.Book{
		domain.NewBook("Война и мир", "Лев Толстой", 1869, "Роман", "978-5-389-07435-1"),
		domain.NewBook("Преступление и наказание", "Федор Достоевский", 1866, "Роман", "978-5-17-090665-5"),
		domain.NewBook("Мастер и Маргарита", "Михаил Булгаков", 1967, "Фэнтези", "978-5-17-067580-4"),
		domain.NewBook("1984", "Джордж Оруэлл", 1949, "Антиутопия", "978-5-17-080115-9"),
		domain.NewBook("Гарри Поттер и философский камень", "Джоан Роулинг", 1997, "Фэнтези", "978-5-389-07429-0"),
		domain.NewBook("Маленький принц", "Антуан де Сент-Экзюпери", 1943, "Сказка", "978-5-389-04863-5"),
		domain.NewBook("Анна Каренина", "Лев Толстой", 1877, "Роман", "978-5-699-40438-4"),
		domain.NewBook("Идиот", "Федор Достоевский", 1869, "Роман", "978-5-17-090678-5"),
	}
}
