package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/adfharrison1/go-library/pkg/config"
	"github.com/adfharrison1/go-library/pkg/domain"
	"github.com/adfharrison1/go-library/pkg/library"
	"github.com/adfharrison1/go-library/pkg/logger"
	"github.com/adfharrison1/go-library/pkg/simulation"
	"github.com/adfharrison1/go-library/pkg/storage"
)

const rule = "============================================================"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Getenv))
}

type app struct {
	cfg *config.Config
	log *slog.Logger
	in  *bufio.Reader
	out io.Writer
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer, getenv func(string) string) int {
	cfg, err := config.Load(args, getenv, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "library-sim: %v\n", err)
		return 2
	}

	a := &app{
		cfg: cfg,
		log: logger.New(logger.Config{
			Writer: stdout,
			Format: cfg.Logger.Format,
			Level:  logger.ParseLevel(cfg.Logger.Level),
		}),
		in:  bufio.NewReader(stdin),
		out: stdout,
	}

	switch cfg.Mode {
	case config.ModeDemo:
		err = a.demo()
	case config.ModeSim:
		err = a.simulate(simulation.Config{Steps: cfg.Steps, Seed: cfg.Seed})
	default:
		err = a.menu()
	}
	if err != nil {
		a.log.Error("library-sim failed", "error", err)
		return 1
	}
	return 0
}

func (a *app) menu() error {
	fmt.Fprintln(a.out, "Выберите тип симуляции библиотеки")
	fmt.Fprintln(a.out, rule)
	fmt.Fprintln(a.out, "1. Базовый пример использования")
	fmt.Fprintln(a.out, "2. Пример симуляции")
	fmt.Fprintln(a.out, "3. Симуляция с входными данными")
	fmt.Fprintln(a.out)

	choice, err := a.prompt("Тип симуляции: ")
	if err != nil {
		return err
	}

	switch choice {
	case "1":
		return a.demo()
	case "2":
		if err := a.simulate(simulation.Seeded(simulation.DefaultSteps, 42)); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "\n%s\nСЛУЧАЙНАЯ СИМУЛЯЦИЯ\n%s\n", rule, rule)
		return a.simulate(simulation.Config{Steps: 5})
	case "3":
		fmt.Fprintln(a.out, "Введите входные данные: ")
		steps, err := a.promptInt("Количество шагов симуляции: ")
		if err != nil {
			return err
		}
		seed, err := a.promptInt("Сид: ")
		if err != nil {
			return err
		}
		return a.simulate(simulation.Seeded(steps, int64(seed)))
	default:
		return fmt.Errorf("unknown menu choice %q", choice)
	}
}

func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (a *app) promptInt(label string) (int, error) {
	s, err := a.prompt(label)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return n, nil
}

// demo walks through the basic catalogue operations.
func (a *app) demo() error {
	fmt.Fprintf(a.out, "%s\nПРИМЕР ИСПОЛЬЗОВАНИЯ БИБЛИОТЕКИ\n%s\n", rule, rule)

	lib := library.New(
		library.WithName("Моя библиотека"),
		library.WithSeedCatalogue(),
		library.WithLogger(a.log),
	)
	a.printStatus(lib.Status())

	fmt.Fprintln(a.out, "\nДобавление книги:")
	if err := lib.AddBook(domain.NewBook("Новая книга", "Я", 2024, "Научная литература", "987-654-321-0")); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "\nПоиск книг Толстого:")
	results := lib.SearchBooks(library.Query{}.WithAuthor("Лев Толстой"))
	fmt.Fprintf(a.out, "Найдено книг: %d\n", results.Len())
	for book := range results.All() {
		fmt.Fprintf(a.out, "  - %s\n", book)
	}

	fmt.Fprintln(a.out, "\nВыдача книги:")
	if _, err := lib.BorrowBook("978-5-389-07435-1"); err != nil {
		return err
	}
	a.printStatus(lib.Status())

	fmt.Fprintln(a.out, "\nПоиск по ключевому слову 'мир':")
	fmt.Fprintf(a.out, "Найдено книг: %d\n", lib.SearchByKeyword("мир").Len())

	return a.writeOutputs(lib, lib.Records())
}

func (a *app) simulate(cfg simulation.Config) error {
	fmt.Fprintf(a.out, "\n%s\nЗАПУСК СИМУЛЯЦИИ\n%s\n", rule, rule)

	cfg.Logger = a.log
	report, err := simulation.Run(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Сид: %d\n", report.Seed)
	for _, ev := range report.Events {
		mark := "+"
		if !ev.OK {
			mark = "-"
		}
		fmt.Fprintf(a.out, "%3d %s %-20s %s\n", ev.Step, mark, ev.Kind, ev.Message)
	}
	a.printStatus(report.Final)

	return a.writeOutputs(report.Library, report.Books)
}

func (a *app) printStatus(s library.Status) {
	fmt.Fprintf(a.out, "\n==================================================\n")
	fmt.Fprintf(a.out, "СТАТУС БИБЛИОТЕКИ '%s':\n", s.Name)
	fmt.Fprintf(a.out, "Всего книг: %d\n", s.Total)
	fmt.Fprintf(a.out, "Доступно: %d\n", s.Available)
	fmt.Fprintf(a.out, "Выдано: %d\n", s.Borrowed)
	fmt.Fprintf(a.out, "==================================================\n")
}

func (a *app) writeOutputs(lib *library.Library, records []domain.Record) error {
	if path := a.cfg.Output.SnapshotPath; path != "" {
		if err := storage.Save(path, lib); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
		a.log.Info("saved snapshot", "path", path, "books", len(records))
	}

	if path := a.cfg.Output.JSONPath; path != "" {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create json export: %w", err)
		}
		defer file.Close()
		if err := storage.ExportJSON(file, records); err != nil {
			return fmt.Errorf("export json: %w", err)
		}
		a.log.Info("exported records", "path", path, "books", len(records))
	}
	return nil
}
