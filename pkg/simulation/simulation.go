// Package simulation drives a catalogue through a pseudo-random sequence of
// events. A run is fully determined by its seed.
package simulation

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"

	"github.com/adfharrison1/go-library/pkg/domain"
	"github.com/adfharrison1/go-library/pkg/errors"
	"github.com/adfharrison1/go-library/pkg/library"
	"github.com/adfharrison1/go-library/pkg/logger"
)

const (
	DefaultSteps    = 20
	LibraryName     = "Симуляционная библиотека"
	NonexistentISBN = "000-0-00-000000-0"
)

// Config configures a run. A nil Seed draws a fresh one.
type Config struct {
	Steps  int
	Seed   *int64
	Logger *slog.Logger
}

// DefaultConfig returns a 20-step unseeded run.
func DefaultConfig() Config {
	return Config{Steps: DefaultSteps}
}

// Seeded returns a config for a reproducible run.
func Seeded(steps int, seed int64) Config {
	return Config{Steps: steps, Seed: &seed}
}

// Event records one step of a run. Code is set when the operation was
// rejected.
type Event struct {
	Step    int         `json:"step" msgpack:"step"`
	Kind    EventKind   `json:"kind" msgpack:"kind"`
	ISBN    string      `json:"isbn,omitempty" msgpack:"isbn,omitempty"`
	Query   string      `json:"query,omitempty" msgpack:"query,omitempty"`
	Found   int         `json:"found,omitempty" msgpack:"found,omitempty"`
	OK      bool        `json:"ok" msgpack:"ok"`
	Message string      `json:"message" msgpack:"message"`
	Code    errors.Code `json:"code,omitempty" msgpack:"code,omitempty"`
}

// Report is the outcome of a run. Everything but RunID and Library is
// reproducible from Seed and Steps.
type Report struct {
	RunID     uuid.UUID        `json:"run_id"`
	Seed      int64            `json:"seed"`
	Steps     int              `json:"steps"`
	Events    []Event          `json:"events"`
	Final     library.Status   `json:"final"`
	Books     []domain.Record  `json:"books"`
	ChangeLog []string         `json:"change_log"`
	Library   *library.Library `json:"-"`
}

// Kinds returns the chosen event kinds in order.
func (r *Report) Kinds() []EventKind {
	kinds := make([]EventKind, len(r.Events))
	for i, e := range r.Events {
		kinds[i] = e.Kind
	}
	return kinds
}

// Run executes a simulation on a freshly stocked library.
func Run(cfg Config) (*Report, error) {
	if cfg.Steps < 0 {
		return nil, errors.Validation("steps cannot be negative")
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}

	seed, err := resolveSeed(cfg.Seed)
	if err != nil {
		return nil, err
	}
	runID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}

	lib := library.New(
		library.WithName(LibraryName),
		library.WithSeedCatalogue(),
		library.WithLogger(log),
		library.WithConsistencyChecks(true),
	)
	s := &simulator{
		rng:      rand.New(rand.NewPCG(uint64(seed), uint64(seed))),
		lib:      lib,
		newBooks: slices.Clone(newBookPool),
	}

	log.Info("simulation started", "run_id", runID, "seed", seed, "steps", cfg.Steps, "seeded", cfg.Seed != nil)

	events := make([]Event, 0, cfg.Steps)
	for step := 1; step <= cfg.Steps; step++ {
		ev := s.step(step)
		log.Info(fmt.Sprintf("step %d/%d: %s", step, cfg.Steps, ev.Kind), "ok", ev.OK, "message", ev.Message)
		events = append(events, ev)

		if s.err != nil {
			return nil, fmt.Errorf("step %d failed: %w", step, s.err)
		}

		if err := lib.Verify(); err != nil {
			return nil, fmt.Errorf("step %d left the catalogue inconsistent: %w", step, err)
		}
	}

	final := lib.Status()
	log.Info("simulation finished", "run_id", runID, "total", final.Total, "available", final.Available, "borrowed", final.Borrowed)

	return &Report{
		RunID:     runID,
		Seed:      seed,
		Steps:     cfg.Steps,
		Events:    events,
		Final:     final,
		Books:     lib.Records(),
		ChangeLog: lib.ChangeLog(),
		Library:   lib,
	}, nil
}

func resolveSeed(seed *int64) (int64, error) {
	if seed != nil {
		return *seed, nil
	}
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("draw seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1), nil
}
