// Package data is armory's data service: the ingestion pipeline that loads
// configuration documents into the record store, the mutations that write
// normalized records, and the explode operations that materialize nested
// views back out of the store.
//
// The service holds no state across calls beyond its collaborators. Every
// record read goes to the store; nothing is cached.
package data

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roach88/armory/internal/logger"
	"github.com/roach88/armory/internal/store"
)

// TimeFormat is the layout of every timestamp the service writes.
const TimeFormat = "2006-01-02 15:04:05"

// Store is the record store the service runs against: the generic CRUD
// Adapter plus schema building and units of work.
type Store interface {
	store.Adapter
	Build(ctx context.Context, schema string) error
	Atomic(ctx context.Context, fn func(store.Adapter) error) error
}

var _ Store = (*store.Store)(nil)

// Clock supplies wall time for operation start and group deactivation stamps.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// PawGenerator mints agent tokens for agents created without one.
type PawGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 paws.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Service implements ingestion, mutation and materialization over a Store.
type Service struct {
	store Store
	log   *zap.SugaredLogger
	clock Clock
	paws  PawGenerator
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Service) { s.log = logger.OrNop(l) }
}

// WithClock sets the wall clock used for timestamps.
func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithPawGenerator sets the generator for agents created without a paw.
func WithPawGenerator(g PawGenerator) Option {
	return func(s *Service) { s.paws = g }
}

// New creates a Service over st.
func New(st Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		log:   zap.NewNop().Sugar(),
		clock: ClockFunc(time.Now),
		paws:  UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("data")
	return s
}

// now returns the current local time in TimeFormat.
func (s *Service) now() string {
	return s.clock.Now().Local().Format(TimeFormat)
}
