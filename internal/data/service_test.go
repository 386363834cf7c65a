package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/armory/internal/record"
	"github.com/roach88/armory/internal/store"
	"github.com/roach88/armory/internal/testutil"
)

const testNow = "2026-10-17 09:30:00"

type fixture struct {
	svc   *Service
	store *store.Store
	clock *testutil.FixedClock
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	st := testutil.NewStore(t)
	clock := testutil.NewFixedClockAt(testNow)
	opts = append([]Option{WithClock(clock)}, opts...)
	return &fixture{svc: New(st, opts...), store: st, clock: clock}
}

// count returns the number of records of kind matching criteria.
func (f *fixture) count(t *testing.T, kind record.Kind, criteria record.Criteria) int {
	t.Helper()
	recs, err := f.store.Get(context.Background(), kind, criteria)
	require.NoError(t, err)
	return len(recs)
}

func (f *fixture) agent(t *testing.T, paw string) int64 {
	t.Helper()
	id, err := f.svc.CreateAgent(context.Background(), record.Record{"paw": paw, "host": paw + ".lan", "platform": "linux"})
	require.NoError(t, err)
	return id
}

func (f *fixture) ability(t *testing.T, abilityID, platform string) int64 {
	t.Helper()
	id, err := f.svc.CreateAbility(context.Background(), AbilityInput{
		AbilityID:   abilityID,
		Tactic:      "discovery",
		Technique:   TechniqueInput{AttackID: "T1033", Name: "System Owner/User Discovery"},
		Name:        "Find user " + abilityID,
		Description: "Find the current user",
		Platform:    platform,
		Test:        EncodeCommand("whoami"),
	})
	require.NoError(t, err)
	return id
}

func ptr[T any](v T) *T { return &v }
