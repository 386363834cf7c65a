package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/armory/internal/errors"
	"github.com/roach88/armory/internal/record"
)

func TestResolveOne(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.agent(t, "solo")
	f.agent(t, "dup")
	f.agent(t, "dup")

	rec, err := resolveOne(ctx, f.store, record.KindAgent, record.Criteria{"paw": "solo"})
	require.NoError(t, err)
	assert.Equal(t, "solo", rec.String("paw"))

	_, err = resolveOne(ctx, f.store, record.KindAgent, record.Criteria{"paw": "none"})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.Contains(t, err.Error(), "paw=none")

	_, err = resolveOne(ctx, f.store, record.KindAgent, record.Criteria{"paw": "dup"})
	assert.True(t, errors.Is(err, errors.ErrAmbiguous))
	assert.False(t, errors.Is(err, errors.ErrNotFound))
}

func TestOnly(t *testing.T) {
	criteria := record.Criteria{"id": int64(4)}

	v, err := only([]string{"x"}, record.KindGroup, criteria)
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	_, err = only([]string{}, record.KindGroup, criteria)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = only([]string{"x", "y"}, record.KindGroup, criteria)
	assert.True(t, errors.Is(err, errors.ErrAmbiguous))
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name     string
		criteria record.Criteria
		want     string
	}{
		{"nil", nil, "any criteria"},
		{"empty", record.Criteria{}, "any criteria"},
		{"single", record.Criteria{"paw": "abc"}, "paw=abc"},
		{"sorted", record.Criteria{"phase": 2, "adversary_id": int64(1)}, "adversary_id=1 phase=2"},
		{"null", record.Criteria{"deactivated": nil}, "deactivated=<nil>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.criteria))
		})
	}
}

func TestViews_NeverNil(t *testing.T) {
	out := views(nil, record.PlannerFrom)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}
