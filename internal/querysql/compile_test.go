package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/armory/internal/queryir"
)

func TestCompile_SelectAll(t *testing.T) {
	sql, params, err := NewSQLCompiler().Compile(queryir.Select{From: "core_agent"})
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM core_agent ORDER BY id ASC", sql)
	assert.Empty(t, params)
}

func TestCompile_SelectFiltered(t *testing.T) {
	stmt := queryir.Select{
		From:   "core_attack",
		Filter: queryir.Match(map[string]any{"attack_id": "T1033", "tactic": "discovery"}),
	}

	sql, params, err := NewSQLCompiler().Compile(stmt)
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM core_attack WHERE attack_id = ? AND tactic = ? ORDER BY id ASC", sql)
	assert.Equal(t, []any{"T1033", "discovery"}, params)

	// Values are never interpolated
	assert.NotContains(t, sql, "T1033")
}

func TestCompile_EqualsNil(t *testing.T) {
	stmt := queryir.Select{From: "core_group", Filter: queryir.Equals{Field: "deactivated", Value: nil}}

	sql, params, err := NewSQLCompiler().Compile(stmt)
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM core_group WHERE deactivated IS NULL ORDER BY id ASC", sql)
	assert.Empty(t, params)
}

func TestCompile_In(t *testing.T) {
	stmt := queryir.Select{
		From:   "core_fact",
		Filter: queryir.In{Field: "source_id", Values: []any{int64(3), int64(1)}},
	}

	sql, params, err := NewSQLCompiler().Compile(stmt)
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM core_fact WHERE source_id IN (?, ?) ORDER BY id ASC", sql)
	assert.Equal(t, []any{int64(3), int64(1)}, params)
}

func TestCompile_InEmptyMatchesNothing(t *testing.T) {
	stmt := queryir.Select{From: "core_fact", Filter: queryir.In{Field: "source_id"}}

	sql, params, err := NewSQLCompiler().Compile(stmt)
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM core_fact WHERE 0 = 1 ORDER BY id ASC", sql)
	assert.Empty(t, params)
}

func TestCompile_Insert(t *testing.T) {
	stmt := queryir.Insert{
		Into:   "core_ability",
		Values: map[string]any{"platform": "linux", "ability_id": "ab1", "cleanup": nil},
	}

	sql, params, err := NewSQLCompiler().Compile(stmt)
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO core_ability (ability_id, cleanup, platform) VALUES (?, ?, ?)", sql)
	assert.Equal(t, []any{"ab1", nil, "linux"}, params)
}

func TestCompile_Update(t *testing.T) {
	stmt := queryir.Update{
		Table:  "core_group",
		Set:    map[string]any{"deactivated": "2026-10-17 09:30:00"},
		Filter: queryir.Equals{Field: "id", Value: int64(4)},
	}

	sql, params, err := NewSQLCompiler().Compile(stmt)
	require.NoError(t, err)

	assert.Equal(t, "UPDATE core_group SET deactivated = ? WHERE id = ?", sql)
	assert.Equal(t, []any{"2026-10-17 09:30:00", int64(4)}, params)
}

func TestCompile_Delete(t *testing.T) {
	stmt := queryir.Delete{From: "core_adversary_map", Filter: queryir.Equals{Field: "adversary_id", Value: int64(2)}}

	sql, params, err := NewSQLCompiler().Compile(stmt)
	require.NoError(t, err)

	assert.Equal(t, "DELETE FROM core_adversary_map WHERE adversary_id = ?", sql)
	assert.Equal(t, []any{int64(2)}, params)
}

func TestCompile_NestedAnd(t *testing.T) {
	stmt := queryir.Select{
		From: "core_fact",
		Filter: queryir.And{Predicates: []queryir.Predicate{
			queryir.Equals{Field: "property", Value: "host.user.name"},
			queryir.And{Predicates: []queryir.Predicate{
				queryir.In{Field: "source_id", Values: []any{int64(1)}},
				queryir.And{},
			}},
		}},
	}

	sql, params, err := NewSQLCompiler().Compile(stmt)
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM core_fact WHERE property = ? AND source_id IN (?) AND 1 = 1 ORDER BY id ASC", sql)
	assert.Equal(t, []any{"host.user.name", int64(1)}, params)
}

func TestCompile_RejectsInvalidIdentifiers(t *testing.T) {
	stmt := queryir.Select{From: "core_agent", Filter: queryir.Equals{Field: "paw = '' OR 1", Value: 1}}

	_, _, err := NewSQLCompiler().Compile(stmt)
	require.Error(t, err)

	var verr *queryir.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCompile_Deterministic(t *testing.T) {
	stmt := queryir.Insert{
		Into: "core_fact",
		Values: map[string]any{
			"property": "p", "value": "v", "source_id": int64(1),
			"score": int64(1), "blacklist": int64(0), "set_id": int64(0), "link_id": nil,
		},
	}

	first, _, err := NewSQLCompiler().Compile(stmt)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, _, err := NewSQLCompiler().Compile(stmt)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
