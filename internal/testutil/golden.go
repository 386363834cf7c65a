package testutil

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

// AssertGoldenJSON compares v, as indented JSON, against
// testdata/golden/{name}.golden.
//
// To regenerate golden files, run the test with -update:
//
//	go test ./internal/data -update
func AssertGoldenJSON(t *testing.T, name string, v any) {
	t.Helper()

	b, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	b = append(b, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, b)
}
