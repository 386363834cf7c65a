package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/armory/internal/store"
)

// NewStore opens a store with the default schema in a temp directory. The
// store is closed when the test ends.
func NewStore(t testing.TB) *store.Store {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "armory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}
