// Package dbtest opens throwaway in-memory SQLite stores for tests.
package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"technews/internal/db"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var seq atomic.Int64

// New returns a migrated store private to the calling test.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("technews_test_%d", seq.Add(1))
	gdb, err := db.Open("sqlite://file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close(gdb)
	})
	return gdb
}
