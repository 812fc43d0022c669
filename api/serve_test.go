package api

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-pay/session/memory"
	"github.com/warp/shift-pay/store/sqlite"
)

func TestOpenStore(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		store, closer, err := OpenStore(":memory:")
		require.NoError(t, err)
		defer closer.Close()
		assert.IsType(t, &memory.Store{}, store)
	})

	t.Run("sqlite file", func(t *testing.T) {
		store, closer, err := OpenStore(filepath.Join(t.TempDir(), "sessions.db"))
		require.NoError(t, err)
		defer closer.Close()
		assert.IsType(t, &sqlite.Store{}, store)
	})
}
