package alias

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"tg_journal/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	first := func(int) int { return 0 }

	assert.Equal(t, "BlazingBear-5678", generate(12345678, first))
	assert.Equal(t, "BlazingBear-42", generate(42, first))

	for i := 0; i < 50; i++ {
		a := Generate(987654321)
		assert.True(t, strings.HasSuffix(a, "-4321"), a)
	}
}

func TestGetOrCreateIsStable(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := storage.New(storage.DriverSQLite, filepath.Join(t.TempDir(), "alias.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc := NewService(store, logger)

	_, ok := svc.Resolve(ctx, 1001)
	assert.False(t, ok)

	first, err := svc.GetOrCreate(ctx, 1001)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(first, "-1001"))

	second, err := svc.GetOrCreate(ctx, 1001)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	resolved, ok := svc.Resolve(ctx, 1001)
	assert.True(t, ok)
	assert.Equal(t, first, resolved)
}
