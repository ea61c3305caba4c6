package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/manufacturing/internal/domain/warning"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormWarningStore(t *testing.T) {
	ctx := context.Background()
	tenantID, userID := uuid.New(), uuid.New()

	t.Run("unknown key is not acknowledged", func(t *testing.T) {
		store := NewGormWarningStore(setupTestDB(t), 0)
		ok, err := store.Consume(ctx, tenantID, userID, "process_already_exists1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("single acknowledgement is consumed once", func(t *testing.T) {
		store := NewGormWarningStore(setupTestDB(t), 0)
		ack, err := warning.NewAcknowledgement(tenantID, userID, "process_already_exists1", false)
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, ack))

		ok, err := store.Consume(ctx, tenantID, userID, "process_already_exists1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Consume(ctx, tenantID, userID, "process_already_exists1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("permanent acknowledgement survives consumption", func(t *testing.T) {
		store := NewGormWarningStore(setupTestDB(t), 0)
		ack, err := warning.NewAcknowledgement(tenantID, userID, "process_already_exists2", true)
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, ack))

		for i := 0; i < 2; i++ {
			ok, err := store.Consume(ctx, tenantID, userID, "process_already_exists2")
			require.NoError(t, err)
			assert.True(t, ok)
		}
	})

	t.Run("acknowledgements belong to one user", func(t *testing.T) {
		store := NewGormWarningStore(setupTestDB(t), 0)
		ack, err := warning.NewAcknowledgement(tenantID, userID, "process_already_exists3", true)
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, ack))

		ok, err := store.Consume(ctx, tenantID, uuid.New(), "process_already_exists3")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expired acknowledgement is ignored", func(t *testing.T) {
		store := NewGormWarningStore(setupTestDB(t), time.Hour)
		ack, err := warning.NewAcknowledgement(tenantID, userID, "process_already_exists4", false)
		require.NoError(t, err)
		ack.CreatedAt = time.Now().Add(-48 * time.Hour)
		require.NoError(t, store.Save(ctx, ack))

		ok, err := store.Consume(ctx, tenantID, userID, "process_already_exists4")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestGormWarningStore_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	tenantID, userID := uuid.New(), uuid.New()

	save := func(t *testing.T, store *GormWarningStore, key string, always bool, age time.Duration) {
		t.Helper()
		ack, err := warning.NewAcknowledgement(tenantID, userID, key, always)
		require.NoError(t, err)
		ack.CreatedAt = time.Now().Add(-age)
		require.NoError(t, store.Save(ctx, ack))
	}

	t.Run("deletes stale single acknowledgements only", func(t *testing.T) {
		store := NewGormWarningStore(setupTestDB(t), time.Hour)
		save(t, store, "stale", false, 2*time.Hour)
		save(t, store, "fresh", false, time.Minute)
		save(t, store, "permanent", true, 48*time.Hour)

		deleted, err := store.PurgeExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		ok, err := store.Consume(ctx, tenantID, userID, "fresh")
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = store.Consume(ctx, tenantID, userID, "permanent")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("no ttl keeps everything", func(t *testing.T) {
		store := NewGormWarningStore(setupTestDB(t), 0)
		save(t, store, "old", false, 72*time.Hour)

		deleted, err := store.PurgeExpired(ctx)
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})
}
