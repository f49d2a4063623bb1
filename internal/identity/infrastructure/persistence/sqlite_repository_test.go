package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/yifanzh/studyclock/internal/identity/domain"
	"github.com/yifanzh/studyclock/internal/shared/infrastructure/migrations"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema, err := migrations.SQLiteSchema()
	require.NoError(t, err)
	_, err = db.Exec(schema)
	require.NoError(t, err)
	return db
}

func TestSQLiteUserRepository(t *testing.T) {
	repo := NewSQLiteUserRepository(newTestDB(t))
	ctx := context.Background()

	user, err := domain.NewUser(uuid.New(), "考研人")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, user))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, "考研人", found.Name)

	// upsert updates the name in place
	found.Name = "上岸人"
	require.NoError(t, repo.Save(ctx, found))
	again, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "上岸人", again.Name)

	missing, err := repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLiteSettingsRepository(t *testing.T) {
	repo := NewSQLiteSettingsRepository(newTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	missing, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	settings := domain.DefaultSettings(userID)
	require.NoError(t, repo.Save(ctx, settings))

	found, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 25, found.FocusDuration)
	assert.Equal(t, 5, found.BreakDuration)
	assert.Equal(t, 15, found.LongBreakDuration)
	assert.Equal(t, 4, found.PomodorosUntilLongBreak)
	assert.False(t, found.AutoStartBreak)
	assert.True(t, found.SoundEnabled)
	assert.True(t, found.VibrationEnabled)

	// upsert keeps one row per user
	found.FocusDuration = 45
	found.AutoStartBreak = true
	require.NoError(t, repo.Save(ctx, found))

	again, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 45, again.FocusDuration)
	assert.True(t, again.AutoStartBreak)
}
