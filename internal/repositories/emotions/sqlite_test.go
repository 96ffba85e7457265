package emotions

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/speaker/internal/common"
	"github.com/dmitrijs2005/speaker/internal/models"
	"github.com/dmitrijs2005/speaker/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	s, err := store.Open(context.Background(), store.Options{Path: filepath.Join(t.TempDir(), "app.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s.DB()
}

func mark(voice int64, label string, start, end float64, intensity int) *models.EmotionMark {
	return &models.EmotionMark{VoiceID: voice, Label: label, StartOffset: start, EndOffset: end, Intensity: intensity, CreatedAt: time.Now().UTC()}
}

func TestCreateAndListByVoice(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	happy, err := r.Create(ctx, mark(1, "Happy", 2.0, 4.0, 70))
	require.NoError(t, err)
	_, err = r.Create(ctx, mark(2, "Calm", 0, 1, 10))
	require.NoError(t, err)
	sad, err := r.Create(ctx, mark(1, "Sad", 5.0, 6.5, 40))
	require.NoError(t, err)

	got, err := r.ListByVoice(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, happy.ID, got[0].ID)
	assert.Equal(t, sad.ID, got[1].ID)
	assert.Equal(t, "Happy", got[0].Label)
	assert.InDelta(t, 2.0, got[0].StartOffset, 1e-9)
	assert.InDelta(t, 4.0, got[0].EndOffset, 1e-9)
	assert.Equal(t, 70, got[0].Intensity)

	one, err := r.GetByID(ctx, sad.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sad", one.Label)
}

func TestCreate_SchemaRejectsBadRanges(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	_, err := r.Create(ctx, mark(1, "Sad", 5.0, 1.0, 50))
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = r.Create(ctx, mark(1, "Loud", 0, 1, 101))
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	got, err := r.ListByVoice(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDeleteAndDeleteByVoice(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	m1, err := r.Create(ctx, mark(1, "A", 0, 1, 1))
	require.NoError(t, err)
	_, err = r.Create(ctx, mark(1, "B", 1, 2, 2))
	require.NoError(t, err)
	_, err = r.Create(ctx, mark(1, "C", 2, 3, 3))
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, m1.ID))
	assert.ErrorIs(t, r.Delete(ctx, m1.ID), common.ErrNotFound)

	n, err := r.DeleteByVoice(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = r.DeleteByVoice(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, n)
}
