package listings

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

type fixture struct {
	db     *sql.DB
	seller int64
	voice  int64
}

func setupDB(t *testing.T) fixture {
	t.Helper()
	s, err := store.Open(context.Background(), store.Options{Path: filepath.Join(t.TempDir(), "app.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	db := s.DB()
	now := time.Now().UTC()
	res, err := db.Exec(`INSERT INTO accounts (email, password_hash, name, created_at) VALUES ('s@x.y', 'h', 'seller', ?)`, now)
	require.NoError(t, err)
	seller, err := res.LastInsertId()
	require.NoError(t, err)

	res, err = db.Exec(`INSERT INTO voices (owner_id, name, kind, asset_handle, created_at, published) VALUES (?, 'v', 'custom', 'voices/x', ?, 0)`, seller, now)
	require.NoError(t, err)
	voice, err := res.LastInsertId()
	require.NoError(t, err)

	return fixture{db: db, seller: seller, voice: voice}
}

func listing(f fixture, voice int64, price float64) *models.MarketplaceListing {
	return &models.MarketplaceListing{VoiceID: voice, SellerID: f.seller, Price: price, Description: "warm narrator", CreatedAt: time.Now().UTC()}
}

func TestCreateAndGetByVoice(t *testing.T) {
	f := setupDB(t)
	r := NewSQLiteRepository(f.db)
	ctx := context.Background()

	created, err := r.Create(ctx, listing(f, f.voice, 9.99))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := r.GetByVoice(ctx, f.voice)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.InDelta(t, 9.99, got.Price, 1e-9)
	assert.Equal(t, "warm narrator", got.Description)

	_, err = r.GetByVoice(ctx, f.voice+100)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCreate_SecondListingForVoice(t *testing.T) {
	f := setupDB(t)
	r := NewSQLiteRepository(f.db)
	ctx := context.Background()

	_, err := r.Create(ctx, listing(f, f.voice, 1))
	require.NoError(t, err)

	_, err = r.Create(ctx, listing(f, f.voice, 2))
	assert.ErrorIs(t, err, common.ErrDuplicateKey)

	all, err := r.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreate_SchemaChecks(t *testing.T) {
	f := setupDB(t)
	r := NewSQLiteRepository(f.db)
	ctx := context.Background()

	_, err := r.Create(ctx, listing(f, f.voice, 0))
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	bad := listing(f, f.voice, 5)
	bad.SellerID = f.seller + 50
	_, err = r.Create(ctx, bad)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListWithVoices_KeepsListingOfDeletedVoice(t *testing.T) {
	f := setupDB(t)
	r := NewSQLiteRepository(f.db)
	ctx := context.Background()

	_, err := r.Create(ctx, listing(f, f.voice, 3))
	require.NoError(t, err)

	got, err := r.ListWithVoices(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Voice)
	assert.Equal(t, f.voice, got[0].Voice.ID)
	assert.Equal(t, models.VoiceCustom, got[0].Voice.Kind)

	_, err = f.db.Exec(`DELETE FROM voices WHERE id = ?`, f.voice)
	require.NoError(t, err)

	got, err = r.ListWithVoices(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Voice)
	assert.Equal(t, f.voice, got[0].Listing.VoiceID)
}
