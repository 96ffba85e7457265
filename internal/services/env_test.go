package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/speaker/internal/assets"
	"github.com/dmitrijs2005/speaker/internal/blob/memory"
	"github.com/dmitrijs2005/speaker/internal/cryptox"
	"github.com/dmitrijs2005/speaker/internal/logging"
	"github.com/dmitrijs2005/speaker/internal/repositories/repomanager"
	"github.com/dmitrijs2005/speaker/internal/store"
	"github.com/dmitrijs2005/speaker/internal/store/txn"
	"github.com/stretchr/testify/require"
)

var fastHash = cryptox.Params{Time: 1, Memory: 1024, Threads: 1, SaltLen: 8, KeyLen: 16}

type env struct {
	store       *store.Store
	blobs       *memory.Store
	assets      *assets.Manager
	accounts    *AccountService
	preferences *PreferenceService
	voices      *VoiceService
	emotions    *EmotionService
	marketplace *MarketplaceService
}

func newEnv(t *testing.T, opts ...VoiceOption) *env {
	t.Helper()
	s, err := store.Open(context.Background(), store.Options{Path: filepath.Join(t.TempDir(), "speaker.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	log := logging.Nop()
	coord := txn.New(s, txn.WithLogger(log))
	rm := repomanager.NewSQLiteRepositoryManager()
	blobs := memory.New()
	am := assets.NewManager(blobs, assets.WithLogger(log))

	return &env{
		store:       s,
		blobs:       blobs,
		assets:      am,
		accounts:    NewAccountService(coord, rm, log, WithHashParams(fastHash)),
		preferences: NewPreferenceService(coord, rm, log),
		voices:      NewVoiceService(coord, rm, am, log, opts...),
		emotions:    NewEmotionService(coord, rm, log),
		marketplace: NewMarketplaceService(coord, rm, log),
	}
}

func (e *env) register(t *testing.T, email string) int64 {
	t.Helper()
	id, err := e.accounts.Register(context.Background(), email, "Tester", "pa55word")
	require.NoError(t, err)
	return id
}

func (e *env) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, e.store.DB().QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
