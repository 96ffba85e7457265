// Package repomanager provides a concrete RepositoryManager for the embedded
// SQLite store. Schema migrations live with the store itself.
package repomanager

import (
	"github.com/dmitrijs2005/speaker/internal/dbx"
	"github.com/dmitrijs2005/speaker/internal/repositories/accounts"
	"github.com/dmitrijs2005/speaker/internal/repositories/emotions"
	"github.com/dmitrijs2005/speaker/internal/repositories/listings"
	"github.com/dmitrijs2005/speaker/internal/repositories/preferences"
	"github.com/dmitrijs2005/speaker/internal/repositories/voices"
)

// SQLiteRepositoryManager vends SQLite-backed repository implementations.
type SQLiteRepositoryManager struct{}

// Accounts returns an accounts.Repository bound to the provided DBTX.
func (m *SQLiteRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewSQLiteRepository(db)
}

// Voices returns a voices.Repository bound to the provided DBTX.
func (m *SQLiteRepositoryManager) Voices(db dbx.DBTX) voices.Repository {
	return voices.NewSQLiteRepository(db)
}

// Emotions returns an emotions.Repository bound to the provided DBTX.
func (m *SQLiteRepositoryManager) Emotions(db dbx.DBTX) emotions.Repository {
	return emotions.NewSQLiteRepository(db)
}

// Preferences returns a preferences.Repository bound to the provided DBTX.
func (m *SQLiteRepositoryManager) Preferences(db dbx.DBTX) preferences.Repository {
	return preferences.NewSQLiteRepository(db)
}

// Listings returns a listings.Repository bound to the provided DBTX.
func (m *SQLiteRepositoryManager) Listings(db dbx.DBTX) listings.Repository {
	return listings.NewSQLiteRepository(db)
}

// NewSQLiteRepositoryManager constructs a SQLite-backed RepositoryManager.
func NewSQLiteRepositoryManager() RepositoryManager {
	return &SQLiteRepositoryManager{}
}
