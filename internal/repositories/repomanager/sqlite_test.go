package repomanager

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/speaker/internal/repositories/accounts"
	"github.com/dmitrijs2005/speaker/internal/repositories/emotions"
	"github.com/dmitrijs2005/speaker/internal/repositories/listings"
	"github.com/dmitrijs2005/speaker/internal/repositories/preferences"
	"github.com/dmitrijs2005/speaker/internal/repositories/voices"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db := newDB(t)
	m := NewSQLiteRepositoryManager()

	if _, ok := m.Accounts(db).(*accounts.SQLiteRepository); !ok {
		t.Fatal("Accounts() is not a SQLite repository")
	}
	if _, ok := m.Voices(db).(*voices.SQLiteRepository); !ok {
		t.Fatal("Voices() is not a SQLite repository")
	}
	if _, ok := m.Emotions(db).(*emotions.SQLiteRepository); !ok {
		t.Fatal("Emotions() is not a SQLite repository")
	}
	if _, ok := m.Preferences(db).(*preferences.SQLiteRepository); !ok {
		t.Fatal("Preferences() is not a SQLite repository")
	}
	if _, ok := m.Listings(db).(*listings.SQLiteRepository); !ok {
		t.Fatal("Listings() is not a SQLite repository")
	}
}
