package repomanager

import (
	"github.com/dmitrijs2005/speaker/internal/dbx"
	"github.com/dmitrijs2005/speaker/internal/repositories/accounts"
	"github.com/dmitrijs2005/speaker/internal/repositories/emotions"
	"github.com/dmitrijs2005/speaker/internal/repositories/listings"
	"github.com/dmitrijs2005/speaker/internal/repositories/preferences"
	"github.com/dmitrijs2005/speaker/internal/repositories/voices"
)

// RepositoryManager hands out repositories bound to a DBTX, usually the
// transaction a coordinator passes to its body.
type RepositoryManager interface {
	Accounts(db dbx.DBTX) accounts.Repository
	Voices(db dbx.DBTX) voices.Repository
	Emotions(db dbx.DBTX) emotions.Repository
	Preferences(db dbx.DBTX) preferences.Repository
	Listings(db dbx.DBTX) listings.Repository
}
