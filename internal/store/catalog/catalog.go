package catalog

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/speaker/internal/common"
	"github.com/dmitrijs2005/speaker/internal/dbx"
)

// Version is the schema version a fully migrated store reports. It equals the
// highest embedded migration.
const Version int64 = 3

// Collection names.
const (
	Accounts     = "accounts"
	Voices       = "voices"
	Emotions     = "voice_emotions"
	Preferences  = "user_preferences"
	Listings     = "marketplace_listings"
	IndexByEmail = "by-email"
	IndexByOwner = "by-owner"
	IndexByVoice = "by-voice"
)

// Index is a secondary index over one column.
type Index struct {
	Name   string // logical name, e.g. "by-email"
	Table  string // sqlite_master name
	Column string
	Unique bool
}

// Collection declares one table: its key column, the remaining columns in
// insert order and its secondary indexes.
type Collection struct {
	Name    string
	Key     string
	AutoKey bool
	Columns []string
	Indexes []Index
}

// SelectColumns is the key followed by Columns.
func (c Collection) SelectColumns() []string {
	out := make([]string, 0, len(c.Columns)+1)
	out = append(out, c.Key)
	return append(out, c.Columns...)
}

// Index returns the named index.
func (c Collection) Index(name string) (Index, error) {
	for _, ix := range c.Indexes {
		if ix.Name == name {
			return ix, nil
		}
	}
	return Index{}, common.Invalid("collection %s has no index %q", c.Name, name)
}

// collections is ordered; lock acquisition follows this order.
var collections = []Collection{
	{
		Name:    Accounts,
		Key:     "id",
		AutoKey: true,
		Columns: []string{"email", "password_hash", "name", "created_at", "updated_at"},
		Indexes: []Index{{Name: IndexByEmail, Table: "accounts_by_email", Column: "email", Unique: true}},
	},
	{
		Name:    Voices,
		Key:     "id",
		AutoKey: true,
		Columns: []string{"owner_id", "name", "kind", "asset_handle", "created_at", "published"},
		Indexes: []Index{{Name: IndexByOwner, Table: "voices_by_owner", Column: "owner_id"}},
	},
	{
		Name:    Emotions,
		Key:     "id",
		AutoKey: true,
		Columns: []string{"voice_id", "label", "start_offset", "end_offset", "intensity", "created_at"},
		Indexes: []Index{{Name: IndexByVoice, Table: "voice_emotions_by_voice", Column: "voice_id"}},
	},
	{
		Name:    Preferences,
		Key:     "account_id",
		Columns: []string{"theme", "export_quality", "auto_save", "email_notifications", "updated_at"},
	},
	{
		Name:    Listings,
		Key:     "id",
		AutoKey: true,
		Columns: []string{"voice_id", "seller_id", "price", "description", "created_at"},
		Indexes: []Index{{Name: IndexByVoice, Table: "marketplace_listings_by_voice", Column: "voice_id", Unique: true}},
	},
}

// Collections returns every declared collection in lock order.
func Collections() []Collection {
	out := make([]Collection, len(collections))
	copy(out, collections)
	return out
}

// Get returns the named collection.
func Get(name string) (Collection, error) {
	for _, c := range collections {
		if c.Name == name {
			return c, nil
		}
	}
	return Collection{}, common.Invalid("unknown collection %q", name)
}

// MustGet is Get for names known at compile time.
func MustGet(name string) Collection {
	c, err := Get(name)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup resolves collection and index names together.
func Lookup(collection, index string) (Collection, Index, error) {
	c, err := Get(collection)
	if err != nil {
		return Collection{}, Index{}, err
	}
	ix, err := c.Index(index)
	if err != nil {
		return Collection{}, Index{}, err
	}
	return c, ix, nil
}

// Order is the position of a collection in lock order, or -1.
func Order(name string) int {
	for i, c := range collections {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Verify checks that every declared table and index exists.
func Verify(ctx context.Context, db dbx.DBTX) error {
	for _, c := range collections {
		if err := objectExists(ctx, db, "table", c.Name); err != nil {
			return err
		}
		for _, ix := range c.Indexes {
			if err := objectExists(ctx, db, "index", ix.Table); err != nil {
				return err
			}
		}
	}
	return nil
}

func objectExists(ctx context.Context, db dbx.DBTX, kind, name string) error {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = ? AND name = ?`, kind, name).Scan(&n)
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("schema is missing %s %s", kind, name)
	}
	return nil
}
