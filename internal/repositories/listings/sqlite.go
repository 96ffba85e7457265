package listings

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/speaker/internal/dbx"
	"github.com/dmitrijs2005/speaker/internal/models"
	"github.com/dmitrijs2005/speaker/internal/store"
	"github.com/dmitrijs2005/speaker/internal/store/catalog"
	"github.com/dmitrijs2005/speaker/internal/store/query"
)

var collection = catalog.MustGet(catalog.Listings)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func scan(s query.Scanner) (*models.MarketplaceListing, error) {
	l := &models.MarketplaceListing{}
	if err := s.Scan(&l.ID, &l.VoiceID, &l.SellerID, &l.Price, &l.Description, &l.CreatedAt); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, l *models.MarketplaceListing) (*models.MarketplaceListing, error) {
	id, err := query.Insert(ctx, r.db, collection, l.ID,
		l.VoiceID, l.SellerID, l.Price, l.Description, l.CreatedAt)
	if err != nil {
		return nil, err
	}
	l.ID = id
	return l, nil
}

func (r *SQLiteRepository) GetByVoice(ctx context.Context, voiceID int64) (*models.MarketplaceListing, error) {
	return query.OneByIndex(ctx, r.db, collection, catalog.IndexByVoice, voiceID, scan)
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]*models.MarketplaceListing, error) {
	return query.All(ctx, r.db, collection, scan)
}

func (r *SQLiteRepository) ListWithVoices(ctx context.Context) ([]*models.ListingWithVoice, error) {
	q := `SELECT l.id, l.voice_id, l.seller_id, l.price, l.description, l.created_at,
			v.id, v.owner_id, v.name, v.kind, v.asset_handle, v.created_at, v.published
		FROM marketplace_listings l
		LEFT JOIN voices v ON v.id = l.voice_id
		ORDER BY l.id`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", store.Translate(err))
	}
	defer rows.Close()

	out := make([]*models.ListingWithVoice, 0)
	for rows.Next() {
		var (
			l            models.MarketplaceListing
			vID, vOwner  sql.NullInt64
			vName, vKind sql.NullString
			vHandle      sql.NullString
			vCreated     sql.NullTime
			vPublished   sql.NullBool
		)
		if err := rows.Scan(&l.ID, &l.VoiceID, &l.SellerID, &l.Price, &l.Description, &l.CreatedAt,
			&vID, &vOwner, &vName, &vKind, &vHandle, &vCreated, &vPublished); err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}

		item := &models.ListingWithVoice{Listing: l}
		if vID.Valid {
			item.Voice = &models.VoiceAsset{
				ID:          vID.Int64,
				OwnerID:     vOwner.Int64,
				Name:        vName.String,
				Kind:        models.VoiceKind(vKind.String),
				AssetHandle: vHandle.String,
				CreatedAt:   vCreated.Time,
				Published:   vPublished.Bool,
			}
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate listings: %w", store.Translate(err))
	}
	return out, nil
}
