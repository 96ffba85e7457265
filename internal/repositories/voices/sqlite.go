package voices

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/speaker/internal/common"
	"github.com/dmitrijs2005/speaker/internal/dbx"
	"github.com/dmitrijs2005/speaker/internal/models"
	"github.com/dmitrijs2005/speaker/internal/store"
	"github.com/dmitrijs2005/speaker/internal/store/catalog"
	"github.com/dmitrijs2005/speaker/internal/store/query"
)

var collection = catalog.MustGet(catalog.Voices)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func scan(s query.Scanner) (*models.VoiceAsset, error) {
	v := &models.VoiceAsset{}
	var kind string
	if err := s.Scan(&v.ID, &v.OwnerID, &v.Name, &kind, &v.AssetHandle, &v.CreatedAt, &v.Published); err != nil {
		return nil, err
	}
	v.Kind = models.VoiceKind(kind)
	return v, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, v *models.VoiceAsset) (*models.VoiceAsset, error) {
	id, err := query.Insert(ctx, r.db, collection, v.ID,
		v.OwnerID, v.Name, string(v.Kind), v.AssetHandle, v.CreatedAt, v.Published)
	if err != nil {
		return nil, err
	}
	v.ID = id
	return v, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.VoiceAsset, error) {
	return query.Get(ctx, r.db, collection, id, scan)
}

func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.VoiceAsset, error) {
	return query.ByIndex(ctx, r.db, collection, catalog.IndexByOwner, ownerID, scan)
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]*models.VoiceAsset, error) {
	return query.All(ctx, r.db, collection, scan)
}

func (r *SQLiteRepository) MarkPublished(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE voices SET published = 1 WHERE id = ? AND published = 0`, id)
	if err != nil {
		return fmt.Errorf("failed to mark voice published: %w", store.Translate(err))
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected != 1 {
		return fmt.Errorf("voice %d not found or already published: %w", id, common.ErrConflict)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	ok, err := query.Delete(ctx, r.db, collection, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("voice %d: %w", id, common.ErrNotFound)
	}
	return nil
}
