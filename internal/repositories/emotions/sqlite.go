package emotions

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/speaker/internal/common"
	"github.com/dmitrijs2005/speaker/internal/dbx"
	"github.com/dmitrijs2005/speaker/internal/models"
	"github.com/dmitrijs2005/speaker/internal/store/catalog"
	"github.com/dmitrijs2005/speaker/internal/store/query"
)

var collection = catalog.MustGet(catalog.Emotions)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func scan(s query.Scanner) (*models.EmotionMark, error) {
	m := &models.EmotionMark{}
	err := s.Scan(&m.ID, &m.VoiceID, &m.Label, &m.StartOffset, &m.EndOffset, &m.Intensity, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, m *models.EmotionMark) (*models.EmotionMark, error) {
	id, err := query.Insert(ctx, r.db, collection, m.ID,
		m.VoiceID, m.Label, m.StartOffset, m.EndOffset, m.Intensity, m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.ID = id
	return m, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.EmotionMark, error) {
	return query.Get(ctx, r.db, collection, id, scan)
}

func (r *SQLiteRepository) ListByVoice(ctx context.Context, voiceID int64) ([]*models.EmotionMark, error) {
	return query.ByIndex(ctx, r.db, collection, catalog.IndexByVoice, voiceID, scan)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	ok, err := query.Delete(ctx, r.db, collection, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("emotion mark %d: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeleteByVoice(ctx context.Context, voiceID int64) (int64, error) {
	return query.DeleteByIndex(ctx, r.db, collection, catalog.IndexByVoice, voiceID)
}
