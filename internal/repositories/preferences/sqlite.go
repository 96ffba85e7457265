package preferences

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

var collection = catalog.MustGet(catalog.Preferences)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func scan(s query.Scanner) (*models.PreferenceSet, error) {
	p := &models.PreferenceSet{}
	var theme, quality sql.NullString
	var autoSave, notify sql.NullBool
	if err := s.Scan(&p.AccountID, &theme, &quality, &autoSave, &notify, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if theme.Valid {
		t := models.Theme(theme.String)
		p.Theme = &t
	}
	if quality.Valid {
		q := models.ExportQuality(quality.String)
		p.ExportQuality = &q
	}
	if autoSave.Valid {
		p.AutoSave = &autoSave.Bool
	}
	if notify.Valid {
		p.EmailNotifications = &notify.Bool
	}
	return p, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, accountID int64) (*models.PreferenceSet, error) {
	return query.Get(ctx, r.db, collection, accountID, scan)
}

func (r *SQLiteRepository) Put(ctx context.Context, p *models.PreferenceSet) error {
	q := `INSERT INTO user_preferences (account_id, theme, export_quality, auto_save, email_notifications, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET
			theme = excluded.theme,
			export_quality = excluded.export_quality,
			auto_save = excluded.auto_save,
			email_notifications = excluded.email_notifications,
			updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, q, p.AccountID, nullString(p.Theme), nullString(p.ExportQuality),
		nullBool(p.AutoSave), nullBool(p.EmailNotifications), p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert preferences: %w", store.Translate(err))
	}
	return nil
}

func nullString[S ~string](v *S) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*v), Valid: true}
}

func nullBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}
