package accounts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/speaker/internal/common"
	"github.com/dmitrijs2005/speaker/internal/dbx"
	"github.com/dmitrijs2005/speaker/internal/models"
	"github.com/dmitrijs2005/speaker/internal/store"
	"github.com/dmitrijs2005/speaker/internal/store/catalog"
	"github.com/dmitrijs2005/speaker/internal/store/query"
)

var collection = catalog.MustGet(catalog.Accounts)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func scan(s query.Scanner) (*models.Account, error) {
	a := &models.Account{}
	var updated sql.NullTime
	if err := s.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Name, &a.CreatedAt, &updated); err != nil {
		return nil, err
	}
	if updated.Valid {
		t := updated.Time
		a.UpdatedAt = &t
	}
	return a, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	id, err := query.Insert(ctx, r.db, collection, a.ID, a.Email, a.PasswordHash, a.Name, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.ID = id
	return a, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return query.Get(ctx, r.db, collection, id, scan)
}

func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return query.OneByIndex(ctx, r.db, collection, catalog.IndexByEmail, email, scan)
}

func (r *SQLiteRepository) Update(ctx context.Context, a *models.Account) error {
	q := `UPDATE accounts SET email = ?, name = ?, password_hash = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, a.Email, a.Name, a.PasswordHash, a.UpdatedAt, a.ID)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", store.Translate(err))
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected != 1 {
		return fmt.Errorf("account %d: %w", a.ID, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return query.Exists(ctx, r.db, collection, id)
}
