package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/speaker/internal/common"
	"github.com/dmitrijs2005/speaker/internal/dbx"
	"github.com/dmitrijs2005/speaker/internal/logging"
	"github.com/dmitrijs2005/speaker/internal/models"
	"github.com/dmitrijs2005/speaker/internal/repositories/repomanager"
	"github.com/dmitrijs2005/speaker/internal/store/catalog"
	"github.com/dmitrijs2005/speaker/internal/store/txn"
)

// PreferenceService reads and merges per-account preferences.
type PreferenceService struct {
	coord       *txn.Coordinator
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

// NewPreferenceService returns a PreferenceService running on coord.
func NewPreferenceService(coord *txn.Coordinator, m repomanager.RepositoryManager, log logging.Logger) *PreferenceService {
	return &PreferenceService{coord: coord, repomanager: m, log: log.With("service", "preferences")}
}

// Get returns the account's preferences with defaults for unset fields.
// Unknown accounts fail with common.ErrNotFound.
func (s *PreferenceService) Get(ctx context.Context, accountID int64) (models.Preferences, error) {
	set, err := txn.Run(ctx, s.coord, txn.Read(catalog.Accounts, catalog.Preferences), func(ctx context.Context, tx dbx.DBTX) (models.PreferenceSet, error) {
		return s.stored(ctx, tx, accountID)
	})
	if err != nil {
		return models.Preferences{}, err
	}
	return set.Resolve(), nil
}

func (s *PreferenceService) stored(ctx context.Context, tx dbx.DBTX, accountID int64) (models.PreferenceSet, error) {
	p, err := s.repomanager.Preferences(tx).Get(ctx, accountID)
	if err == nil {
		return *p, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return models.PreferenceSet{}, err
	}
	ok, err := s.repomanager.Accounts(tx).Exists(ctx, accountID)
	if err != nil {
		return models.PreferenceSet{}, err
	}
	if !ok {
		return models.PreferenceSet{}, fmt.Errorf("account %d: %w", accountID, common.ErrNotFound)
	}
	return models.PreferenceSet{AccountID: accountID}, nil
}

// Upsert merges patch into the stored preferences: fields present in patch
// overwrite, absent fields keep their stored value.
func (s *PreferenceService) Upsert(ctx context.Context, accountID int64, patch models.PreferencePatch) (models.Preferences, error) {
	if err := validatePatch(patch); err != nil {
		return models.Preferences{}, err
	}

	set, err := txn.Run(ctx, s.coord, txn.Write(catalog.Accounts, catalog.Preferences), func(ctx context.Context, tx dbx.DBTX) (models.PreferenceSet, error) {
		current, err := s.stored(ctx, tx, accountID)
		if err != nil {
			return models.PreferenceSet{}, err
		}
		next := current.Merge(patch)
		next.AccountID = accountID
		next.UpdatedAt = time.Now().UTC()
		if err := s.repomanager.Preferences(tx).Put(ctx, &next); err != nil {
			return models.PreferenceSet{}, err
		}
		return next, nil
	})
	if err != nil {
		return models.Preferences{}, fmt.Errorf("update preferences of account %d: %w", accountID, err)
	}

	s.log.Info(ctx, "preferences updated", "account_id", accountID)
	return set.Resolve(), nil
}

func validatePatch(p models.PreferencePatch) error {
	if p.Theme != nil && !p.Theme.Valid() {
		return common.Invalid("unknown theme %q", *p.Theme)
	}
	if p.ExportQuality != nil && !p.ExportQuality.Valid() {
		return common.Invalid("unknown export quality %q", *p.ExportQuality)
	}
	return nil
}

// DecodePatch reads a JSON preference patch. Unknown fields and values
// outside the known domains are rejected with common.ErrInvalidArgument.
func DecodePatch(r io.Reader) (models.PreferencePatch, error) {
	var p models.PreferencePatch
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return models.PreferencePatch{}, common.Invalid("decode preferences: %v", err)
	}
	if dec.More() {
		return models.PreferencePatch{}, common.Invalid("decode preferences: trailing data")
	}
	if err := validatePatch(p); err != nil {
		return models.PreferencePatch{}, err
	}
	return p, nil
}
