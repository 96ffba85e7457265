package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/speaker/internal/common"
	"github.com/dmitrijs2005/speaker/internal/cryptox"
	"github.com/dmitrijs2005/speaker/internal/dbx"
	"github.com/dmitrijs2005/speaker/internal/logging"
	"github.com/dmitrijs2005/speaker/internal/models"
	"github.com/dmitrijs2005/speaker/internal/repositories/repomanager"
	"github.com/dmitrijs2005/speaker/internal/store/catalog"
	"github.com/dmitrijs2005/speaker/internal/store/txn"
)

// ProfileUpdate changes the named fields; nil fields are kept.
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Password *string
}

// AccountService registers and authenticates accounts.
type AccountService struct {
	coord       *txn.Coordinator
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	params      cryptox.Params

	dummyOnce sync.Once
	dummyHash string
}

// AccountOption customizes an AccountService.
type AccountOption func(*AccountService)

// WithHashParams sets the argon2id cost for new password hashes.
func WithHashParams(p cryptox.Params) AccountOption {
	return func(s *AccountService) { s.params = p }
}

// NewAccountService returns an AccountService hashing with
// cryptox.DefaultParams unless WithHashParams says otherwise.
func NewAccountService(coord *txn.Coordinator, m repomanager.RepositoryManager, log logging.Logger, opts ...AccountOption) *AccountService {
	s := &AccountService{
		coord:       coord,
		repomanager: m,
		log:         log.With("service", "accounts"),
		params:      cryptox.DefaultParams,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register creates an account and returns its id. A taken email fails with
// common.ErrConflict.
func (s *AccountService) Register(ctx context.Context, email, name, password string) (int64, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return 0, err
	}
	name, err = requireText("name", name)
	if err != nil {
		return 0, err
	}
	if password == "" {
		return 0, common.Invalid("password is empty")
	}

	hash, err := cryptox.HashPassword(password, s.params)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	id, err := txn.Run(ctx, s.coord, txn.Write(catalog.Accounts), func(ctx context.Context, tx dbx.DBTX) (int64, error) {
		a, err := s.repomanager.Accounts(tx).Create(ctx, &models.Account{
			Email:        email,
			PasswordHash: hash,
			Name:         name,
			CreatedAt:    time.Now().UTC(),
		})
		if err != nil {
			return 0, err
		}
		return a.ID, nil
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateKey) {
			return 0, fmt.Errorf("email %s is taken: %w", email, err)
		}
		return 0, fmt.Errorf("register account: %w", err)
	}

	s.log.Info(ctx, "account registered", "account_id", id)
	return id, nil
}

// Authenticate returns the account for email if password matches. Unknown
// emails and wrong passwords both fail with common.ErrUnauthorized and take
// about the same time.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, fmt.Errorf("bad credentials: %w", common.ErrUnauthorized)
	}

	a, err := txn.Run(ctx, s.coord, txn.Read(catalog.Accounts), func(ctx context.Context, tx dbx.DBTX) (*models.Account, error) {
		return s.repomanager.Accounts(tx).GetByEmail(ctx, email)
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_, _ = cryptox.VerifyPassword(password, s.dummy())
			return nil, fmt.Errorf("bad credentials: %w", common.ErrUnauthorized)
		}
		return nil, err
	}

	ok, err := cryptox.VerifyPassword(password, a.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("bad credentials: %w", common.ErrUnauthorized)
	}
	return a, nil
}

// dummy is a hash to verify against when the account does not exist.
func (s *AccountService) dummy() string {
	s.dummyOnce.Do(func() {
		pw, err := common.MakeRandHexString(16)
		if err != nil {
			pw = "unused"
		}
		s.dummyHash, _ = cryptox.HashPassword(pw, s.params)
	})
	return s.dummyHash
}

// UpdateProfile changes name, email and/or password of account id.
func (s *AccountService) UpdateProfile(ctx context.Context, id int64, u ProfileUpdate) (*models.Account, error) {
	var (
		email, name, hash string
		err               error
	)
	if u.Email != nil {
		if email, err = normalizeEmail(*u.Email); err != nil {
			return nil, err
		}
	}
	if u.Name != nil {
		if name, err = requireText("name", *u.Name); err != nil {
			return nil, err
		}
	}
	if u.Password != nil {
		if *u.Password == "" {
			return nil, common.Invalid("password is empty")
		}
		if hash, err = cryptox.HashPassword(*u.Password, s.params); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	a, err := txn.Run(ctx, s.coord, txn.Write(catalog.Accounts), func(ctx context.Context, tx dbx.DBTX) (*models.Account, error) {
		repo := s.repomanager.Accounts(tx)
		a, err := repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if u.Email != nil {
			a.Email = email
		}
		if u.Name != nil {
			a.Name = name
		}
		if u.Password != nil {
			a.PasswordHash = hash
		}
		now := time.Now().UTC()
		a.UpdatedAt = &now
		if err := repo.Update(ctx, a); err != nil {
			return nil, err
		}
		return a, nil
	})
	if err != nil {
		return nil, fmt.Errorf("update account %d: %w", id, err)
	}

	s.log.Info(ctx, "account updated", "account_id", id)
	return a, nil
}

// Get returns account id.
func (s *AccountService) Get(ctx context.Context, id int64) (*models.Account, error) {
	return txn.Run(ctx, s.coord, txn.Read(catalog.Accounts), func(ctx context.Context, tx dbx.DBTX) (*models.Account, error) {
		return s.repomanager.Accounts(tx).GetByID(ctx, id)
	})
}

// Delete is not offered: removing an account would need a policy for its
// voices and marketplace listings.
func (s *AccountService) Delete(ctx context.Context, id int64) error {
	return fmt.Errorf("delete account %d: %w", id, common.ErrUnsupported)
}
