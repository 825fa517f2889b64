package addresses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	pkgcheckout "github.com/angelmondragon/marketflow-backend/pkg/checkout"
	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/marketflow-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Input is the writable part of an address book entry.
type Input struct {
	pkgcheckout.AddressInput
	IsDefault bool `json:"isDefault"`
}

// Service manages a session's saved addresses. At most one entry per session
// is the default.
type Service interface {
	List(ctx context.Context, sessionID string) ([]models.Address, error)
	Get(ctx context.Context, sessionID string, id int64) (*models.Address, error)
	Create(ctx context.Context, sessionID string, input Input) (*models.Address, error)
	Update(ctx context.Context, sessionID string, id int64, input Input) (*models.Address, error)
	Delete(ctx context.Context, sessionID string, id int64) error
	Default(ctx context.Context, sessionID string) (*models.Address, error)
	SetDefault(ctx context.Context, sessionID string, id int64) (*models.Address, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the address book service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, sessionID string) ([]models.Address, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	if rows == nil {
		rows = []models.Address{}
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, sessionID string, id int64) (*models.Address, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	row, err := s.repo.Get(ctx, sessionID, id)
	if err != nil {
		return nil, notFoundOr(err, "load address")
	}
	return row, nil
}

// Create stores a new entry. A default entry replaces the previous default.
func (s *service) Create(ctx context.Context, sessionID string, input Input) (*models.Address, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	if err := validate(input); err != nil {
		return nil, err
	}
	row := &models.Address{
		SessionID: sessionID,
		Address:   input.Address(),
		IsDefault: input.IsDefault,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if row.IsDefault {
			if err := repo.ClearDefault(ctx, sessionID); err != nil {
				return err
			}
		}
		return repo.Insert(ctx, row)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
	}
	return row, nil
}

// Update replaces an entry's fields. Marking it default clears the others.
func (s *service) Update(ctx context.Context, sessionID string, id int64, input Input) (*models.Address, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	if err := validate(input); err != nil {
		return nil, err
	}
	var row *models.Address
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.Get(ctx, sessionID, id)
		if err != nil {
			return err
		}
		if input.IsDefault {
			if err := repo.ClearDefault(ctx, sessionID); err != nil {
				return err
			}
		}
		existing.Address = input.Address()
		existing.IsDefault = input.IsDefault
		if err := repo.Update(ctx, existing); err != nil {
			return err
		}
		row = existing
		return nil
	})
	if err != nil {
		return nil, notFoundOr(err, "update address")
	}
	return row, nil
}

// Delete removes an entry. When it was the default the oldest remaining entry
// becomes the default.
func (s *service) Delete(ctx context.Context, sessionID string, id int64) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.Get(ctx, sessionID, id)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, sessionID, id); err != nil {
			return err
		}
		if !existing.IsDefault {
			return nil
		}
		remaining, err := repo.List(ctx, sessionID)
		if err != nil || len(remaining) == 0 {
			return err
		}
		return repo.MarkDefault(ctx, sessionID, remaining[0].ID)
	})
	if err != nil {
		return notFoundOr(err, "delete address")
	}
	return nil
}

// Default returns the default entry, or nil when the session has none.
func (s *service) Default(ctx context.Context, sessionID string) (*models.Address, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	row, err := s.repo.FindDefault(ctx, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load default address")
	}
	return row, nil
}

func (s *service) SetDefault(ctx context.Context, sessionID string, id int64) (*models.Address, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	var row *models.Address
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.Get(ctx, sessionID, id)
		if err != nil {
			return err
		}
		if err := repo.ClearDefault(ctx, sessionID); err != nil {
			return err
		}
		if err := repo.MarkDefault(ctx, sessionID, id); err != nil {
			return err
		}
		existing.IsDefault = true
		row = existing
		return nil
	})
	if err != nil {
		return nil, notFoundOr(err, "set default address")
	}
	return row, nil
}

func validate(input Input) error {
	return pkgcheckout.AsValidationError(pkgcheckout.ValidateAddress("address", input.AddressInput))
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session required")
	}
	return nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
