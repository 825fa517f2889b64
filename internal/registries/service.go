package registries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	"github.com/angelmondragon/marketflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketflow-backend/pkg/errors"
)

const eventDateLayout = "2006-01-02"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateInput opens a registry. Type defaults to wedding.
type CreateInput struct {
	Name        string             `json:"name" validate:"required,max=120"`
	Type        enums.RegistryType `json:"type"`
	EventDate   string             `json:"eventDate" validate:"required"`
	Description string             `json:"description" validate:"max=1000"`
}

// UpdateInput changes a registry. Nil fields are left alone.
type UpdateInput struct {
	Name        *string               `json:"name" validate:"omitempty,min=1,max=120"`
	Type        *enums.RegistryType   `json:"type"`
	EventDate   *string               `json:"eventDate"`
	Description *string               `json:"description" validate:"omitempty,max=1000"`
	Status      *enums.RegistryStatus `json:"status"`
}

// Service manages a session's gift registries.
type Service interface {
	List(ctx context.Context, sessionID string) ([]models.Registry, error)
	Get(ctx context.Context, sessionID string, id int64) (*models.Registry, error)
	Create(ctx context.Context, sessionID string, input CreateInput) (*models.Registry, error)
	Update(ctx context.Context, sessionID string, id int64, input UpdateInput) (*models.Registry, error)
	Delete(ctx context.Context, sessionID string, id int64) error
}

type service struct {
	repo     Repository
	tx       txRunner
	validate *validator.Validate
}

func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("registry repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, validate: validator.New()}, nil
}

func (s *service) List(ctx context.Context, sessionID string) ([]models.Registry, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	registries, err := s.repo.List(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list registries")
	}
	if registries == nil {
		registries = []models.Registry{}
	}
	return registries, nil
}

func (s *service) Get(ctx context.Context, sessionID string, id int64) (*models.Registry, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	registry, err := s.repo.Get(ctx, sessionID, id)
	if err != nil {
		return nil, notFoundOr(err, "load registry")
	}
	return registry, nil
}

// Create opens an active registry with no items.
func (s *service) Create(ctx context.Context, sessionID string, input CreateInput) (*models.Registry, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid registry")
	}
	kind := input.Type
	if kind == "" {
		kind = enums.RegistryTypeWedding
	}
	if !kind.IsValid() {
		return nil, invalidField("type", string(kind))
	}
	eventDate, err := parseEventDate(input.EventDate)
	if err != nil {
		return nil, err
	}

	registry := &models.Registry{
		SessionID:   sessionID,
		Name:        strings.TrimSpace(input.Name),
		Type:        kind,
		EventDate:   eventDate,
		Description: strings.TrimSpace(input.Description),
		Status:      enums.RegistryStatusActive,
	}
	if err := s.repo.Insert(ctx, registry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create registry")
	}
	return registry, nil
}

func (s *service) Update(ctx context.Context, sessionID string, id int64, input UpdateInput) (*models.Registry, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid registry")
	}
	fields := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		fields["name"] = name
	}
	if input.Type != nil {
		if !input.Type.IsValid() {
			return nil, invalidField("type", string(*input.Type))
		}
		fields["type"] = *input.Type
	}
	if input.EventDate != nil {
		eventDate, err := parseEventDate(*input.EventDate)
		if err != nil {
			return nil, err
		}
		fields["event_date"] = eventDate
	}
	if input.Description != nil {
		fields["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, invalidField("status", string(*input.Status))
		}
		fields["status"] = *input.Status
	}

	var registry *models.Registry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if len(fields) > 0 {
			if err := repo.UpdateFields(ctx, sessionID, id, fields); err != nil {
				return err
			}
		}
		var err error
		registry, err = repo.Get(ctx, sessionID, id)
		return err
	})
	if err != nil {
		return nil, notFoundOr(err, "update registry")
	}
	return registry, nil
}

func (s *service) Delete(ctx context.Context, sessionID string, id int64) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, sessionID, id); err != nil {
		return notFoundOr(err, "delete registry")
	}
	return nil
}

func parseEventDate(raw string) (time.Time, error) {
	date, err := time.Parse(eventDateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "eventDate must be YYYY-MM-DD").
			WithDetails(map[string]any{"eventDate": raw})
	}
	return date, nil
}

func invalidField(field, value string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid %s", field)).
		WithDetails(map[string]any{field: value})
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session required")
	}
	return nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "registry not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
