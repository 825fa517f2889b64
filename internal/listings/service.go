package listings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketflow-backend/internal/pricing"
	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	"github.com/angelmondragon/marketflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketflow-backend/pkg/errors"
)

// PlaceholderImage stands in for listings created without photos.
const PlaceholderImage = "/api/placeholder/300/200"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateInput lists an item for sale. Category defaults to electronics and
// condition to new.
type CreateInput struct {
	Title       string                 `json:"title" validate:"required,max=200"`
	Description string                 `json:"description" validate:"max=2000"`
	Price       decimal.Decimal        `json:"price"`
	Category    enums.ListingCategory  `json:"category"`
	Condition   enums.ListingCondition `json:"condition"`
	Images      []string               `json:"images" validate:"max=10,dive,required,max=2048"`
}

// UpdateInput edits a listing. Nil fields are left alone; views are never
// editable.
type UpdateInput struct {
	Title       *string                 `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string                 `json:"description" validate:"omitempty,max=2000"`
	Price       *decimal.Decimal        `json:"price"`
	Category    *enums.ListingCategory  `json:"category"`
	Condition   *enums.ListingCondition `json:"condition"`
	Status      *enums.ListingStatus    `json:"status"`
	Images      *[]string               `json:"images" validate:"omitempty,max=10,dive,required,max=2048"`
}

// Service manages the items a session offers for sale.
type Service interface {
	List(ctx context.Context, sessionID string) ([]models.Listing, error)
	Get(ctx context.Context, sessionID string, id int64) (*models.Listing, error)
	Create(ctx context.Context, sessionID string, input CreateInput) (*models.Listing, error)
	Update(ctx context.Context, sessionID string, id int64, input UpdateInput) (*models.Listing, error)
	Delete(ctx context.Context, sessionID string, id int64) error
}

type service struct {
	repo     Repository
	tx       txRunner
	validate *validator.Validate
}

func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("listing repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, validate: validator.New()}, nil
}

func (s *service) List(ctx context.Context, sessionID string) ([]models.Listing, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	listings, err := s.repo.List(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list listings")
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	return listings, nil
}

func (s *service) Get(ctx context.Context, sessionID string, id int64) (*models.Listing, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	listing, err := s.repo.Get(ctx, sessionID, id)
	if err != nil {
		return nil, notFoundOr(err, "load listing")
	}
	return listing, nil
}

// Create publishes an active listing with no views.
func (s *service) Create(ctx context.Context, sessionID string, input CreateInput) (*models.Listing, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid listing")
	}
	if !input.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
	}
	category := input.Category
	if category == "" {
		category = enums.ListingCategoryElectronics
	}
	if !category.IsValid() {
		return nil, invalidField("category", string(category))
	}
	condition := input.Condition
	if condition == "" {
		condition = enums.ListingConditionNew
	}
	if !condition.IsValid() {
		return nil, invalidField("condition", string(condition))
	}
	images := input.Images
	if len(images) == 0 {
		images = []string{PlaceholderImage}
	}

	listing := &models.Listing{
		SessionID:   sessionID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Price:       pricing.Round(input.Price),
		Category:    category,
		Condition:   condition,
		Status:      enums.ListingStatusActive,
		Images:      images,
	}
	if err := s.repo.Insert(ctx, listing); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create listing")
	}
	return listing, nil
}

func (s *service) Update(ctx context.Context, sessionID string, id int64, input UpdateInput) (*models.Listing, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid listing")
	}
	fields, err := updateFields(input)
	if err != nil {
		return nil, err
	}

	var listing *models.Listing
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if len(fields) > 0 {
			if err := repo.UpdateFields(ctx, sessionID, id, fields); err != nil {
				return err
			}
		}
		var err error
		listing, err = repo.Get(ctx, sessionID, id)
		return err
	})
	if err != nil {
		return nil, notFoundOr(err, "update listing")
	}
	return listing, nil
}

func (s *service) Delete(ctx context.Context, sessionID string, id int64) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, sessionID, id); err != nil {
		return notFoundOr(err, "delete listing")
	}
	return nil
}

func updateFields(input UpdateInput) (map[string]any, error) {
	fields := map[string]any{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
		}
		fields["title"] = title
	}
	if input.Description != nil {
		fields["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		if !input.Price.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
		}
		fields["price"] = pricing.Round(*input.Price)
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, invalidField("category", string(*input.Category))
		}
		fields["category"] = *input.Category
	}
	if input.Condition != nil {
		if !input.Condition.IsValid() {
			return nil, invalidField("condition", string(*input.Condition))
		}
		fields["condition"] = *input.Condition
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, invalidField("status", string(*input.Status))
		}
		fields["status"] = *input.Status
	}
	if input.Images != nil {
		images := *input.Images
		if len(images) == 0 {
			images = []string{PlaceholderImage}
		}
		encoded, err := json.Marshal(images)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode listing images")
		}
		fields["images"] = string(encoded)
	}
	return fields, nil
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
		return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
