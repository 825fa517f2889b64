package tickets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	"github.com/angelmondragon/marketflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketflow-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateInput opens a support ticket. Category defaults to general and
// priority to medium.
type CreateInput struct {
	Subject     string               `json:"subject" validate:"required,max=200"`
	Category    enums.TicketCategory `json:"category"`
	Priority    enums.TicketPriority `json:"priority"`
	Description string               `json:"description" validate:"required,max=5000"`
}

// UpdateInput edits a ticket. Nil fields are left alone.
type UpdateInput struct {
	Subject     *string               `json:"subject" validate:"omitempty,min=1,max=200"`
	Category    *enums.TicketCategory `json:"category"`
	Priority    *enums.TicketPriority `json:"priority"`
	Description *string               `json:"description" validate:"omitempty,min=1,max=5000"`
	Status      *enums.TicketStatus   `json:"status"`
}

type Service interface {
	List(ctx context.Context, sessionID string) ([]models.SupportTicket, error)
	Get(ctx context.Context, sessionID string, id int64) (*models.SupportTicket, error)
	Create(ctx context.Context, sessionID string, input CreateInput) (*models.SupportTicket, error)
	Update(ctx context.Context, sessionID string, id int64, input UpdateInput) (*models.SupportTicket, error)
	Delete(ctx context.Context, sessionID string, id int64) error
}

type service struct {
	repo     Repository
	tx       txRunner
	validate *validator.Validate
}

func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ticket repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, validate: validator.New()}, nil
}

func (s *service) List(ctx context.Context, sessionID string) ([]models.SupportTicket, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	tickets, err := s.repo.List(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tickets")
	}
	if tickets == nil {
		tickets = []models.SupportTicket{}
	}
	return tickets, nil
}

func (s *service) Get(ctx context.Context, sessionID string, id int64) (*models.SupportTicket, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	ticket, err := s.repo.Get(ctx, sessionID, id)
	if err != nil {
		return nil, notFoundOr(err, "load ticket")
	}
	return ticket, nil
}

// Create files a ticket in the open state.
func (s *service) Create(ctx context.Context, sessionID string, input CreateInput) (*models.SupportTicket, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid ticket")
	}
	subject := strings.TrimSpace(input.Subject)
	description := strings.TrimSpace(input.Description)
	if subject == "" || description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject and description are required")
	}
	category := input.Category
	if category == "" {
		category = enums.TicketCategoryGeneral
	}
	if !category.IsValid() {
		return nil, invalidField("category", string(category))
	}
	priority := input.Priority
	if priority == "" {
		priority = enums.TicketPriorityMedium
	}
	if !priority.IsValid() {
		return nil, invalidField("priority", string(priority))
	}

	ticket := &models.SupportTicket{
		SessionID:   sessionID,
		Subject:     subject,
		Category:    category,
		Priority:    priority,
		Status:      enums.TicketStatusOpen,
		Description: description,
	}
	if err := s.repo.Insert(ctx, ticket); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create ticket")
	}
	return ticket, nil
}

func (s *service) Update(ctx context.Context, sessionID string, id int64, input UpdateInput) (*models.SupportTicket, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid ticket")
	}
	fields, err := updateFields(input)
	if err != nil {
		return nil, err
	}

	var ticket *models.SupportTicket
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if len(fields) > 0 {
			if err := repo.UpdateFields(ctx, sessionID, id, fields); err != nil {
				return err
			}
		}
		var err error
		ticket, err = repo.Get(ctx, sessionID, id)
		return err
	})
	if err != nil {
		return nil, notFoundOr(err, "update ticket")
	}
	return ticket, nil
}

func (s *service) Delete(ctx context.Context, sessionID string, id int64) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, sessionID, id); err != nil {
		return notFoundOr(err, "delete ticket")
	}
	return nil
}

func updateFields(input UpdateInput) (map[string]any, error) {
	fields := map[string]any{}
	if input.Subject != nil {
		subject := strings.TrimSpace(*input.Subject)
		if subject == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject is required")
		}
		fields["subject"] = subject
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is required")
		}
		fields["description"] = description
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, invalidField("category", string(*input.Category))
		}
		fields["category"] = *input.Category
	}
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return nil, invalidField("priority", string(*input.Priority))
		}
		fields["priority"] = *input.Priority
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, invalidField("status", string(*input.Status))
		}
		fields["status"] = *input.Status
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
		return pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
