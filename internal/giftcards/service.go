package giftcards

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketflow-backend/internal/pricing"
	pkgdb "github.com/angelmondragon/marketflow-backend/pkg/db"
	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	"github.com/angelmondragon/marketflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketflow-backend/pkg/errors"
	pkgredis "github.com/angelmondragon/marketflow-backend/pkg/redis"
)

const (
	codeLength        = 12
	codeAttempts      = 3
	redeemLimit       = 10
	redeemLimitWindow = time.Minute
)

var errInvalidCard = pkgerrors.New(pkgerrors.CodeValidation, "invalid or expired gift card")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateInput describes a gift card purchase.
type CreateInput struct {
	Amount         decimal.Decimal `json:"amount"`
	RecipientName  string          `json:"recipientName" validate:"max=120"`
	RecipientEmail string          `json:"recipientEmail" validate:"omitempty,email"`
	Message        string          `json:"message" validate:"max=500"`
	Design         string          `json:"design" validate:"max=64"`
}

// UpdateInput changes a card's presentation. Nil fields are left alone;
// amount, balance and status are never editable.
type UpdateInput struct {
	RecipientName  *string `json:"recipientName" validate:"omitempty,max=120"`
	RecipientEmail *string `json:"recipientEmail" validate:"omitempty,email"`
	Message        *string `json:"message" validate:"omitempty,max=500"`
	Design         *string `json:"design" validate:"omitempty,max=64"`
}

// Redemption is the value released by a redeemed card.
type Redemption struct {
	Amount decimal.Decimal `json:"amount"`
}

// Service manages purchased gift cards.
type Service interface {
	List(ctx context.Context, sessionID string) ([]models.GiftCard, error)
	Get(ctx context.Context, sessionID string, id int64) (*models.GiftCard, error)
	Create(ctx context.Context, sessionID string, input CreateInput) (*models.GiftCard, error)
	Update(ctx context.Context, sessionID string, id int64, input UpdateInput) (*models.GiftCard, error)
	Delete(ctx context.Context, sessionID string, id int64) error
	Redeem(ctx context.Context, sessionID, code string) (*Redemption, error)
}

// ServiceParams groups gift card dependencies. Limiter is optional and
// throttles redemption attempts per session.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Limiter pkgredis.RateLimiter
}

type service struct {
	repo     Repository
	tx       txRunner
	limiter  pkgredis.RateLimiter
	validate *validator.Validate
	now      func() time.Time
	newCode  func() string
}

// NewService builds the gift card service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("gift card repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		limiter:  params.Limiter,
		validate: validator.New(),
		now:      time.Now,
		newCode:  generateCode,
	}, nil
}

func (s *service) List(ctx context.Context, sessionID string) ([]models.GiftCard, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	cards, err := s.repo.List(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list gift cards")
	}
	if cards == nil {
		cards = []models.GiftCard{}
	}
	return cards, nil
}

func (s *service) Get(ctx context.Context, sessionID string, id int64) (*models.GiftCard, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	card, err := s.repo.Get(ctx, sessionID, id)
	if err != nil {
		return nil, notFoundOr(err, "load gift card")
	}
	return card, nil
}

// Create issues an active card whose balance equals the purchase amount.
func (s *service) Create(ctx context.Context, sessionID string, input CreateInput) (*models.GiftCard, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid gift card")
	}

	amount := pricing.Round(input.Amount)
	for attempt := 0; attempt < codeAttempts; attempt++ {
		card := &models.GiftCard{
			SessionID:      sessionID,
			Code:           s.newCode(),
			Amount:         amount,
			Balance:        amount,
			RecipientName:  strings.TrimSpace(input.RecipientName),
			RecipientEmail: strings.TrimSpace(input.RecipientEmail),
			Message:        input.Message,
			Design:         strings.TrimSpace(input.Design),
			Status:         enums.GiftCardStatusActive,
			PurchaseDate:   today(s.now()),
		}
		err := s.repo.Insert(ctx, card)
		if err == nil {
			return card, nil
		}
		if !pkgdb.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gift card")
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not allocate gift card code")
}

func (s *service) Update(ctx context.Context, sessionID string, id int64, input UpdateInput) (*models.GiftCard, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid gift card")
	}
	fields := map[string]any{}
	if input.RecipientName != nil {
		fields["recipient_name"] = strings.TrimSpace(*input.RecipientName)
	}
	if input.RecipientEmail != nil {
		fields["recipient_email"] = strings.TrimSpace(*input.RecipientEmail)
	}
	if input.Message != nil {
		fields["message"] = *input.Message
	}
	if input.Design != nil {
		fields["design"] = strings.TrimSpace(*input.Design)
	}

	var card *models.GiftCard
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if len(fields) > 0 {
			if err := repo.UpdateDetails(ctx, sessionID, id, fields); err != nil {
				return err
			}
		}
		var err error
		card, err = repo.Get(ctx, sessionID, id)
		return err
	})
	if err != nil {
		return nil, notFoundOr(err, "update gift card")
	}
	return card, nil
}

func (s *service) Delete(ctx context.Context, sessionID string, id int64) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, sessionID, id); err != nil {
		return notFoundOr(err, "delete gift card")
	}
	return nil
}

// Redeem releases the full balance of an active card. Any session holding
// the code may redeem it, exactly once.
func (s *service) Redeem(ctx context.Context, sessionID, code string) (*Redemption, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if s.limiter != nil {
		allowed, _, err := s.limiter.FixedWindowAllow(ctx, "gift_card_redeem:"+sessionID, redeemLimit, redeemLimitWindow)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting")
		}
		if !allowed {
			return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "too many redemption attempts")
		}
	}

	var redemption *Redemption
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		card, err := repo.FindRedeemable(ctx, code)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errInvalidCard
		}
		if err != nil {
			return err
		}
		ok, err := repo.MarkRedeemed(ctx, card.ID, today(s.now()))
		if err != nil {
			return err
		}
		if !ok {
			return errInvalidCard
		}
		redemption = &Redemption{Amount: card.Balance}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redeem gift card")
	}
	return redemption, nil
}

func generateCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:codeLength])
}

func today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session required")
	}
	return nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "gift card not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
