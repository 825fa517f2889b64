package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"

	"github.com/angelmondragon/marketflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketflow-backend/pkg/errors"
	"github.com/angelmondragon/marketflow-backend/pkg/types"
)

var (
	zipPattern        = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	expiryPattern     = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
	whitespace        = regexp.MustCompile(`\s`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	mustRegister(v, "zip", zipPattern.MatchString)
	mustRegister(v, "card_number", func(s string) bool {
		return cardNumberPattern.MatchString(stripWhitespace(s))
	})
	mustRegister(v, "expiry", expiryPattern.MatchString)
	mustRegister(v, "cvv", cvvPattern.MatchString)
	return v
}

func mustRegister(v *validator.Validate, tag string, match func(string) bool) {
	if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return match(fl.Field().String())
	}); err != nil {
		panic(err)
	}
}

// AddressInput is the shipping address as submitted at checkout.
type AddressInput struct {
	Name   string `json:"name" validate:"required"`
	Street string `json:"street" validate:"required"`
	City   string `json:"city" validate:"required"`
	State  string `json:"state" validate:"required"`
	Zip    string `json:"zip" validate:"required,zip"`
}

// Address returns the trimmed address.
func (a AddressInput) Address() types.Address {
	return types.Address{
		Name:   a.Name,
		Street: a.Street,
		City:   a.City,
		State:  a.State,
		Zip:    a.Zip,
	}.Normalized()
}

// PaymentInput is the payment method as submitted at checkout. Card fields
// are only checked for card payments.
type PaymentInput struct {
	Type       string `json:"type" validate:"required,oneof=card paypal"`
	CardNumber string `json:"cardNumber,omitempty"`
	ExpiryDate string `json:"expiryDate,omitempty"`
	CVV        string `json:"cvv,omitempty"`
	CardName   string `json:"cardName,omitempty"`
}

type cardFields struct {
	CardNumber string `json:"cardNumber" validate:"required,card_number"`
	ExpiryDate string `json:"expiryDate" validate:"required,expiry"`
	CVV        string `json:"cvv" validate:"required,cvv"`
	CardName   string `json:"cardName" validate:"required"`
}

// Summary keeps only the payment type and the last four card digits.
func (p PaymentInput) Summary() types.PaymentSummary {
	summary := types.PaymentSummary{Type: enums.PaymentMethodType(strings.TrimSpace(p.Type))}
	if summary.Type == enums.PaymentMethodTypeCard {
		digits := stripWhitespace(p.CardNumber)
		if len(digits) >= 4 {
			summary.Last4 = digits[len(digits)-4:]
		}
	}
	return summary
}

// FieldError is one failed field check.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + " " + e.Message
}

// ValidateShippingAddress checks that every field is present after trimming
// and that zip is a US ZIP or ZIP+4. The result combines one FieldError per
// failed field.
func ValidateShippingAddress(in AddressInput) error {
	return ValidateAddress("shippingAddress", in)
}

// ValidateAddress applies the shipping address rules, reporting fields under
// prefix.
func ValidateAddress(prefix string, in AddressInput) error {
	addr := in.Address()
	normalized := AddressInput{
		Name:   addr.Name,
		Street: addr.Street,
		City:   addr.City,
		State:  addr.State,
		Zip:    addr.Zip,
	}
	return fieldErrors(prefix, validate.Struct(normalized))
}

// ValidatePayment checks the payment type and, for cards, number, expiry,
// cvv and cardholder name. Only the format is checked.
func ValidatePayment(in PaymentInput) error {
	in.Type = strings.TrimSpace(in.Type)
	if err := fieldErrors("paymentMethod", validate.Struct(in)); err != nil {
		return err
	}
	if enums.PaymentMethodType(in.Type) != enums.PaymentMethodTypeCard {
		return nil
	}
	card := cardFields{
		CardNumber: strings.TrimSpace(in.CardNumber),
		ExpiryDate: strings.TrimSpace(in.ExpiryDate),
		CVV:        strings.TrimSpace(in.CVV),
		CardName:   strings.TrimSpace(in.CardName),
	}
	return fieldErrors("paymentMethod", validate.Struct(card))
}

// Validate runs both checks and folds every failure into one VALIDATION_ERROR
// whose details map field paths to messages.
func Validate(addr AddressInput, payment PaymentInput) error {
	return AsValidationError(multierr.Combine(
		ValidateShippingAddress(addr),
		ValidatePayment(payment),
	))
}

// AsValidationError converts combined FieldErrors into a typed error.
func AsValidationError(err error) error {
	if err == nil {
		return nil
	}
	details := map[string]string{}
	for _, e := range multierr.Errors(err) {
		var fe FieldError
		if errors.As(e, &fe) {
			details[fe.Field] = fe.Message
			continue
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%d field(s) invalid", len(details))).WithDetails(details)
}

func fieldErrors(prefix string, err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	var combined error
	for _, fe := range verrs {
		combined = multierr.Append(combined, FieldError{
			Field:   prefix + "." + fe.Field(),
			Message: validationMessage(fe),
		})
	}
	return combined
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "zip":
		return "must be a valid ZIP code"
	case "card_number":
		return "must be 16 digits"
	case "expiry":
		return "must be in MM/YY format"
	case "cvv":
		return "must be 3 or 4 digits"
	}
	return "is invalid"
}

func stripWhitespace(s string) string {
	return whitespace.ReplaceAllString(s, "")
}
