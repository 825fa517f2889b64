package checkout

import (
	"testing"

	"github.com/angelmondragon/marketflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketflow-backend/pkg/errors"
)

func validAddress() AddressInput {
	return AddressInput{Name: "Ada Lovelace", Street: "1 Loop Rd", City: "Austin", State: "TX", Zip: "73301"}
}

func validCard() PaymentInput {
	return PaymentInput{Type: "card", CardNumber: "4242 4242 4242 4242", ExpiryDate: "12/29", CVV: "123", CardName: "Ada Lovelace"}
}

func detailsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details type %T", typed.Details())
	}
	return details
}

func TestValidateAcceptsWellFormedInput(t *testing.T) {
	if err := Validate(validAddress(), validCard()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	zipPlus4 := validAddress()
	zipPlus4.Zip = "73301-0001"
	if err := Validate(zipPlus4, PaymentInput{Type: "paypal"}); err != nil {
		t.Fatalf("paypal with zip+4 should pass: %v", err)
	}
}

func TestValidateShippingAddress(t *testing.T) {
	cases := map[string]struct {
		mutate func(*AddressInput)
		field  string
	}{
		"blank name":   {func(a *AddressInput) { a.Name = "   " }, "shippingAddress.name"},
		"no street":    {func(a *AddressInput) { a.Street = "" }, "shippingAddress.street"},
		"short zip":    {func(a *AddressInput) { a.Zip = "7330" }, "shippingAddress.zip"},
		"letters zip":  {func(a *AddressInput) { a.Zip = "ABCDE" }, "shippingAddress.zip"},
		"bad zip+4":    {func(a *AddressInput) { a.Zip = "73301-01" }, "shippingAddress.zip"},
		"missing city": {func(a *AddressInput) { a.City = "" }, "shippingAddress.city"},
	}
	for name, tc := range cases {
		addr := validAddress()
		tc.mutate(&addr)
		details := detailsOf(t, Validate(addr, validCard()))
		if _, ok := details[tc.field]; !ok {
			t.Fatalf("%s: expected %s in details, got %v", name, tc.field, details)
		}
	}
}

func TestValidatePaymentCard(t *testing.T) {
	cases := map[string]struct {
		mutate func(*PaymentInput)
		field  string
	}{
		"15 digits":     {func(p *PaymentInput) { p.CardNumber = "424242424242424" }, "paymentMethod.cardNumber"},
		"letters":       {func(p *PaymentInput) { p.CardNumber = "4242-4242-4242-4242" }, "paymentMethod.cardNumber"},
		"expiry format": {func(p *PaymentInput) { p.ExpiryDate = "1229" }, "paymentMethod.expiryDate"},
		"cvv short":     {func(p *PaymentInput) { p.CVV = "12" }, "paymentMethod.cvv"},
		"cvv long":      {func(p *PaymentInput) { p.CVV = "12345" }, "paymentMethod.cvv"},
		"no name":       {func(p *PaymentInput) { p.CardName = " " }, "paymentMethod.cardName"},
		"unknown type":  {func(p *PaymentInput) { p.Type = "cash" }, "paymentMethod.type"},
	}
	for name, tc := range cases {
		payment := validCard()
		tc.mutate(&payment)
		details := detailsOf(t, Validate(validAddress(), payment))
		if _, ok := details[tc.field]; !ok {
			t.Fatalf("%s: expected %s in details, got %v", name, tc.field, details)
		}
	}
}

func TestValidateAggregatesAllFailures(t *testing.T) {
	details := detailsOf(t, Validate(AddressInput{Zip: "1"}, PaymentInput{Type: "card", CVV: "1"}))

	want := []string{
		"shippingAddress.name",
		"shippingAddress.street",
		"shippingAddress.city",
		"shippingAddress.state",
		"shippingAddress.zip",
		"paymentMethod.cardNumber",
		"paymentMethod.expiryDate",
		"paymentMethod.cvv",
		"paymentMethod.cardName",
	}
	for _, field := range want {
		if _, ok := details[field]; !ok {
			t.Fatalf("expected %s in details, got %v", field, details)
		}
	}
	if details["paymentMethod.cvv"] != "must be 3 or 4 digits" {
		t.Fatalf("unexpected cvv message %q", details["paymentMethod.cvv"])
	}
}

func TestPaymentSummaryKeepsLast4Only(t *testing.T) {
	summary := validCard().Summary()
	if summary.Type != enums.PaymentMethodTypeCard || summary.Last4 != "4242" {
		t.Fatalf("unexpected summary %+v", summary)
	}
	paypal := PaymentInput{Type: "paypal", CardNumber: "4111111111111111"}.Summary()
	if paypal.Last4 != "" {
		t.Fatalf("paypal must not carry card digits, got %+v", paypal)
	}
}
