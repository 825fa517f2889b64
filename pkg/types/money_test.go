package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		Total Money `json:"total"`
	}{Total: NewMoney(decimal.RequireFromString("27.5"))})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"total":27.50}` {
		t.Fatalf("unexpected json %s", out)
	}

	var in struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a":25,"b":"10.10"}`), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !in.A.Decimal().Equal(decimal.NewFromInt(25)) || !in.B.Decimal().Equal(decimal.RequireFromString("10.10")) {
		t.Fatalf("unexpected values %s %s", in.A.Decimal(), in.B.Decimal())
	}
}
