package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/marketflow-backend/api/middleware"
	cartsvc "github.com/angelmondragon/marketflow-backend/internal/cart"
	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
)

type stubCartAdder struct {
	cartsvc.Service
	calls []int
}

func (s *stubCartAdder) AddItem(_ context.Context, sessionID string, productID int64, quantity int) (*models.CartLineItem, error) {
	s.calls = append(s.calls, quantity)
	return &models.CartLineItem{ID: 7, SessionID: sessionID, ProductID: productID, Quantity: quantity}, nil
}

func postAddItem(t *testing.T, svc cartsvc.Service, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithSessionID(req.Context(), "sess-1"))

	resp := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(resp, req)
	return resp
}

func TestCartAddItemDefaultsQuantity(t *testing.T) {
	svc := &stubCartAdder{}
	resp := postAddItem(t, svc, `{"productId":1}`)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.calls) != 1 || svc.calls[0] != 1 {
		t.Fatalf("expected one add with quantity 1, got %v", svc.calls)
	}

	var envelope struct {
		Data lineView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Quantity != 1 || envelope.Data.ProductID != 1 {
		t.Fatalf("unexpected line %+v", envelope.Data)
	}
}

func TestCartAddItemQuantity(t *testing.T) {
	cases := []struct {
		body   string
		status int
		calls  []int
	}{
		{`{"productId":1,"quantity":3}`, http.StatusCreated, []int{3}},
		{`{"productId":1,"quantity":0}`, http.StatusBadRequest, nil},
		{`{"productId":1,"quantity":-2}`, http.StatusBadRequest, nil},
		{`{"quantity":2}`, http.StatusBadRequest, nil},
	}

	for _, tc := range cases {
		svc := &stubCartAdder{}
		resp := postAddItem(t, svc, tc.body)
		if resp.Code != tc.status {
			t.Fatalf("%s: expected %d got %d", tc.body, tc.status, resp.Code)
		}
		if len(svc.calls) != len(tc.calls) {
			t.Fatalf("%s: expected calls %v got %v", tc.body, tc.calls, svc.calls)
		}
		for i := range tc.calls {
			if svc.calls[i] != tc.calls[i] {
				t.Fatalf("%s: expected calls %v got %v", tc.body, tc.calls, svc.calls)
			}
		}
	}
}
