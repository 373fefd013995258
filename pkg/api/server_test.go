package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/campstock/exchange/pkg/exchange"
	"github.com/campstock/exchange/pkg/exchange/marketcfg"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewServer(exchange.New(marketcfg.NewMemoryStore()))
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestPlaceOrderEndToEnd(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/accounts", gin.H{"account_id": "A", "points": 1000})
	if w.Code != http.StatusCreated {
		t.Fatalf("create account status = %d, body %s", w.Code, w.Body.String())
	}

	w = do(t, s, http.MethodPost, "/api/admin/ipo/reset", gin.H{"initial_shares": 100, "initial_price": 20})
	if w.Code != http.StatusCreated {
		t.Fatalf("reset ipo status = %d, body %s", w.Code, w.Body.String())
	}

	w = do(t, s, http.MethodPost, "/api/orders", gin.H{
		"account_id": "A",
		"symbol":     "CAMP",
		"side":       "BUY",
		"kind":       "MARKET",
		"quantity":   10,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("place order status = %d, body %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["success"] != true {
		t.Errorf("expected success envelope, got %v", body)
	}

	w = do(t, s, http.MethodGet, "/api/accounts/A/balance", nil)
	body = decode(t, w)
	data := body["data"].(map[string]interface{})
	if data["points"].(float64) != 800 || data["shares"].(float64) != 10 {
		t.Errorf("balance = %v, want 800 points 10 shares", data)
	}

	if w := do(t, s, http.MethodGet, "/api/trades/CAMP", nil); w.Code != http.StatusOK {
		t.Errorf("trades status = %d", w.Code)
	}
	if w := do(t, s, http.MethodGet, "/api/orderbook/CAMP", nil); w.Code != http.StatusOK {
		t.Errorf("orderbook status = %d", w.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)

	// Unknown account on placement.
	w := do(t, s, http.MethodPost, "/api/orders", gin.H{
		"account_id": "ghost",
		"symbol":     "CAMP",
		"side":       "BUY",
		"kind":       "LIMIT",
		"price":      10,
		"quantity":   1,
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown account status = %d, want 404", w.Code)
	}

	// Malformed body.
	w = do(t, s, http.MethodPost, "/api/orders", gin.H{"symbol": "CAMP"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing fields status = %d, want 400", w.Code)
	}

	// Unknown order cancel.
	w = do(t, s, http.MethodDelete, "/api/orders/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown order status = %d, want 404", w.Code)
	}
	body := decode(t, w)
	if body["success"] != false || body["error"] == nil {
		t.Errorf("expected error envelope, got %v", body)
	}
}

func TestInsufficientBalanceMapsTo422(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/api/accounts", gin.H{"account_id": "A", "points": 10})

	w := do(t, s, http.MethodPost, "/api/orders", gin.H{
		"account_id": "A",
		"symbol":     "CAMP",
		"side":       "BUY",
		"kind":       "LIMIT",
		"price":      100,
		"quantity":   5,
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422, body %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	errObj := body["error"].(map[string]interface{})
	if errObj["code"] != "INSUFFICIENT_BALANCE" {
		t.Errorf("error code = %v, want INSUFFICIENT_BALANCE", errObj["code"])
	}
}

func TestMarketConfigRoundTrip(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPut, "/api/admin/market-config", gin.H{
		"windows":            []gin.H{{"open": "09:00", "close": "17:00"}},
		"price_band_percent": 20,
		"reference_price":    100,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("set config status = %d, body %s", w.Code, w.Body.String())
	}

	w = do(t, s, http.MethodGet, "/api/admin/market-config", nil)
	body := decode(t, w)
	data := body["data"].(map[string]interface{})
	if data["price_band_percent"].(float64) != 20 {
		t.Errorf("config = %v, want band 20", data)
	}

	// Invalid window rejected.
	w = do(t, s, http.MethodPut, "/api/admin/market-config", gin.H{
		"windows": []gin.H{{"open": "9am", "close": "17:00"}},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid config status = %d, want 400", w.Code)
	}
}
