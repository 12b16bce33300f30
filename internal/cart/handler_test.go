package cart

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func makeAppWithCartHandler(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	NewHandler(newTestService(t, NewInMemoryRepository())).RegisterPublicRoutes(app)
	return app
}

func decodeView(t *testing.T, body io.Reader) View {
	t.Helper()
	var v View
	if err := json.NewDecoder(body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestCartRoutes_Basic(t *testing.T) {
	app := makeAppWithCartHandler(t)

	// a new session gets an id back
	res, err := app.Test(httptest.NewRequest("GET", "/api/cart", nil))
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	cartID := res.Header.Get(HeaderName)
	if res.StatusCode != fiber.StatusOK || cartID == "" {
		t.Fatalf("expected 200 with cart id, got %d %q", res.StatusCode, cartID)
	}
	if v := decodeView(t, res.Body); len(v.Items) != 0 || v.DeliveryFee != FlatDeliveryFee {
		t.Fatalf("unexpected empty cart: %+v", v)
	}

	add := func(itemID string) View {
		req := httptest.NewRequest("POST", "/api/cart/items", strings.NewReader(`{"itemId":"`+itemID+`"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(HeaderName, cartID)
		res, err := app.Test(req)
		if err != nil || res.StatusCode != fiber.StatusOK {
			t.Fatalf("add %s: %v %v", itemID, err, res.StatusCode)
		}
		var body addItemResponse
		if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !strings.Contains(body.Message, "added to cart") {
			t.Fatalf("unexpected message %q", body.Message)
		}
		return body.Cart
	}

	add("6")
	v := add("6")
	if v.CartID != cartID || v.ItemCount != 2 || v.Items[0].ID != "6" {
		t.Fatalf("unexpected cart after adds: %+v", v)
	}
	if v.Total != v.Subtotal+v.DeliveryFee {
		t.Fatalf("total mismatch: %+v", v)
	}

	req := httptest.NewRequest("PUT", "/api/cart/items/6", strings.NewReader(`{"quantity":0}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderName, cartID)
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on set quantity, got %d", res.StatusCode)
	}
	if v := decodeView(t, res.Body); len(v.Items) != 0 {
		t.Fatalf("expected line removed, got %+v", v.Items)
	}
}

func TestCartRoutes_Errors(t *testing.T) {
	app := makeAppWithCartHandler(t)
	cartID := "5b0c8a36-3f7e-4c4b-9c39-2f9a3d3f1a10"

	cases := []struct {
		method, url, body string
		want              int
	}{
		{"POST", "/api/cart/items", `{}`, fiber.StatusBadRequest},
		{"POST", "/api/cart/items", `{"itemId":"404"}`, fiber.StatusNotFound},
		{"PUT", "/api/cart/items/1", `{}`, fiber.StatusBadRequest},
		{"PUT", "/api/cart/items/1", `{"quantity":3}`, fiber.StatusNotFound},
		{"DELETE", "/api/cart/items/1", ``, fiber.StatusOK},
		{"DELETE", "/api/cart", ``, fiber.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.url, strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(HeaderName, cartID)
		res, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s %s: %v", tc.method, tc.url, err)
		}
		if res.StatusCode != tc.want {
			t.Errorf("%s %s %s: expected %d, got %d", tc.method, tc.url, tc.body, tc.want, res.StatusCode)
		}
	}
}

func TestIDFromCtx_IgnoresInvalidIDs(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		id, ok := IDFromCtx(c)
		if ok {
			return c.SendString(id)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderName, "../../etc")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected invalid id to be ignored, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "5b0c8a36-3f7e-4c4b-9c39-2f9a3d3f1a10"})
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected cookie id to be accepted, got %d", res.StatusCode)
	}
}

func TestIDFromCtx_SurvivesNextRequest(t *testing.T) {
	var kept []string
	app := fiber.New()
	app.Get("/id", func(c *fiber.Ctx) error {
		if id, ok := IDFromCtx(c); ok {
			kept = append(kept, id)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	ids := []string{"0f8fad5b-d9cb-469f-a165-70867728950e", "7c9e6679-7425-40de-944b-e07fc1f90ae7"}
	for _, id := range ids {
		req := httptest.NewRequest("GET", "/id", nil)
		req.Header.Set(HeaderName, id)
		if _, err := app.Test(req); err != nil {
			t.Fatalf("request failed: %v", err)
		}
	}

	if len(kept) != 2 || kept[0] != ids[0] || kept[1] != ids[1] {
		t.Fatalf("cart ids changed after later requests: %v", kept)
	}
}
