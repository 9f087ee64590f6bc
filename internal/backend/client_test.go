package backend

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"uleaf-admin/internal/config"
	"uleaf-admin/internal/domain"
)

type offlineProbe struct{}

func (offlineProbe) Online(context.Context) bool { return false }

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	endpoints := map[string]string{}
	for _, name := range config.EndpointNames {
		endpoints[name] = srv.URL + "/" + name
	}
	c := New(Options{Endpoints: endpoints, Tokens: StaticToken("tok-123")})
	return c, srv
}

func TestClientSendsBearerTokenAndDecodesDiscount(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("authorization header = %q", got)
		}
		if r.Method != http.MethodGet || r.URL.Path != "/getDiscount/abc" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"success":true,"data":{"id":"abc","code":"SPRING","type":"buyXGetY","buyQuantity":2,"getQuantity":1}}`)
	})

	d, err := c.GetDiscount(context.Background(), "abc")
	if err != nil {
		t.Fatalf("get discount: %v", err)
	}
	if d.Code != "SPRING" || d.Type != domain.DiscountBuyXGetY {
		t.Fatalf("unexpected discount %+v", d)
	}
	if d.BuyQuantity == nil || *d.BuyQuantity != 2 {
		t.Fatalf("buyQuantity not decoded: %+v", d.BuyQuantity)
	}
}

func TestClientMissingEndpointIsConfigurationError(t *testing.T) {
	c := New(Options{Endpoints: map[string]string{}, Tokens: StaticToken("tok")})

	_, err := c.GetDiscount(context.Background(), "abc")
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if cfgErr.Endpoint != config.EndpointGetDiscount {
		t.Fatalf("endpoint = %q", cfgErr.Endpoint)
	}
}

func TestClientOfflineShortCircuits(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()
	c := New(Options{
		Endpoints: map[string]string{config.EndpointGetDiscounts: srv.URL},
		Tokens:    StaticToken("tok"),
		Probe:     offlineProbe{},
	})

	_, err := c.ListDiscounts(context.Background(), DiscountListOptions{})
	if !errors.Is(err, ErrNoConnection) {
		t.Fatalf("expected ErrNoConnection, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatal("request should not have been sent")
	}
}

func TestClientWithoutTokenFails(t *testing.T) {
	c := New(Options{Endpoints: map[string]string{config.EndpointGetDiscounts: "http://127.0.0.1:1"}})

	if _, err := c.ListDiscounts(context.Background(), DiscountListOptions{}); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}

func TestClientErrorNormalization(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"json message", http.StatusBadRequest, `{"success":false,"message":"Code already exists"}`, "Code already exists"},
		{"json error string", http.StatusBadRequest, `{"error":"Invalid payload"}`, "Invalid payload"},
		{"json error object", http.StatusInternalServerError, `{"error":{"message":"boom"}}`, "boom"},
		{"plain text", http.StatusBadGateway, `upstream unavailable`, "upstream unavailable"},
		{"empty body", http.StatusInternalServerError, ``, "HTTP error! status: 500"},
		{"json without message", http.StatusForbidden, `{"success":false}`, "HTTP error! status: 403"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})
			err := c.DeleteDiscount(context.Background(), "d1")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Status != tc.status || apiErr.Message != tc.want {
				t.Fatalf("got status=%d message=%q", apiErr.Status, apiErr.Message)
			}
		})
	}
}

func TestClientNotFoundAddsDeployHint(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := c.CreateDiscount(context.Background(), domain.Discount{Code: "X"})
	if err == nil || !strings.Contains(err.Error(), "please deploy the Cloud Function createDiscount") {
		t.Fatalf("expected deploy hint, got %v", err)
	}
}

func TestClientSuccessFalseIsAnError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"error":"Discount not found"}`)
	})

	_, err := c.GetDiscount(context.Background(), "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Discount not found" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestValidateDiscountCodePreconditions(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	cart := []domain.CartItem{{ListingID: "l1", Quantity: 1, Price: 10}}

	if _, err := c.ValidateDiscountCode(context.Background(), "   ", cart, ""); !errors.Is(err, ErrEmptyCode) {
		t.Fatalf("expected ErrEmptyCode, got %v", err)
	}
	if _, err := c.ValidateDiscountCode(context.Background(), "SAVE10", nil, ""); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatal("preconditions must fail before any request")
	}
}

func TestValidateDiscountCodeSendsCart(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
			return
		}
		if body["code"] != "SAVE10" || body["buyerId"] != "b1" {
			t.Errorf("unexpected body %v", body)
		}
		if items, _ := body["cartItems"].([]any); len(items) != 1 {
			t.Errorf("cart items = %v", body["cartItems"])
		}
		_, _ = io.WriteString(w, `{"success":true,"data":{"valid":true,"discountAmount":12.5,"message":"Applied"}}`)
	})

	res, err := c.ValidateDiscountCode(context.Background(), " save10 ", []domain.CartItem{{ListingID: "l1", Quantity: 1, Price: 125}}, "b1")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !res.Valid || res.DiscountAmount != 12.5 || res.Message != "Applied" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestListUsersAdaptsResponseShapes(t *testing.T) {
	bodies := []string{
		`{"success":true,"data":{"users":[{"id":"u1","firstName":"Ana","role":"buyer"}],"pagination":{"page":1,"limit":10,"totalPages":3}}}`,
		`{"success":true,"data":[{"uid":"u1","firstName":"Ana","role":"buyer"}],"pagination":{"page":1,"limit":10,"totalPages":3}}`,
		`{"results":[{"id":"u1","firstName":"Ana","userType":"buyer"}],"pagination":{"page":1,"limit":10,"totalPages":3}}`,
		`{"users":[{"_id":"u1","firstName":"Ana","role":"buyer"}],"pagination":{"page":1,"limit":10,"totalPages":3}}`,
	}
	for i, body := range bodies {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("role") != "buyer" || r.URL.Query().Get("page") != "1" {
				t.Errorf("query = %s", r.URL.RawQuery)
			}
			_, _ = io.WriteString(w, body)
		})
		page, err := c.ListUsers(context.Background(), UserQuery{Role: "buyer", Page: 1, Limit: 10})
		if err != nil {
			t.Fatalf("shape %d: %v", i, err)
		}
		if len(page.Users) != 1 || page.Users[0].ID != "u1" || page.Users[0].Role != domain.RoleBuyer {
			t.Fatalf("shape %d: users = %+v", i, page.Users)
		}
		if page.Pagination == nil || page.Pagination.TotalPages != 3 || !page.Pagination.HasMore {
			t.Fatalf("shape %d: pagination = %+v", i, page.Pagination)
		}
	}
}

func TestReferenceNormalizesStringsAndObjects(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/getListingType":
			_, _ = io.WriteString(w, `{"success":true,"data":["Single Plant","Wholesale"]}`)
		case "/getSpeciesFromListings":
			if r.URL.Query().Get("genus") != "Monstera" {
				t.Errorf("genus filter missing: %s", r.URL.RawQuery)
			}
			_, _ = io.WriteString(w, `{"success":true,"data":{"species":[{"id":"s1","name":"deliciosa","count":4}]}}`)
		default:
			http.NotFound(w, r)
		}
	})

	types, err := c.Reference(context.Background(), config.EndpointGetListingType, "")
	if err != nil {
		t.Fatalf("listing types: %v", err)
	}
	if len(types) != 2 || types[0].Name != "Single Plant" || types[0].ID != "Single Plant" {
		t.Fatalf("listing types = %+v", types)
	}

	species, err := c.Reference(context.Background(), config.EndpointGetSpeciesFromListings, "Monstera")
	if err != nil {
		t.Fatalf("species: %v", err)
	}
	if len(species) != 1 || species[0].Name != "deliciosa" || species[0].Extra["count"] != float64(4) {
		t.Fatalf("species = %+v", species)
	}

	if _, err := c.Reference(context.Background(), "getEverything", ""); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestInvoicePDFDecodesBase64(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake")
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("transactionNumber") != "TRX-1" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"pdfBase64": base64.StdEncoding.EncodeToString(pdf)},
		})
	})

	got, err := c.InvoicePDF(context.Background(), "TRX-1")
	if err != nil {
		t.Fatalf("invoice pdf: %v", err)
	}
	if string(got) != string(pdf) {
		t.Fatalf("pdf = %q", got)
	}
}

func TestListOrdersReadsNestedPricing(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"data":{"orders":[{"id":"o1","transactionNumber":"TRX-1","status":"delivered","pricing":{"finalTotal":42.5},"createdAt":{"_seconds":1735689600},"plantDetails":{"genus":"Monstera","species":"deliciosa"}}]}}`)
	})

	page, err := c.ListOrders(context.Background(), OrderQuery{BuyerID: "b1"})
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(page.Orders) != 1 {
		t.Fatalf("orders = %+v", page.Orders)
	}
	o := page.Orders[0]
	if o.FinalTotal != 42.5 || o.PlantName != "Monstera deliciosa" || o.CreatedAt == nil || o.CreatedAt.Year() != 2025 {
		t.Fatalf("order = %+v", o)
	}
}
