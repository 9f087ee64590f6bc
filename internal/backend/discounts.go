package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"uleaf-admin/internal/config"
	"uleaf-admin/internal/domain"
)

// Input errors, raised before any request is sent.
var (
	ErrEmptyCode          = errors.New("discount code is required")
	ErrEmptyCart          = errors.New("cart items are required")
	ErrMissingID          = errors.New("discount id is required")
	ErrMissingBuyer       = errors.New("buyer id is required")
	ErrMissingTransaction = errors.New("transaction number is required")
)

type DiscountListOptions struct {
	Status string
	Limit  int
	Offset int
}

type DiscountList struct {
	Discounts  []domain.Discount
	Pagination *domain.Pagination
}

func (c *Client) CreateDiscount(ctx context.Context, d domain.Discount) (*domain.Discount, error) {
	env, err := c.do(ctx, request{method: http.MethodPost, endpoint: config.EndpointCreateDiscount, body: d})
	if err != nil {
		return nil, err
	}
	return discountFromEnvelope(env, d)
}

// UpdateDiscount replaces the whole discount; the backend has no partial patch.
func (c *Client) UpdateDiscount(ctx context.Context, id string, d domain.Discount) (*domain.Discount, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingID
	}
	env, err := c.do(ctx, request{method: http.MethodPut, endpoint: config.EndpointUpdateDiscount, path: id, body: d})
	if err != nil {
		return nil, err
	}
	d.ID = id
	return discountFromEnvelope(env, d)
}

func (c *Client) GetDiscount(ctx context.Context, id string) (*domain.Discount, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingID
	}
	env, err := c.do(ctx, request{method: http.MethodGet, endpoint: config.EndpointGetDiscount, path: id})
	if err != nil {
		return nil, err
	}
	d, err := decodeDiscount(env.Data)
	if err != nil {
		return nil, fmt.Errorf("decode discount: %w", err)
	}
	if d.ID == "" {
		d.ID = id
	}
	return d, nil
}

func (c *Client) ListDiscounts(ctx context.Context, opts DiscountListOptions) (*DiscountList, error) {
	q := url.Values{}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}
	env, err := c.do(ctx, request{method: http.MethodGet, endpoint: config.EndpointGetDiscounts, query: q})
	if err != nil {
		return nil, err
	}
	records, err := env.list("discounts")
	if err != nil {
		return nil, fmt.Errorf("decode discounts: %w", err)
	}
	out := &DiscountList{Discounts: make([]domain.Discount, 0, len(records)), Pagination: env.pagination()}
	for _, rec := range records {
		buf, _ := json.Marshal(rec)
		d, err := decodeDiscount(buf)
		if err != nil {
			return nil, fmt.Errorf("decode discount: %w", err)
		}
		out.Discounts = append(out.Discounts, *d)
	}
	return out, nil
}

func (c *Client) DeleteDiscount(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrMissingID
	}
	_, err := c.do(ctx, request{method: http.MethodDelete, endpoint: config.EndpointDeleteDiscount, path: id})
	return err
}

// ValidateDiscountCode asks the backend to price a cart with the code.
// The code and cart are checked locally before any network call.
func (c *Client) ValidateDiscountCode(ctx context.Context, code string, cart []domain.CartItem, buyerID string) (*domain.ValidationResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrEmptyCode
	}
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}
	body := map[string]any{
		"code":      strings.ToUpper(code),
		"cartItems": cart,
	}
	if buyerID != "" {
		body["buyerId"] = buyerID
	}
	env, err := c.do(ctx, request{method: http.MethodPost, endpoint: config.EndpointValidateDiscountCode, body: body})
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return nil, fmt.Errorf("decode validation result: %w", err)
		}
	}
	res := &domain.ValidationResult{
		Valid:          boolField(m, "valid", "isValid"),
		DiscountAmount: floatField(m, "discountAmount", "discount"),
		Message:        stringField(m, "message"),
	}
	if res.Message == "" {
		res.Message = env.Message
	}
	if raw, ok := m["discount"].(map[string]any); ok {
		buf, _ := json.Marshal(raw)
		if d, err := decodeDiscount(buf); err == nil {
			res.Discount = d
		}
	}
	return res, nil
}

// discountFromEnvelope returns the saved discount, falling back to the sent
// payload plus whatever id the function reported.
func discountFromEnvelope(env *envelope, sent domain.Discount) (*domain.Discount, error) {
	if obj := asObject(env.Data); obj != nil {
		if _, hasCode := obj["code"]; hasCode {
			return decodeDiscount(env.Data)
		}
		var ids struct {
			ID         string `json:"id"`
			DiscountID string `json:"discountId"`
		}
		_ = json.Unmarshal(env.Data, &ids)
		if ids.ID != "" {
			sent.ID = ids.ID
		} else if ids.DiscountID != "" {
			sent.ID = ids.DiscountID
		}
	}
	return &sent, nil
}

func decodeDiscount(raw json.RawMessage) (*domain.Discount, error) {
	var d domain.Discount
	if len(raw) == 0 {
		return &d, nil
	}
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	if d.ID == "" {
		var alt struct {
			ID string `json:"_id"`
		}
		_ = json.Unmarshal(raw, &alt)
		d.ID = alt.ID
	}
	return &d, nil
}
