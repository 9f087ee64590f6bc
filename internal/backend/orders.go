package backend

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"uleaf-admin/internal/config"
	"uleaf-admin/internal/domain"
)

// OrderQuery filters getAdminOrders. SellerID narrows the list to one
// seller's orders.
type OrderQuery struct {
	BuyerID  string
	SellerID string
	Status   string
	Page     int
	Limit    int
}

type OrderPage struct {
	Orders     []domain.Order
	Pagination *domain.Pagination
}

func (c *Client) ListOrders(ctx context.Context, q OrderQuery) (*OrderPage, error) {
	v := url.Values{}
	setIfNotEmpty(v, "buyerId", q.BuyerID)
	setIfNotEmpty(v, "sellerId", q.SellerID)
	setIfNotEmpty(v, "status", q.Status)
	setIfPositive(v, "page", q.Page)
	setIfPositive(v, "limit", q.Limit)

	env, err := c.do(ctx, request{method: http.MethodGet, endpoint: config.EndpointGetAdminOrders, query: v})
	if err != nil {
		return nil, err
	}
	records, err := env.list("orders")
	if err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	page := &OrderPage{Orders: make([]domain.Order, 0, len(records)), Pagination: env.pagination()}
	for _, m := range records {
		page.Orders = append(page.Orders, orderFromRecord(m))
	}
	return page, nil
}

func orderFromRecord(m map[string]any) domain.Order {
	o := domain.Order{
		ID:                stringField(m, "id", "orderId", "_id"),
		TransactionNumber: stringField(m, "transactionNumber", "trxNumber"),
		BuyerID:           stringField(m, "buyerUid", "buyerId"),
		BuyerName:         stringField(m, "buyerName"),
		Status:            domain.OrderStatus(stringField(m, "status", "orderStatus")),
		FinalTotal:        floatField(m, "finalTotal", "totalAmount"),
		CreatedAt:         timeField(m, "createdAt", "orderDate"),
		FlightDate:        stringField(m, "flightDate", "flightDateFormatted"),
		CargoDate:         stringField(m, "cargoDate"),
		PlantName:         stringField(m, "plantName"),
		GardenName:        stringField(m, "gardenName", "gardenOrCompanyName"),
		SellerID:          stringField(m, "sellerUid", "sellerId", "supplierUid", "supplierId"),
		SellerName:        stringField(m, "sellerName", "supplierName"),
		Quantity:          intField(m, "quantity", "orderQty"),
		TrackingNumber:    stringField(m, "trackingNumber"),
	}
	if pricing := objectField(m, "pricing"); pricing != nil && o.FinalTotal == 0 {
		o.FinalTotal = floatField(pricing, "finalTotal", "total")
	}
	if plant := objectField(m, "plantDetails"); plant != nil && o.PlantName == "" {
		genus := stringField(plant, "genus")
		species := stringField(plant, "species")
		o.PlantName = strings.TrimSpace(genus + " " + species)
	}
	if seller := objectField(m, "sellerInfo"); seller != nil && o.SellerID == "" {
		o.SellerID = stringField(seller, "uid", "id")
	}
	if buyer := objectField(m, "buyerInfo"); buyer != nil {
		if o.BuyerID == "" {
			o.BuyerID = stringField(buyer, "uid", "id")
		}
		if o.BuyerName == "" {
			o.BuyerName = strings.TrimSpace(stringField(buyer, "firstName") + " " + stringField(buyer, "lastName"))
		}
	}
	return o
}

// SendInvoice asks the backend to email the invoice for a transaction.
func (c *Client) SendInvoice(ctx context.Context, transactionNumber string) error {
	if strings.TrimSpace(transactionNumber) == "" {
		return ErrMissingTransaction
	}
	_, err := c.do(ctx, request{
		method:   http.MethodPost,
		endpoint: config.EndpointGenerateInvoice,
		body:     map[string]any{"transactionNumber": transactionNumber, "sendEmail": true},
	})
	return err
}

// InvoicePDF fetches the rendered invoice and decodes its base64 body.
func (c *Client) InvoicePDF(ctx context.Context, transactionNumber string) ([]byte, error) {
	if strings.TrimSpace(transactionNumber) == "" {
		return nil, ErrMissingTransaction
	}
	env, err := c.do(ctx, request{
		method:   http.MethodGet,
		endpoint: config.EndpointGetInvoicePDF,
		query:    url.Values{"transactionNumber": {transactionNumber}},
	})
	if err != nil {
		return nil, err
	}
	var encoded string
	if err := json.Unmarshal(env.Data, &encoded); err != nil {
		var m map[string]any
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return nil, fmt.Errorf("decode invoice response: %w", err)
		}
		encoded = stringField(m, "pdfBase64", "pdf", "base64")
	}
	encoded = strings.TrimPrefix(encoded, "data:application/pdf;base64,")
	if encoded == "" {
		return nil, &APIError{Endpoint: config.EndpointGetInvoicePDF, Message: "invoice PDF missing from response"}
	}
	pdf, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode invoice pdf: %w", err)
	}
	return pdf, nil
}
