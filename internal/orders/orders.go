package orders

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"uleaf-admin/internal/backend"
	"uleaf-admin/internal/directory"
	"uleaf-admin/internal/domain"
)

// maxExportRows caps an export walk over every page.
const maxExportRows = 5000

var ErrUnknownStatus = errors.New("unknown order status")

var tabs = map[domain.OrderStatus]bool{
	domain.OrderPendingPayment: true,
	domain.OrderReadyToFly:     true,
	domain.OrderDelivered:      true,
	domain.OrderCancelled:      true,
}

type Source interface {
	ListOrders(ctx context.Context, q backend.OrderQuery) (*backend.OrderPage, error)
}

// Query selects a status tab. A non-empty SellerID restricts the result to
// that seller's orders; rows owned by anyone else are dropped even if the
// backend returns them.
type Query struct {
	Status   string
	BuyerID  string
	SellerID string
	Page     int
	Limit    int
}

// Row is one order flattened for table display.
type Row struct {
	ID                string `json:"id"`
	TransactionNumber string `json:"transactionNumber"`
	OrderDate         string `json:"orderDate"`
	BuyerName         string `json:"buyerName"`
	PlantName         string `json:"plantName"`
	GardenName        string `json:"gardenName"`
	SellerName        string `json:"sellerName"`
	Quantity          int    `json:"quantity"`
	Total             string `json:"total"`
	Status            string `json:"status"`
	FlightDate        string `json:"flightDate"`
	TrackingNumber    string `json:"trackingNumber"`
}

type Page struct {
	Rows       []Row              `json:"rows"`
	Pagination *domain.Pagination `json:"pagination,omitempty"`
}

type Lister struct {
	Orders       Source
	DefaultLimit int
}

// Page returns one page of a status tab.
func (l Lister) Page(ctx context.Context, q Query) (*Page, error) {
	q, err := l.normalize(q)
	if err != nil {
		return nil, err
	}
	res, err := l.Orders.ListOrders(ctx, q.backendQuery(q.Page, q.Limit))
	if err != nil {
		return nil, err
	}
	out := &Page{Rows: make([]Row, 0, len(res.Orders)), Pagination: res.Pagination}
	for _, o := range q.owned(res.Orders) {
		out.Rows = append(out.Rows, RowFromOrder(o))
	}
	return out, nil
}

// All walks every page of a tab for export.
func (l Lister) All(ctx context.Context, q Query) ([]Row, error) {
	q, err := l.normalize(q)
	if err != nil {
		return nil, err
	}
	fetch := func(ctx context.Context, page, limit int) ([]domain.Order, *domain.Pagination, error) {
		res, err := l.Orders.ListOrders(ctx, q.backendQuery(page, limit))
		if err != nil {
			return nil, nil, err
		}
		return res.Orders, res.Pagination, nil
	}
	all, err := directory.CollectAll(ctx, fetch, q.Limit, func(o domain.Order) string { return o.ID })
	if err != nil {
		return nil, err
	}
	all = q.owned(all)
	if len(all) > maxExportRows {
		all = all[:maxExportRows]
	}
	rows := make([]Row, 0, len(all))
	for _, o := range all {
		rows = append(rows, RowFromOrder(o))
	}
	return rows, nil
}

func (q Query) backendQuery(page, limit int) backend.OrderQuery {
	return backend.OrderQuery{BuyerID: q.BuyerID, SellerID: q.SellerID, Status: q.Status, Page: page, Limit: limit}
}

func (q Query) owned(orders []domain.Order) []domain.Order {
	if q.SellerID == "" {
		return orders
	}
	out := orders[:0:0]
	for _, o := range orders {
		if o.SellerID == q.SellerID {
			out = append(out, o)
		}
	}
	return out
}

func (l Lister) normalize(q Query) (Query, error) {
	q.Status = strings.ToLower(strings.TrimSpace(q.Status))
	if q.Status != "" && !tabs[domain.OrderStatus(q.Status)] {
		return q, ErrUnknownStatus
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = l.DefaultLimit
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	return q, nil
}

func RowFromOrder(o domain.Order) Row {
	r := Row{
		ID:                o.ID,
		TransactionNumber: o.TransactionNumber,
		BuyerName:         o.BuyerName,
		PlantName:         o.PlantName,
		GardenName:        o.GardenName,
		SellerName:        o.SellerName,
		Quantity:          o.Quantity,
		Total:             decimal.NewFromFloat(o.FinalTotal).StringFixed(2),
		Status:            string(o.Status),
		FlightDate:        o.FlightDate,
		TrackingNumber:    o.TrackingNumber,
	}
	if r.FlightDate == "" {
		r.FlightDate = o.CargoDate
	}
	if o.CreatedAt != nil {
		r.OrderDate = o.CreatedAt.Format("2006-01-02")
	}
	return r
}
