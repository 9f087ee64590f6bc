package invoice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"uleaf-admin/internal/backend"
	"uleaf-admin/internal/directory"
	"uleaf-admin/internal/domain"
	"uleaf-admin/internal/ports"
	"uleaf-admin/internal/storage"
)

var ErrBusy = errors.New("an invoice action is already running for this transaction")

// OrderSource lists a buyer's orders page by page.
type OrderSource interface {
	ListOrders(ctx context.Context, q backend.OrderQuery) (*backend.OrderPage, error)
}

// Document is a stored invoice PDF.
type Document struct {
	TransactionNumber string `json:"transactionNumber"`
	URL               string `json:"url"`
	Size              int    `json:"size"`
}

// EligibleOrders drops orders still waiting for payment.
func EligibleOrders(orders []domain.Order) []domain.Order {
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if isPendingPayment(o.Status) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func isPendingPayment(s domain.OrderStatus) bool {
	norm := strings.ToLower(strings.TrimSpace(string(s)))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	return norm == string(domain.OrderPendingPayment)
}

// GroupByTransaction builds one invoice card per transaction number, newest
// first. Orders without a transaction number are skipped.
func GroupByTransaction(orders []domain.Order) []domain.Transaction {
	byTxn := map[string]*domain.Transaction{}
	var order []string

	for _, o := range orders {
		txn := strings.TrimSpace(o.TransactionNumber)
		if txn == "" {
			continue
		}
		t, ok := byTxn[txn]
		if !ok {
			t = &domain.Transaction{TransactionNumber: txn, Total: decimal.Zero}
			byTxn[txn] = t
			order = append(order, txn)
		}
		t.Orders = append(t.Orders, o)
		t.Total = t.Total.Add(decimal.NewFromFloat(o.FinalTotal))
		if o.CreatedAt != nil && (t.OrderDate == nil || o.CreatedAt.Before(*t.OrderDate)) {
			created := *o.CreatedAt
			t.OrderDate = &created
		}
		if t.FlightDate == "" {
			if o.FlightDate != "" {
				t.FlightDate = o.FlightDate
			} else if o.CargoDate != "" {
				t.FlightDate = o.CargoDate
			}
		}
	}

	out := make([]domain.Transaction, 0, len(order))
	for _, txn := range order {
		t := byTxn[txn]
		t.Total = t.Total.Round(2)
		out = append(out, *t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].OrderDate, out[j].OrderDate
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.After(*b)
	})
	return out
}

// Service backs the invoice screen. View and Send refuse to run twice at
// once for the same transaction.
type Service struct {
	Orders    OrderSource
	Invoices  ports.InvoiceAPI
	Store     ports.ObjectStore
	PageLimit int
	Logger    *slog.Logger

	mu         sync.Mutex
	processing map[string]bool
}

func NewService(orders OrderSource, invoices ports.InvoiceAPI, store ports.ObjectStore, pageLimit int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Orders:     orders,
		Invoices:   invoices,
		Store:      store,
		PageLimit:  pageLimit,
		Logger:     logger,
		processing: map[string]bool{},
	}
}

// Transactions loads every order of the buyer and groups the payable ones.
func (s *Service) Transactions(ctx context.Context, buyerID string) ([]domain.Transaction, error) {
	buyerID = strings.TrimSpace(buyerID)
	if buyerID == "" {
		return nil, backend.ErrMissingBuyer
	}
	fetch := func(ctx context.Context, page, limit int) ([]domain.Order, *domain.Pagination, error) {
		res, err := s.Orders.ListOrders(ctx, backend.OrderQuery{BuyerID: buyerID, Page: page, Limit: limit})
		if err != nil {
			return nil, nil, err
		}
		return res.Orders, res.Pagination, nil
	}
	orders, err := directory.CollectAll(ctx, fetch, s.PageLimit, func(o domain.Order) string { return o.ID })
	if err != nil {
		return nil, fmt.Errorf("load orders for buyer %s: %w", buyerID, err)
	}
	return GroupByTransaction(EligibleOrders(orders)), nil
}

// View fetches the rendered invoice and stores it for download.
func (s *Service) View(ctx context.Context, transactionNumber string) (*Document, error) {
	release, err := s.acquire(transactionNumber)
	if err != nil {
		return nil, err
	}
	defer release()

	pdf, err := s.Invoices.InvoicePDF(ctx, transactionNumber)
	if err != nil {
		return nil, err
	}
	if s.Store == nil {
		return nil, errors.New("invoice storage is not configured")
	}
	key := storage.ObjectKey("invoices", "invoice-"+transactionNumber+".pdf")
	url, err := s.Store.Put(ctx, key, "application/pdf", bytes.NewReader(pdf), int64(len(pdf)))
	if err != nil {
		return nil, fmt.Errorf("store invoice %s: %w", transactionNumber, err)
	}
	s.Logger.Info("invoice stored", "transaction", transactionNumber, "bytes", len(pdf), "url", url)
	return &Document{TransactionNumber: transactionNumber, URL: url, Size: len(pdf)}, nil
}

// PDF returns the raw invoice bytes without storing them.
func (s *Service) PDF(ctx context.Context, transactionNumber string) ([]byte, error) {
	release, err := s.acquire(transactionNumber)
	if err != nil {
		return nil, err
	}
	defer release()
	return s.Invoices.InvoicePDF(ctx, transactionNumber)
}

// Send asks the backend to email the invoice to the buyer.
func (s *Service) Send(ctx context.Context, transactionNumber string) error {
	release, err := s.acquire(transactionNumber)
	if err != nil {
		return err
	}
	defer release()

	if err := s.Invoices.SendInvoice(ctx, transactionNumber); err != nil {
		return err
	}
	s.Logger.Info("invoice sent", "transaction", transactionNumber)
	return nil
}

// Processing reports whether an action is running for the transaction.
func (s *Service) Processing(transactionNumber string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing[strings.TrimSpace(transactionNumber)]
}

func (s *Service) acquire(transactionNumber string) (func(), error) {
	txn := strings.TrimSpace(transactionNumber)
	if txn == "" {
		return nil, backend.ErrMissingTransaction
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processing == nil {
		s.processing = map[string]bool{}
	}
	if s.processing[txn] {
		return nil, ErrBusy
	}
	s.processing[txn] = true
	return func() {
		s.mu.Lock()
		delete(s.processing, txn)
		s.mu.Unlock()
	}, nil
}
