package ports

import (
	"context"
	"io"

	"uleaf-admin/internal/domain"
)

// HealthChecker is used to probe dependencies.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// DiscountAPI is the discount half of the Cloud Functions client.
type DiscountAPI interface {
	CreateDiscount(ctx context.Context, d domain.Discount) (*domain.Discount, error)
	UpdateDiscount(ctx context.Context, id string, d domain.Discount) (*domain.Discount, error)
	GetDiscount(ctx context.Context, id string) (*domain.Discount, error)
	DeleteDiscount(ctx context.Context, id string) error
}

// InvoiceAPI fetches and dispatches rendered invoices.
type InvoiceAPI interface {
	InvoicePDF(ctx context.Context, transactionNumber string) ([]byte, error)
	SendInvoice(ctx context.Context, transactionNumber string) error
}

// ActivityRecorder keeps an audit trail of admin actions.
type ActivityRecorder interface {
	Record(ctx context.Context, entry domain.ActivityLog) error
}

// ObjectStore persists generated files and returns a URL they can be read from.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}
