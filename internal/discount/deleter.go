package discount

import (
	"context"
	"errors"
	"strings"
	"sync"

	"uleaf-admin/internal/backend"
	"uleaf-admin/internal/ports"
)

var (
	ErrDeleteInProgress = errors.New("discount deletion already in progress")
	ErrNotConfirmed     = errors.New("deletion was not confirmed")
)

// Deleter removes discounts after an explicit confirmation. A discount being
// deleted cannot be deleted again until the first call returns.
type Deleter struct {
	API ports.DiscountAPI

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewDeleter(api ports.DiscountAPI) *Deleter {
	return &Deleter{API: api, inFlight: make(map[string]bool)}
}

// Confirm deletes id when confirmed is true. Overlapping calls for the same
// id get ErrDeleteInProgress and never reach the backend.
func (d *Deleter) Confirm(ctx context.Context, id string, confirmed bool) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return backend.ErrMissingID
	}
	if !confirmed {
		return ErrNotConfirmed
	}

	d.mu.Lock()
	if d.inFlight == nil {
		d.inFlight = make(map[string]bool)
	}
	if d.inFlight[id] {
		d.mu.Unlock()
		return ErrDeleteInProgress
	}
	d.inFlight[id] = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		delete(d.inFlight, id)
		d.mu.Unlock()
	}()
	return d.API.DeleteDiscount(ctx, id)
}

// Deleting reports whether a delete for id is currently running.
func (d *Deleter) Deleting(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inFlight[strings.TrimSpace(id)]
}
