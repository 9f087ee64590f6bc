package discount

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDeleterCallsBackendOnceUnderDoubleTap(t *testing.T) {
	api := &fakeAPI{deleteCh: make(chan struct{})}
	d := NewDeleter(api)

	first := make(chan error, 1)
	go func() { first <- d.Confirm(context.Background(), "d-1", true) }()

	deadline := time.Now().Add(2 * time.Second)
	for !d.Deleting("d-1") {
		if time.Now().After(deadline) {
			t.Fatal("first delete never started")
		}
		time.Sleep(time.Millisecond)
	}

	var wg sync.WaitGroup
	var rejected int32
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := d.Confirm(context.Background(), "d-1", true); errors.Is(err, ErrDeleteInProgress) {
				atomic.AddInt32(&rejected, 1)
			}
		}()
	}
	wg.Wait()
	close(api.deleteCh)

	if err := <-first; err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if got := atomic.LoadInt32(&api.deletes); got != 1 {
		t.Fatalf("DeleteDiscount called %d times", got)
	}
	if rejected != 5 {
		t.Fatalf("rejected = %d", rejected)
	}
	if d.Deleting("d-1") {
		t.Fatal("guard should be released")
	}
}

func TestDeleterRequiresConfirmation(t *testing.T) {
	api := &fakeAPI{}
	d := NewDeleter(api)

	if err := d.Confirm(context.Background(), "d-1", false); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if api.deletes != 0 {
		t.Fatal("unconfirmed delete reached backend")
	}
	if err := d.Confirm(context.Background(), "d-1", true); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := d.Confirm(context.Background(), "d-1", true); err != nil {
		t.Fatalf("sequential confirm should run again: %v", err)
	}
	if api.deletes != 2 {
		t.Fatalf("deletes = %d", api.deletes)
	}
}
