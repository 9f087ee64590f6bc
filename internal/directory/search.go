package directory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"uleaf-admin/internal/domain"
)

const (
	DefaultSearchDelay = 300 * time.Millisecond
	minQueryLength     = 2
)

var (
	ErrSuperseded    = errors.New("search superseded by newer input")
	ErrQueryTooShort = errors.New("search query must be at least 2 characters")
	ErrSearchClosed  = errors.New("search closed")
)

// SearchResult answers one Input call.
type SearchResult struct {
	Generation uint64
	Query      string
	Buyers     []domain.Buyer
	Err        error
}

// BuyerSearch debounces free-text buyer search. Every Input gets a
// generation; only the latest generation's result is delivered, older
// callers receive ErrSuperseded.
type BuyerSearch struct {
	delay  time.Duration
	search func(ctx context.Context, query string) ([]domain.Buyer, error)
	all    func(ctx context.Context) ([]domain.Buyer, error)

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	gen     uint64
	timer   *time.Timer
	waiters map[uint64]chan SearchResult
	closed  bool
}

func NewBuyerSearch(
	delay time.Duration,
	search func(ctx context.Context, query string) ([]domain.Buyer, error),
	all func(ctx context.Context) ([]domain.Buyer, error),
) *BuyerSearch {
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &BuyerSearch{
		delay:   delay,
		search:  search,
		all:     all,
		ctx:     ctx,
		cancel:  cancel,
		waiters: map[uint64]chan SearchResult{},
	}
}

// Input registers a keystroke burst. An empty query reloads the full list
// at once; a query of two or more characters is searched after the delay.
// The returned channel receives exactly one result. The search keeps the
// values of ctx (the caller's identity) but is only cancelled by Close.
func (s *BuyerSearch) Input(ctx context.Context, query string) <-chan SearchResult {
	query = strings.TrimSpace(query)
	ch := make(chan SearchResult, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		ch <- SearchResult{Query: query, Err: ErrSearchClosed}
		return ch
	}

	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	for g, w := range s.waiters {
		w <- SearchResult{Generation: g, Err: ErrSuperseded}
		delete(s.waiters, g)
	}

	switch {
	case query == "":
		s.waiters[gen] = ch
		go s.run(ctx, gen, query)
	case utf8.RuneCountInString(query) < minQueryLength:
		ch <- SearchResult{Generation: gen, Query: query, Err: ErrQueryTooShort}
	default:
		s.waiters[gen] = ch
		s.timer = time.AfterFunc(s.delay, func() { s.run(ctx, gen, query) })
	}
	return ch
}

// Generation is the most recently issued generation.
func (s *BuyerSearch) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *BuyerSearch) run(caller context.Context, gen uint64, query string) {
	s.mu.Lock()
	if _, waiting := s.waiters[gen]; !waiting {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	ctx, cancel := s.runContext(caller)
	defer cancel()

	var (
		buyers []domain.Buyer
		err    error
	)
	if query == "" {
		buyers, err = s.all(ctx)
	} else {
		buyers, err = s.search(ctx, query)
	}

	s.mu.Lock()
	ch, ok := s.waiters[gen]
	delete(s.waiters, gen)
	s.mu.Unlock()
	if !ok {
		// a newer input already answered this waiter
		return
	}
	ch <- SearchResult{Generation: gen, Query: query, Buyers: buyers, Err: err}
}

// runContext detaches from the caller's cancellation and joins Close.
func (s *BuyerSearch) runContext(caller context.Context) (context.Context, context.CancelFunc) {
	if caller == nil {
		caller = context.Background()
	}
	ctx, cancel := context.WithCancel(context.WithoutCancel(caller))
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Close cancels pending and in-flight searches.
func (s *BuyerSearch) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	for g, w := range s.waiters {
		w <- SearchResult{Generation: g, Err: ErrSearchClosed}
		delete(s.waiters, g)
	}
}

// Await waits for a result or for ctx to end.
func Await(ctx context.Context, ch <-chan SearchResult) (SearchResult, error) {
	select {
	case res := <-ch:
		return res, res.Err
	case <-ctx.Done():
		return SearchResult{}, ctx.Err()
	}
}

// SearchSessions keeps one BuyerSearch per admin so a newer query from the
// same admin supersedes their older one.
type SearchSessions struct {
	newSearch func() *BuyerSearch

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	search   *BuyerSearch
	lastUsed time.Time
}

func NewSearchSessions(newSearch func() *BuyerSearch) *SearchSessions {
	return &SearchSessions{newSearch: newSearch, sessions: map[string]*session{}}
}

func (s *SearchSessions) For(key string) *BuyerSearch {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key]
	if !ok {
		sess = &session{search: s.newSearch()}
		s.sessions[key] = sess
	}
	sess.lastUsed = time.Now()
	return sess.search
}

// Sweep closes sessions idle for longer than idle.
func (s *SearchSessions) Sweep(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, sess := range s.sessions {
		if time.Since(sess.lastUsed) > idle {
			sess.search.Close()
			delete(s.sessions, key)
			n++
		}
	}
	return n
}

func (s *SearchSessions) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, sess := range s.sessions {
		sess.search.Close()
		delete(s.sessions, key)
	}
}
