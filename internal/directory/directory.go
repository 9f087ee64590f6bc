package directory

import (
	"context"
	"strings"
	"unicode/utf8"

	"uleaf-admin/internal/backend"
	"uleaf-admin/internal/domain"
)

// UserSource is the user-listing half of the Cloud Functions client.
type UserSource interface {
	ListUsers(ctx context.Context, q backend.UserQuery) (*backend.UserPage, error)
	SearchUsers(ctx context.Context, q backend.SearchQuery) (*backend.UserPage, error)
}

// Directory serves the garden and buyer selector sheets.
type Directory struct {
	Users     UserSource
	PageLimit int

	gardens *SheetCache[domain.Garden]
	buyers  *SheetCache[domain.Buyer]
}

func New(users UserSource, pageLimit int) *Directory {
	d := &Directory{Users: users, PageLimit: pageLimit}
	d.gardens = NewSheetCache(d.loadGardens)
	d.buyers = NewSheetCache(d.loadBuyers)
	return d
}

func (d *Directory) Gardens(ctx context.Context) ([]domain.Garden, error) {
	return d.gardens.Get(ctx)
}

func (d *Directory) Buyers(ctx context.Context) ([]domain.Buyer, error) {
	return d.buyers.Get(ctx)
}

// Reset forgets both sheets so the next open refetches.
func (d *Directory) Reset() {
	d.gardens.Reset()
	d.buyers.Reset()
}

// SearchBuyers runs one search against the search endpoint. Queries shorter
// than two characters are rejected; an empty query returns the full list.
func (d *Directory) SearchBuyers(ctx context.Context, query string) ([]domain.Buyer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return d.Buyers(ctx)
	}
	if utf8.RuneCountInString(query) < minQueryLength {
		return nil, ErrQueryTooShort
	}
	page, err := d.Users.SearchUsers(ctx, backend.SearchQuery{
		Query:    query,
		UserType: string(domain.RoleBuyer),
		Limit:    d.limit(),
	})
	if err != nil {
		return nil, err
	}
	return dedupeBuyers(page.Users), nil
}

func (d *Directory) loadGardens(ctx context.Context) ([]domain.Garden, error) {
	users, err := CollectAll(ctx, d.userPages(string(domain.RoleSupplier)), d.limit(), userKey)
	if err != nil {
		return nil, err
	}
	return AggregateGardens(users), nil
}

func (d *Directory) loadBuyers(ctx context.Context) ([]domain.Buyer, error) {
	users, err := CollectAll(ctx, d.userPages(string(domain.RoleBuyer)), d.limit(), userKey)
	if err != nil {
		return nil, err
	}
	return dedupeBuyers(users), nil
}

func (d *Directory) userPages(role string) PageFunc[domain.User] {
	return func(ctx context.Context, page, limit int) ([]domain.User, *domain.Pagination, error) {
		res, err := d.Users.ListUsers(ctx, backend.UserQuery{Role: role, Page: page, Limit: limit})
		if err != nil {
			return nil, nil, err
		}
		return res.Users, res.Pagination, nil
	}
}

func (d *Directory) limit() int {
	if d.PageLimit > 0 {
		return d.PageLimit
	}
	return 50
}

func userKey(u domain.User) string { return u.ID }

func dedupeBuyers(users []domain.User) []domain.Buyer {
	seen := map[string]bool{}
	out := make([]domain.Buyer, 0, len(users))
	for _, u := range users {
		if u.ID == "" || seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		out = append(out, domain.BuyerFromUser(u))
	}
	return out
}
