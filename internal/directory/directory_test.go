package directory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"uleaf-admin/internal/backend"
	"uleaf-admin/internal/domain"
)

type fakeUsers struct {
	mu       sync.Mutex
	pages    map[string][]backend.UserPage
	listed   []backend.UserQuery
	searched []backend.SearchQuery
}

func (f *fakeUsers) ListUsers(_ context.Context, q backend.UserQuery) (*backend.UserPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed = append(f.listed, q)
	pages := f.pages[q.Role]
	if q.Page < 1 || q.Page > len(pages) {
		return &backend.UserPage{}, nil
	}
	p := pages[q.Page-1]
	return &p, nil
}

func (f *fakeUsers) SearchUsers(_ context.Context, q backend.SearchQuery) (*backend.UserPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searched = append(f.searched, q)
	return &backend.UserPage{Users: []domain.User{
		{ID: "b1", FirstName: "Ana", Role: domain.RoleBuyer},
		{ID: "b1", FirstName: "Ana", Role: domain.RoleBuyer},
	}}, nil
}

func TestNormalizeGardenKey(t *testing.T) {
	cases := map[string]string{
		"  Green   Acres ": "green acres",
		"Mama’s Garden":    "mama's garden",
		"“Leafy”\tPlace":   `"leafy" place`,
		"":                 "",
	}
	for in, want := range cases {
		if got := NormalizeGardenKey(in); got != want {
			t.Errorf("NormalizeGardenKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAggregateGardensCollapsesVariants(t *testing.T) {
	users := []domain.User{
		{ID: "s1", Role: domain.RoleSupplier, FirstName: "Lia", GardenName: "Green Acres"},
		{ID: "b9", Role: domain.RoleBuyer, GardenName: "Buyer Garden", Avatar: "x.png"},
		{ID: "s2", Role: domain.RoleSupplier, FirstName: "Rey", GardenName: "green   acres", Avatar: "rey.png"},
		{ID: "s3", Role: domain.RoleSupplier, FirstName: "Kai", GardenName: "GREEN ACRES", Avatar: "kai.png"},
		{ID: "s4", Role: domain.RoleSupplier, FirstName: "Bo", GardenName: "Aroid House"},
		{ID: "s5", Role: domain.RoleSupplier, FirstName: "No", GardenName: "   "},
	}

	gardens := AggregateGardens(users)
	if len(gardens) != 2 {
		t.Fatalf("gardens = %+v", gardens)
	}
	if gardens[0].Name != "Aroid House" {
		t.Fatalf("gardens not sorted: %+v", gardens)
	}
	g := gardens[1]
	if g.ID != "green acres" || g.Name != "Green Acres" || g.SellerName != "Lia" {
		t.Fatalf("garden = %+v", g)
	}
	if g.SellerAvatar != "rey.png" {
		t.Fatalf("avatar = %q, want first available", g.SellerAvatar)
	}
	if len(g.SellerIDs) != 3 {
		t.Fatalf("sellerIds = %v", g.SellerIDs)
	}
}

func TestCollectAllStopsAtTotalPagesAndDedupes(t *testing.T) {
	pages := [][]string{{"a", "b"}, {"b", "c"}, {"d"}}
	calls := 0
	fetch := func(_ context.Context, page, limit int) ([]string, *domain.Pagination, error) {
		calls++
		return pages[page-1], &domain.Pagination{Page: page, Limit: limit, TotalPages: 2}, nil
	}

	got, err := CollectAll(context.Background(), fetch, 2, func(s string) string { return s })
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if fmt.Sprint(got) != "[a b c]" || calls != 2 {
		t.Fatalf("got %v after %d calls", got, calls)
	}
}

func TestCollectAllStopsOnShortPageWithoutPagination(t *testing.T) {
	pages := [][]string{{"a", "b", "c"}, {"c", "d", "e"}, {"f"}, {"g"}}
	calls := 0
	fetch := func(_ context.Context, page, limit int) ([]string, *domain.Pagination, error) {
		calls++
		return pages[page-1], nil, nil
	}

	got, err := CollectAll(context.Background(), fetch, 3, func(s string) string { return s })
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if fmt.Sprint(got) != "[a b c d e f]" || calls != 3 {
		t.Fatalf("got %v after %d calls", got, calls)
	}
}

func TestCollectAllWrapsPageError(t *testing.T) {
	boom := errors.New("boom")
	fetch := func(_ context.Context, page, limit int) ([]string, *domain.Pagination, error) {
		if page == 2 {
			return nil, nil, boom
		}
		return []string{"a", "b"}, nil, nil
	}
	if _, err := CollectAll(context.Background(), fetch, 2, func(s string) string { return s }); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestDirectoryCachesUntilReset(t *testing.T) {
	users := &fakeUsers{pages: map[string][]backend.UserPage{
		"buyer": {
			{Users: []domain.User{{ID: "b1", FirstName: "Ana"}, {ID: "b2", Username: "rio"}}, Pagination: &domain.Pagination{Page: 1, TotalPages: 2}},
			{Users: []domain.User{{ID: "b2", Username: "rio"}, {ID: "b3", Email: "z@x.io"}}, Pagination: &domain.Pagination{Page: 2, TotalPages: 2}},
		},
	}}
	d := New(users, 2)

	buyers, err := d.Buyers(context.Background())
	if err != nil {
		t.Fatalf("buyers: %v", err)
	}
	if len(buyers) != 3 || buyers[1].Name != "rio" || buyers[2].Name != "z@x.io" {
		t.Fatalf("buyers = %+v", buyers)
	}
	if _, err := d.Buyers(context.Background()); err != nil {
		t.Fatalf("buyers again: %v", err)
	}
	if len(users.listed) != 2 {
		t.Fatalf("expected cached second load, listed %d pages", len(users.listed))
	}

	d.Reset()
	if _, err := d.Buyers(context.Background()); err != nil {
		t.Fatalf("buyers after reset: %v", err)
	}
	if len(users.listed) != 4 {
		t.Fatalf("reset should reload, listed %d pages", len(users.listed))
	}
}

func TestDirectorySearchBuyers(t *testing.T) {
	users := &fakeUsers{}
	d := New(users, 10)

	if _, err := d.SearchBuyers(context.Background(), "a"); !errors.Is(err, ErrQueryTooShort) {
		t.Fatalf("expected ErrQueryTooShort, got %v", err)
	}
	buyers, err := d.SearchBuyers(context.Background(), " an ")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(buyers) != 1 || buyers[0].ID != "b1" {
		t.Fatalf("buyers = %+v", buyers)
	}
	if q := users.searched[0]; q.Query != "an" || q.UserType != "buyer" || q.Limit != 10 {
		t.Fatalf("search query = %+v", q)
	}
}
