package directory

import (
	"context"
	"fmt"

	"uleaf-admin/internal/domain"
)

// maxPages bounds a walk over a backend that ignores the page parameter.
const maxPages = 500

// PageFunc fetches one 1-based page.
type PageFunc[T any] func(ctx context.Context, page, limit int) ([]T, *domain.Pagination, error)

// CollectAll walks pages in order until pagination says there are no more,
// or, when the backend sends no pagination, until a short page. Items are
// deduplicated by key, keeping the first occurrence.
func CollectAll[T any](ctx context.Context, fetch PageFunc[T], limit int, key func(T) string) ([]T, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []T
	seen := map[string]bool{}

	for page := 1; page <= maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		items, p, err := fetch(ctx, page, limit)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}
		added := 0
		for _, it := range items {
			k := key(it)
			if k != "" {
				if seen[k] {
					continue
				}
				seen[k] = true
			}
			out = append(out, it)
			added++
		}

		if p != nil && p.TotalPages > 0 {
			if page >= p.TotalPages {
				break
			}
			continue
		}
		if p != nil && !p.HasMore && p.Page > 0 {
			break
		}
		if len(items) < limit || added == 0 {
			break
		}
	}
	return out, nil
}
