package directory

import (
	"sort"
	"strings"

	"uleaf-admin/internal/domain"
)

var quoteReplacer = strings.NewReplacer(
	"‘", "'", "’", "'", "‚", "'", "‛", "'", "′", "'",
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`, "″", `"`,
)

// NormalizeGardenKey folds the spellings sellers use for the same garden
// into one key.
func NormalizeGardenKey(name string) string {
	name = quoteReplacer.Replace(name)
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// AggregateGardens derives the garden list from supplier records. The first
// record of a garden fixes its display name and seller; the avatar is taken
// from the first record that has one.
func AggregateGardens(users []domain.User) []domain.Garden {
	byKey := map[string]*domain.Garden{}
	order := []string{}

	for _, u := range users {
		if u.Role != domain.RoleSupplier {
			continue
		}
		key := NormalizeGardenKey(u.GardenName)
		if key == "" {
			continue
		}
		g, ok := byKey[key]
		if !ok {
			g = &domain.Garden{
				ID:         key,
				Name:       strings.Join(strings.Fields(quoteReplacer.Replace(u.GardenName)), " "),
				SellerName: u.DisplayName(),
			}
			byKey[key] = g
			order = append(order, key)
		}
		if u.ID != "" {
			g.SellerIDs = append(g.SellerIDs, u.ID)
		}
	}

	// second pass: backfill the avatar in record order
	for _, u := range users {
		if u.Role != domain.RoleSupplier || u.Avatar == "" {
			continue
		}
		if g := byKey[NormalizeGardenKey(u.GardenName)]; g != nil && g.SellerAvatar == "" {
			g.SellerAvatar = u.Avatar
		}
	}

	out := make([]domain.Garden, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}
