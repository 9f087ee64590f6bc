package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"uleaf-admin/internal/config"
	"uleaf-admin/internal/domain"
)

// referenceKinds are the dropdown functions a selector sheet can load.
var referenceKinds = map[string]bool{
	config.EndpointGetPlantsDropdown:      true,
	config.EndpointGetAllPlantGenus:       true,
	config.EndpointGetPlantCareTags:       true,
	config.EndpointGetPlantTypes:          true,
	config.EndpointGetPlantGrowthForms:    true,
	config.EndpointGetRegionsDropdown:     true,
	config.EndpointGetDeliveryOptions:     true,
	config.EndpointGetCountry:             true,
	config.EndpointGetListingType:         true,
	config.EndpointGetShippingIndex:       true,
	config.EndpointGetAcclimationIndex:    true,
	config.EndpointGetSpeciesFromListings: true,
}

// IsReferenceKind reports whether kind names a dropdown function.
func IsReferenceKind(kind string) bool { return referenceKinds[kind] }

// Reference loads one dropdown list. filter is only sent to
// getSpeciesFromListings, as the genus to narrow species by.
func (c *Client) Reference(ctx context.Context, kind, filter string) ([]domain.ReferenceItem, error) {
	if !referenceKinds[kind] {
		return nil, fmt.Errorf("unknown reference kind %q", kind)
	}
	var q url.Values
	if kind == config.EndpointGetSpeciesFromListings && filter != "" {
		q = url.Values{"genus": {filter}}
	}
	env, err := c.do(ctx, request{method: http.MethodGet, endpoint: kind, query: q})
	if err != nil {
		return nil, err
	}
	records, err := env.list(referenceKey(kind))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	if records == nil {
		// some dropdowns nest the only array under an arbitrary key
		records, err = firstArray(env)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", kind, err)
		}
	}
	items := make([]domain.ReferenceItem, 0, len(records))
	for _, m := range records {
		item := domain.ReferenceItem{
			ID:   stringField(m, "id", "_id", "value", "key", "name"),
			Name: stringField(m, "name", "label", "title", "genus_name", "genusName", "species", "value", "id"),
		}
		extra := map[string]any{}
		for k, v := range m {
			switch k {
			case "id", "_id", "name", "label", "title":
				continue
			}
			extra[k] = v
		}
		if len(extra) > 0 {
			item.Extra = extra
		}
		items = append(items, item)
	}
	return items, nil
}

func referenceKey(kind string) string {
	switch kind {
	case config.EndpointGetAllPlantGenus:
		return "genus"
	case config.EndpointGetCountry:
		return "countries"
	case config.EndpointGetListingType:
		return "listingTypes"
	case config.EndpointGetSpeciesFromListings:
		return "species"
	case config.EndpointGetRegionsDropdown:
		return "regions"
	}
	return "items"
}

func firstArray(env *envelope) ([]map[string]any, error) {
	obj := asObject(env.Data)
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		sub := &envelope{Data: obj[key]}
		records, err := sub.list(key)
		if err != nil {
			return nil, err
		}
		if records != nil {
			return records, nil
		}
	}
	return nil, nil
}
