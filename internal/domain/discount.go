package domain

const (
	DiscountBuyXGetY            DiscountType = "buyXGetY"
	DiscountAmountOffPercentage DiscountType = "amountOffPlantsPercentage"
	DiscountAmountOffFixed      DiscountType = "amountOffPlantsFixed"
	DiscountEventGift           DiscountType = "eventGift"
	DiscountEventGiftFixed      DiscountType = "eventGiftFixed"
	DiscountFreeShipping        DiscountType = "freeShipping"

	AppliesToListingType AppliesTo = "Specific listing type"
	AppliesToGenus       AppliesTo = "Specific genus"
	AppliesToSpecies     AppliesTo = "Specific specie"
	AppliesToCountry     AppliesTo = "Specific country"
	AppliesToGarden      AppliesTo = "Specific garden"
	AppliesToListing     AppliesTo = "Specific listing"

	EligibilityAll      Eligibility = "All customers"
	EligibilityVIP      Eligibility = "VIP customers"
	EligibilitySpecific Eligibility = "Specific customers"
)

type DiscountType string
type AppliesTo string
type Eligibility string

var discountTypes = map[DiscountType]bool{
	DiscountBuyXGetY:            true,
	DiscountAmountOffPercentage: true,
	DiscountAmountOffFixed:      true,
	DiscountEventGift:           true,
	DiscountEventGiftFixed:      true,
	DiscountFreeShipping:        true,
}

func (t DiscountType) Valid() bool { return discountTypes[t] }

// IsValueBased reports whether the type carries a percent or amount value.
func (t DiscountType) IsValueBased() bool {
	switch t {
	case DiscountAmountOffPercentage, DiscountAmountOffFixed, DiscountEventGift, DiscountEventGiftFixed:
		return true
	}
	return false
}

func (t DiscountType) IsFixed() bool {
	return t == DiscountAmountOffFixed || t == DiscountEventGiftFixed
}

func (t DiscountType) IsEventGift() bool {
	return t == DiscountEventGift || t == DiscountEventGiftFixed
}

// WithFixed switches a value-based type between its percentage and fixed variant.
func (t DiscountType) WithFixed(fixed bool) DiscountType {
	switch t {
	case DiscountAmountOffPercentage, DiscountAmountOffFixed:
		if fixed {
			return DiscountAmountOffFixed
		}
		return DiscountAmountOffPercentage
	case DiscountEventGift, DiscountEventGiftFixed:
		if fixed {
			return DiscountEventGiftFixed
		}
		return DiscountEventGift
	}
	return t
}

var appliesToValues = []AppliesTo{
	AppliesToListingType, AppliesToGenus, AppliesToSpecies, AppliesToCountry, AppliesToGarden, AppliesToListing,
}

// AllAppliesTo lists every scope in display order.
func AllAppliesTo() []AppliesTo {
	out := make([]AppliesTo, len(appliesToValues))
	copy(out, appliesToValues)
	return out
}

func (a AppliesTo) Valid() bool {
	for _, v := range appliesToValues {
		if v == a {
			return true
		}
	}
	return false
}

func (e Eligibility) Valid() bool {
	return e == EligibilityAll || e == EligibilityVIP || e == EligibilitySpecific
}

type GardenRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Discount is the wire shape exchanged with the discount Cloud Functions.
// Value fields are only set for the types that use them.
type Discount struct {
	ID               string       `json:"id,omitempty"`
	Code             string       `json:"code"`
	Type             DiscountType `json:"type"`
	BuyQuantity      *int         `json:"buyQuantity,omitempty"`
	GetQuantity      *int         `json:"getQuantity,omitempty"`
	DiscountPercent  *float64     `json:"discountPercent,omitempty"`
	DiscountAmount   *float64     `json:"discountAmount,omitempty"`
	MaxDiscount      *float64     `json:"maxDiscount,omitempty"`
	FreeUpsShipping  *bool        `json:"freeUpsShipping,omitempty"`
	FreeAirCargo     *bool        `json:"freeAirCargo,omitempty"`
	StartDate        string       `json:"startDate"`
	StartTime        string       `json:"startTime"`
	EndDate          string       `json:"endDate,omitempty"`
	EndTime          string       `json:"endTime,omitempty"`
	AppliesTo        AppliesTo    `json:"appliesTo,omitempty"`
	ListingTypes     []string     `json:"listingTypes,omitempty"`
	Genus            []string     `json:"genus,omitempty"`
	Species          []string     `json:"species,omitempty"`
	Countries        []string     `json:"countries,omitempty"`
	Gardens          []GardenRef  `json:"gardens,omitempty"`
	ListingIDs       []string     `json:"listingIds,omitempty"`
	Eligibility      Eligibility  `json:"eligibility,omitempty"`
	BuyerIDs         []string     `json:"buyerIds,omitempty"`
	MinRequirement   string       `json:"minRequirement,omitempty"`
	LimitTotal       bool         `json:"limitTotal"`
	MaxUsesTotal     *int         `json:"maxUsesTotal,omitempty"`
	LimitPerCustomer bool         `json:"limitPerCustomer"`
	Status           string       `json:"status,omitempty"`
	UsageCount       int          `json:"usageCount,omitempty"`
}
