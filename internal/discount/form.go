package discount

import (
	"context"
	"strconv"
	"strings"
	"time"

	"uleaf-admin/internal/backend"
	"uleaf-admin/internal/domain"
	"uleaf-admin/internal/ports"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Value kinds offered by the amount-off and event gift screens.
const (
	KindPercentage = "Percentage"
	KindFixed      = "Fixed amount"
)

const (
	dateLayout = "1/2/2006"
	timeLayout = "3:04 PM"
)

// ValidationError is the first failed check of a form. Nothing is sent to
// the backend when Validate returns one.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// Selection holds the picked values for each applies-to scope. Only the one
// matching the form's AppliesText is sent.
type Selection struct {
	ListingTypes []string           `json:"listingTypes"`
	Genus        []string           `json:"genus"`
	Species      []string           `json:"species"`
	Countries    []string           `json:"countries"`
	Gardens      []domain.GardenRef `json:"gardens"`
	Listings     []string           `json:"listings"`
}

// Form is the editable state of one discount. Numeric fields hold the text
// as entered and are parsed during validation.
type Form struct {
	Mode                Mode                `json:"mode"`
	ID                  string              `json:"id,omitempty"`
	Code                string              `json:"code"`
	Type                domain.DiscountType `json:"type"`
	DiscountKind        string              `json:"discountKind,omitempty"`
	IsFixed             bool                `json:"isFixed"`
	BuyQuantity         string              `json:"buyQuantity,omitempty"`
	GetQuantity         string              `json:"getQuantity,omitempty"`
	DiscountPercent     string              `json:"discountPercent,omitempty"`
	DiscountAmount      string              `json:"discountAmount,omitempty"`
	MaxDiscount         string              `json:"maxDiscount,omitempty"`
	FreeUpsShipping     bool                `json:"freeUpsShipping"`
	FreeAirCargo        bool                `json:"freeAirCargo"`
	StartDate           string              `json:"startDate"`
	StartTime           string              `json:"startTime"`
	EndDateEnabled      bool                `json:"endDateEnabled"`
	EndDate             string              `json:"endDate,omitempty"`
	EndTime             string              `json:"endTime,omitempty"`
	AppliesText         domain.AppliesTo    `json:"appliesText"`
	Selected            Selection           `json:"selected"`
	Eligibility         domain.Eligibility  `json:"eligibility"`
	SelectedBuyers      []domain.Buyer      `json:"selectedBuyers"`
	MinRequirement      string              `json:"minRequirement"`
	MinPurchaseAmount   string              `json:"minPurchaseAmount,omitempty"`
	MinPurchaseQuantity string              `json:"minPurchaseQuantity,omitempty"`
	LimitTotal          bool                `json:"limitTotal"`
	MaxUsesTotal        string              `json:"maxUsesTotal,omitempty"`
	LimitPerCustomer    bool                `json:"limitPerCustomer"`
	Status              string              `json:"status,omitempty"`
}

// Outcome is what a successful submit hands back to the list screen.
type Outcome struct {
	Discount *domain.Discount `json:"discount"`
	Refresh  bool             `json:"refresh"`
	Created  bool             `json:"created"`
}

// NewCreateForm starts an empty form for the given discount type.
func NewCreateForm(t domain.DiscountType) (*Form, error) {
	if !t.Valid() {
		return nil, invalid("type", "Unknown discount type")
	}
	f := &Form{
		Mode:           ModeCreate,
		Type:           t,
		AppliesText:    domain.AppliesToListingType,
		Eligibility:    domain.EligibilityAll,
		MinRequirement: domain.MinLabelNone,
	}
	f.setKindFromType()
	return f, nil
}

// LoadForEdit fetches the discount and fills a form from it.
func LoadForEdit(ctx context.Context, api ports.DiscountAPI, id string) (*Form, error) {
	if strings.TrimSpace(id) == "" {
		return nil, backend.ErrMissingID
	}
	d, err := api.GetDiscount(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.ID == "" {
		d.ID = id
	}
	return FromDiscount(*d), nil
}

// FromDiscount builds an edit form, decoding the stored minimum requirement
// back into its selector label and side value.
func FromDiscount(d domain.Discount) *Form {
	f := &Form{
		Mode:             ModeEdit,
		ID:               d.ID,
		Code:             d.Code,
		Type:             d.Type,
		BuyQuantity:      intText(d.BuyQuantity),
		GetQuantity:      intText(d.GetQuantity),
		DiscountPercent:  floatText(d.DiscountPercent),
		DiscountAmount:   floatText(d.DiscountAmount),
		MaxDiscount:      floatText(d.MaxDiscount),
		FreeUpsShipping:  d.FreeUpsShipping != nil && *d.FreeUpsShipping,
		FreeAirCargo:     d.FreeAirCargo != nil && *d.FreeAirCargo,
		StartDate:        d.StartDate,
		StartTime:        d.StartTime,
		EndDateEnabled:   d.EndDate != "" || d.EndTime != "",
		EndDate:          d.EndDate,
		EndTime:          d.EndTime,
		AppliesText:      d.AppliesTo,
		Eligibility:      d.Eligibility,
		LimitTotal:       d.LimitTotal,
		MaxUsesTotal:     intText(d.MaxUsesTotal),
		LimitPerCustomer: d.LimitPerCustomer,
		Status:           d.Status,
		Selected: Selection{
			ListingTypes: d.ListingTypes,
			Genus:        d.Genus,
			Species:      d.Species,
			Countries:    d.Countries,
			Gardens:      d.Gardens,
			Listings:     d.ListingIDs,
		},
	}
	if f.AppliesText == "" {
		f.AppliesText = domain.AppliesToListingType
	}
	if f.Eligibility == "" {
		f.Eligibility = domain.EligibilityAll
	}
	for _, id := range d.BuyerIDs {
		f.SelectedBuyers = append(f.SelectedBuyers, domain.Buyer{ID: id, Name: id})
	}

	req := domain.ParseMinRequirement(d.MinRequirement)
	f.MinRequirement = req.Label()
	f.MinPurchaseAmount = req.Amount
	f.MinPurchaseQuantity = req.Quantity

	f.setKindFromType()
	return f
}

func (f *Form) setKindFromType() {
	if !f.Type.IsValueBased() {
		f.DiscountKind = ""
		f.IsFixed = false
		return
	}
	f.IsFixed = f.Type.IsFixed()
	if f.IsFixed {
		f.DiscountKind = KindFixed
	} else {
		f.DiscountKind = KindPercentage
	}
}

// EffectiveType is the wire type after applying the percentage/fixed toggle.
func (f *Form) EffectiveType() domain.DiscountType {
	if !f.Type.IsValueBased() {
		return f.Type
	}
	fixed := f.IsFixed || f.Type.IsFixed()
	switch f.DiscountKind {
	case KindFixed:
		fixed = true
	case KindPercentage:
		fixed = false
	}
	return f.Type.WithFixed(fixed)
}

// Validate runs the submit checks in order and stops at the first failure.
func (f *Form) Validate() error {
	if strings.TrimSpace(f.Code) == "" {
		return invalid("code", "Please enter a discount code")
	}

	t := f.EffectiveType()
	if !t.Valid() {
		return invalid("type", "Unknown discount type")
	}
	switch {
	case t == domain.DiscountBuyXGetY:
		if _, ok := positiveInt(f.BuyQuantity); !ok {
			return invalid("buyQuantity", "Please enter how many plants the buyer must purchase")
		}
		if _, ok := positiveInt(f.GetQuantity); !ok {
			return invalid("getQuantity", "Please enter how many plants the buyer gets")
		}
	case t.IsFixed():
		if _, ok := positiveFloat(f.DiscountAmount); !ok {
			return invalid("discountAmount", "Please enter the discount amount")
		}
	case t.IsValueBased():
		if _, ok := positiveFloat(f.DiscountPercent); !ok {
			return invalid("discountPercent", "Please enter the discount percentage")
		}
		if strings.TrimSpace(f.MaxDiscount) != "" {
			if _, ok := positiveFloat(f.MaxDiscount); !ok {
				return invalid("maxDiscount", "Maximum discount must be a positive number")
			}
		}
	}

	if strings.TrimSpace(f.StartDate) == "" || strings.TrimSpace(f.StartTime) == "" {
		return invalid("startDate", "Please select a start date and time")
	}
	start, err := parseDateTime(f.StartDate, f.StartTime)
	if err != nil {
		return invalid("startDate", "Start date must be MM/DD/YYYY and time HH:MM AM/PM")
	}
	if f.EndDateEnabled {
		if strings.TrimSpace(f.EndDate) == "" || strings.TrimSpace(f.EndTime) == "" {
			return invalid("endDate", "Please select an end date and time")
		}
		end, err := parseDateTime(f.EndDate, f.EndTime)
		if err != nil {
			return invalid("endDate", "End date must be MM/DD/YYYY and time HH:MM AM/PM")
		}
		if end.Before(start) {
			return invalid("endDate", "End date cannot be before the start date")
		}
	}

	if !f.AppliesText.Valid() {
		return invalid("appliesText", "Please select what the discount applies to")
	}
	if f.selectionCount() == 0 {
		return invalid(appliesField(f.AppliesText), "Please select at least one "+appliesNoun(f.AppliesText))
	}

	if f.Eligibility != "" && !f.Eligibility.Valid() {
		return invalid("eligibility", "Unknown customer eligibility")
	}
	if f.Eligibility == domain.EligibilitySpecific && len(f.buyerIDs()) == 0 {
		return invalid("selectedBuyers", "Please select at least one customer")
	}

	switch f.minRequirement().Kind {
	case domain.MinAmountAtLeast:
		if _, ok := positiveFloat(f.MinPurchaseAmount); !ok {
			return invalid("minPurchaseAmount", "Please enter the minimum purchase amount")
		}
	case domain.MinQuantityAtLeast:
		if _, ok := positiveInt(f.MinPurchaseQuantity); !ok {
			return invalid("minPurchaseQuantity", "Please enter the minimum quantity of plants")
		}
	}

	if f.LimitTotal {
		if _, ok := positiveInt(f.MaxUsesTotal); !ok {
			return invalid("maxUsesTotal", "Please enter the maximum number of uses")
		}
	}
	return nil
}

// Payload assembles the discount sent to create/update. It assumes the form
// has passed Validate.
func (f *Form) Payload() domain.Discount {
	t := f.EffectiveType()
	d := domain.Discount{
		ID:               f.ID,
		Code:             strings.ToUpper(strings.TrimSpace(f.Code)),
		Type:             t,
		StartDate:        strings.TrimSpace(f.StartDate),
		StartTime:        strings.TrimSpace(f.StartTime),
		AppliesTo:        f.AppliesText,
		Eligibility:      f.Eligibility,
		MinRequirement:   f.minRequirement().Encode(),
		LimitTotal:       f.LimitTotal,
		LimitPerCustomer: f.LimitPerCustomer,
		Status:           f.Status,
	}
	if d.Eligibility == "" {
		d.Eligibility = domain.EligibilityAll
	}

	switch {
	case t == domain.DiscountBuyXGetY:
		buy, _ := positiveInt(f.BuyQuantity)
		get, _ := positiveInt(f.GetQuantity)
		d.BuyQuantity = &buy
		d.GetQuantity = &get
	case t == domain.DiscountFreeShipping:
		ups, air := f.FreeUpsShipping, f.FreeAirCargo
		d.FreeUpsShipping = &ups
		d.FreeAirCargo = &air
	case t.IsFixed():
		amount, _ := positiveFloat(f.DiscountAmount)
		d.DiscountAmount = &amount
	case t.IsValueBased():
		pct, _ := positiveFloat(f.DiscountPercent)
		d.DiscountPercent = &pct
		if capped, ok := positiveFloat(f.MaxDiscount); ok {
			d.MaxDiscount = &capped
		}
	}

	if f.EndDateEnabled {
		d.EndDate = strings.TrimSpace(f.EndDate)
		d.EndTime = strings.TrimSpace(f.EndTime)
	}

	switch f.AppliesText {
	case domain.AppliesToListingType:
		d.ListingTypes = f.Selected.ListingTypes
	case domain.AppliesToGenus:
		d.Genus = f.Selected.Genus
	case domain.AppliesToSpecies:
		d.Species = f.Selected.Species
	case domain.AppliesToCountry:
		d.Countries = f.Selected.Countries
	case domain.AppliesToGarden:
		d.Gardens = f.Selected.Gardens
	case domain.AppliesToListing:
		d.ListingIDs = f.Selected.Listings
	}

	if f.Eligibility == domain.EligibilitySpecific {
		d.BuyerIDs = f.buyerIDs()
	}
	if f.LimitTotal {
		n, _ := positiveInt(f.MaxUsesTotal)
		d.MaxUsesTotal = &n
	}
	return d
}

// Submit validates the form and creates or updates the discount. Backend
// errors are returned unchanged so their message reaches the admin as sent.
func (f *Form) Submit(ctx context.Context, api ports.DiscountAPI) (*Outcome, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	payload := f.Payload()

	if f.Mode == ModeEdit {
		if f.ID == "" {
			return nil, invalid("id", "Missing discount id")
		}
		saved, err := api.UpdateDiscount(ctx, f.ID, payload)
		if err != nil {
			return nil, err
		}
		return &Outcome{Discount: saved, Refresh: true}, nil
	}

	saved, err := api.CreateDiscount(ctx, payload)
	if err != nil {
		return nil, err
	}
	return &Outcome{Discount: saved, Refresh: true, Created: true}, nil
}

func (f *Form) minRequirement() domain.MinRequirement {
	return domain.MinRequirementFromLabel(f.MinRequirement, f.MinPurchaseAmount, f.MinPurchaseQuantity)
}

func (f *Form) selectionCount() int {
	switch f.AppliesText {
	case domain.AppliesToListingType:
		return countNonEmpty(f.Selected.ListingTypes)
	case domain.AppliesToGenus:
		return countNonEmpty(f.Selected.Genus)
	case domain.AppliesToSpecies:
		return countNonEmpty(f.Selected.Species)
	case domain.AppliesToCountry:
		return countNonEmpty(f.Selected.Countries)
	case domain.AppliesToGarden:
		return len(f.Selected.Gardens)
	case domain.AppliesToListing:
		return countNonEmpty(f.Selected.Listings)
	}
	return 0
}

func (f *Form) buyerIDs() []string {
	ids := make([]string, 0, len(f.SelectedBuyers))
	for _, b := range f.SelectedBuyers {
		if id := strings.TrimSpace(b.ID); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func appliesField(a domain.AppliesTo) string {
	switch a {
	case domain.AppliesToListingType:
		return "selectedListingTypes"
	case domain.AppliesToGenus:
		return "selectedGenus"
	case domain.AppliesToSpecies:
		return "selectedSpecies"
	case domain.AppliesToCountry:
		return "selectedCountries"
	case domain.AppliesToGarden:
		return "selectedGardens"
	}
	return "selectedListings"
}

func appliesNoun(a domain.AppliesTo) string {
	switch a {
	case domain.AppliesToListingType:
		return "listing type"
	case domain.AppliesToGenus:
		return "genus"
	case domain.AppliesToSpecies:
		return "species"
	case domain.AppliesToCountry:
		return "country"
	case domain.AppliesToGarden:
		return "garden"
	}
	return "listing"
}

func parseDateTime(date, clock string) (time.Time, error) {
	return time.Parse(dateLayout+" "+timeLayout, strings.TrimSpace(date)+" "+strings.ToUpper(strings.TrimSpace(clock)))
}

func positiveInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func positiveFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func countNonEmpty(values []string) int {
	n := 0
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

func intText(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatText(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
