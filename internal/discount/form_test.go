package discount

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"uleaf-admin/internal/backend"
	"uleaf-admin/internal/domain"
)

type fakeAPI struct {
	mu       sync.Mutex
	creates  []domain.Discount
	updates  []domain.Discount
	deletes  int32
	stored   *domain.Discount
	err      error
	deleteCh chan struct{}
}

func (f *fakeAPI) CreateDiscount(_ context.Context, d domain.Discount) (*domain.Discount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, d)
	if f.err != nil {
		return nil, f.err
	}
	d.ID = "new-id"
	return &d, nil
}

func (f *fakeAPI) UpdateDiscount(_ context.Context, id string, d domain.Discount) (*domain.Discount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, d)
	if f.err != nil {
		return nil, f.err
	}
	d.ID = id
	return &d, nil
}

func (f *fakeAPI) GetDiscount(_ context.Context, id string) (*domain.Discount, error) {
	if f.stored == nil {
		return nil, &backend.APIError{Status: 404, Message: "Discount not found"}
	}
	d := *f.stored
	return &d, nil
}

func (f *fakeAPI) DeleteDiscount(context.Context, string) error {
	atomic.AddInt32(&f.deletes, 1)
	if f.deleteCh != nil {
		<-f.deleteCh
	}
	return f.err
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates) + len(f.updates)
}

func validForm(t *testing.T, typ domain.DiscountType) *Form {
	t.Helper()
	f, err := NewCreateForm(typ)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	f.Code = "spring25"
	f.BuyQuantity = "2"
	f.GetQuantity = "1"
	f.DiscountPercent = "10"
	f.DiscountAmount = "5"
	f.StartDate = "01/01/2025"
	f.StartTime = "09:00 AM"
	f.Selected.ListingTypes = []string{"Single Plant"}
	return f
}

func TestSubmitBlocksMissingTypeValues(t *testing.T) {
	cases := []struct {
		typ   domain.DiscountType
		clear func(f *Form)
		field string
	}{
		{domain.DiscountBuyXGetY, func(f *Form) { f.BuyQuantity = "" }, "buyQuantity"},
		{domain.DiscountBuyXGetY, func(f *Form) { f.GetQuantity = " " }, "getQuantity"},
		{domain.DiscountAmountOffPercentage, func(f *Form) { f.DiscountPercent = "" }, "discountPercent"},
		{domain.DiscountAmountOffFixed, func(f *Form) { f.DiscountAmount = "" }, "discountAmount"},
		{domain.DiscountEventGift, func(f *Form) { f.DiscountPercent = "0" }, "discountPercent"},
		{domain.DiscountEventGiftFixed, func(f *Form) { f.DiscountAmount = "abc" }, "discountAmount"},
	}
	for _, tc := range cases {
		t.Run(string(tc.typ)+"/"+tc.field, func(t *testing.T) {
			api := &fakeAPI{}
			f := validForm(t, tc.typ)
			tc.clear(f)

			_, err := f.Submit(context.Background(), api)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Field != tc.field {
				t.Fatalf("field = %q, want %q", vErr.Field, tc.field)
			}
			if api.calls() != 0 {
				t.Fatal("no network call expected")
			}
		})
	}
}

func TestSubmitBlocksEmptyAppliesToSelection(t *testing.T) {
	for _, applies := range domain.AllAppliesTo() {
		t.Run(string(applies), func(t *testing.T) {
			api := &fakeAPI{}
			f := validForm(t, domain.DiscountBuyXGetY)
			f.Selected = Selection{}
			f.AppliesText = applies

			_, err := f.Submit(context.Background(), api)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if api.calls() != 0 {
				t.Fatal("no network call expected")
			}
		})
	}
}

func TestSpecificCustomersNeedBuyers(t *testing.T) {
	api := &fakeAPI{}
	f := validForm(t, domain.DiscountBuyXGetY)
	f.Eligibility = domain.EligibilitySpecific

	_, err := f.Submit(context.Background(), api)
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "selectedBuyers" {
		t.Fatalf("expected selectedBuyers error, got %v", err)
	}

	f.SelectedBuyers = []domain.Buyer{{ID: "b1", Name: "Ana"}}
	out, err := f.Submit(context.Background(), api)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !out.Refresh || !out.Created {
		t.Fatalf("outcome = %+v", out)
	}
	if got := api.creates[0].BuyerIDs; len(got) != 1 || got[0] != "b1" {
		t.Fatalf("buyerIds = %v", got)
	}
}

func TestValidateChecksRunInOrder(t *testing.T) {
	f, _ := NewCreateForm(domain.DiscountBuyXGetY)
	f.AppliesText = domain.AppliesToGenus
	f.Eligibility = domain.EligibilitySpecific

	var vErr *ValidationError
	if err := f.Validate(); !errors.As(err, &vErr) || vErr.Field != "code" {
		t.Fatalf("first failure should be code, got %v", err)
	}
	f.Code = "X"
	if err := f.Validate(); !errors.As(err, &vErr) || vErr.Field != "buyQuantity" {
		t.Fatalf("second failure should be buyQuantity, got %v", err)
	}
	f.BuyQuantity, f.GetQuantity = "1", "1"
	if err := f.Validate(); !errors.As(err, &vErr) || vErr.Field != "startDate" {
		t.Fatalf("third failure should be startDate, got %v", err)
	}
	f.StartDate, f.StartTime = "02/01/2025", "10:30 am"
	if err := f.Validate(); !errors.As(err, &vErr) || vErr.Field != "selectedGenus" {
		t.Fatalf("fourth failure should be selectedGenus, got %v", err)
	}
	f.Selected.Genus = []string{"Monstera"}
	if err := f.Validate(); !errors.As(err, &vErr) || vErr.Field != "selectedBuyers" {
		t.Fatalf("fifth failure should be selectedBuyers, got %v", err)
	}
}

func TestValidateDatesAndLimits(t *testing.T) {
	f := validForm(t, domain.DiscountBuyXGetY)
	var vErr *ValidationError

	f.StartDate = "2025-01-01"
	if err := f.Validate(); !errors.As(err, &vErr) || vErr.Field != "startDate" {
		t.Fatalf("bad start date should fail, got %v", err)
	}
	f.StartDate = "01/10/2025"

	f.EndDateEnabled = true
	if err := f.Validate(); !errors.As(err, &vErr) || vErr.Field != "endDate" {
		t.Fatalf("missing end pair should fail, got %v", err)
	}
	f.EndDate, f.EndTime = "01/05/2025", "09:00 AM"
	if err := f.Validate(); !errors.As(err, &vErr) || vErr.Field != "endDate" {
		t.Fatalf("end before start should fail, got %v", err)
	}
	f.EndDate = "02/05/2025"

	f.MinRequirement = domain.MinLabelAmount
	if err := f.Validate(); !errors.As(err, &vErr) || vErr.Field != "minPurchaseAmount" {
		t.Fatalf("missing min amount should fail, got %v", err)
	}
	f.MinPurchaseAmount = "50"

	f.LimitTotal = true
	f.MaxUsesTotal = "0"
	if err := f.Validate(); !errors.As(err, &vErr) || vErr.Field != "maxUsesTotal" {
		t.Fatalf("zero max uses should fail, got %v", err)
	}
	f.MaxUsesTotal = "100"
	if err := f.Validate(); err != nil {
		t.Fatalf("form should be valid: %v", err)
	}
}

func TestBuyXGetYPayload(t *testing.T) {
	f, _ := NewCreateForm(domain.DiscountBuyXGetY)
	f.Code = "BUY2GET1"
	f.BuyQuantity = "2"
	f.GetQuantity = "1"
	f.StartDate = "01/01/2025"
	f.StartTime = "09:00 AM"
	f.AppliesText = domain.AppliesToListingType
	f.Selected.ListingTypes = []string{"Single Plant"}
	f.Selected.Genus = []string{"ignored"}
	f.DiscountPercent = "15"
	f.Eligibility = domain.EligibilityAll

	api := &fakeAPI{}
	if _, err := f.Submit(context.Background(), api); err != nil {
		t.Fatalf("submit: %v", err)
	}
	raw, err := json.Marshal(api.creates[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["type"] != "buyXGetY" || body["code"] != "BUY2GET1" {
		t.Fatalf("payload = %v", body)
	}
	for _, key := range []string{"discountPercent", "discountAmount", "maxDiscount", "genus", "buyerIds", "endDate"} {
		if _, ok := body[key]; ok {
			t.Errorf("payload should omit %s: %v", key, body[key])
		}
	}
	if lt, _ := body["listingTypes"].([]any); len(lt) != 1 || lt[0] != "Single Plant" {
		t.Fatalf("listingTypes = %v", body["listingTypes"])
	}
	if body["buyQuantity"] != float64(2) || body["getQuantity"] != float64(1) {
		t.Fatalf("quantities = %v / %v", body["buyQuantity"], body["getQuantity"])
	}
	if body["minRequirement"] != domain.MinLabelNone {
		t.Fatalf("minRequirement = %v", body["minRequirement"])
	}
}

func TestPercentagePayloadWithKindToggle(t *testing.T) {
	f := validForm(t, domain.DiscountAmountOffPercentage)
	f.MaxDiscount = "25"
	f.MinRequirement = domain.MinLabelAmount
	f.MinPurchaseAmount = "50"

	d := f.Payload()
	if d.Type != domain.DiscountAmountOffPercentage || d.DiscountPercent == nil || *d.DiscountPercent != 10 {
		t.Fatalf("percentage payload = %+v", d)
	}
	if d.DiscountAmount != nil || d.MaxDiscount == nil || *d.MaxDiscount != 25 {
		t.Fatalf("value fields = %+v", d)
	}
	if d.MinRequirement != "Minimum purchase amount of $50" {
		t.Fatalf("minRequirement = %q", d.MinRequirement)
	}

	f.DiscountKind = KindFixed
	d = f.Payload()
	if d.Type != domain.DiscountAmountOffFixed || d.DiscountAmount == nil || d.DiscountPercent != nil || d.MaxDiscount != nil {
		t.Fatalf("fixed payload = %+v", d)
	}
}

func TestLoadForEditRecoversFields(t *testing.T) {
	pct := 20.0
	maxUses := 5
	api := &fakeAPI{stored: &domain.Discount{
		Code:            "GIFT20",
		Type:            domain.DiscountEventGift,
		DiscountPercent: &pct,
		StartDate:       "03/01/2025",
		StartTime:       "08:00 AM",
		EndDate:         "03/31/2025",
		EndTime:         "11:59 PM",
		AppliesTo:       domain.AppliesToGarden,
		Gardens:         []domain.GardenRef{{ID: "green acres", Name: "Green Acres"}},
		Eligibility:     domain.EligibilitySpecific,
		BuyerIDs:        []string{"b1", "b2"},
		MinRequirement:  "Minimum purchase amount of $50",
		LimitTotal:      true,
		MaxUsesTotal:    &maxUses,
	}}

	f, err := LoadForEdit(context.Background(), api, "d-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.Mode != ModeEdit || f.ID != "d-1" {
		t.Fatalf("mode/id = %s/%s", f.Mode, f.ID)
	}
	if f.DiscountKind != KindPercentage || f.IsFixed {
		t.Fatalf("kind = %q fixed=%v", f.DiscountKind, f.IsFixed)
	}
	if f.MinRequirement != domain.MinLabelAmount || f.MinPurchaseAmount != "50" {
		t.Fatalf("min requirement = %q / %q", f.MinRequirement, f.MinPurchaseAmount)
	}
	if !f.EndDateEnabled || len(f.SelectedBuyers) != 2 || f.MaxUsesTotal != "5" {
		t.Fatalf("form = %+v", f)
	}

	out, err := f.Submit(context.Background(), api)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.Created || len(api.updates) != 1 || out.Discount.ID != "d-1" {
		t.Fatalf("expected update, got %+v", out)
	}
	if api.updates[0].MinRequirement != "Minimum purchase amount of $50" {
		t.Fatalf("minRequirement = %q", api.updates[0].MinRequirement)
	}
}

func TestLoadForEditPropagatesBackendError(t *testing.T) {
	_, err := LoadForEdit(context.Background(), &fakeAPI{}, "missing")
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Discount not found" {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestSubmitReturnsServerErrorVerbatim(t *testing.T) {
	api := &fakeAPI{err: &backend.APIError{Status: 400, Message: "Discount code already exists"}}
	f := validForm(t, domain.DiscountFreeShipping)
	f.FreeUpsShipping = true

	_, err := f.Submit(context.Background(), api)
	if err == nil || err.Error() != "Discount code already exists (status 400)" {
		t.Fatalf("unexpected error %v", err)
	}
	if d := api.creates[0]; d.FreeUpsShipping == nil || !*d.FreeUpsShipping || d.FreeAirCargo == nil || *d.FreeAirCargo {
		t.Fatalf("shipping flags = %+v", d)
	}
}
