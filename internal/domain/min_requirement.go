package domain

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	MinNone MinRequirementKind = iota
	MinAmountAtLeast
	MinQuantityAtLeast
)

// Form labels for the minimum purchase selector.
const (
	MinLabelNone     = "No minimum requirements"
	MinLabelAmount   = "Minimum purchase amount ($)"
	MinLabelQuantity = "Minimum quantity of plants"
)

type MinRequirementKind int

// MinRequirement is the structured form of the discount's minimum purchase
// rule. The backend stores it as prose, so Encode/ParseMinRequirement are the
// only places that know the sentence shapes.
type MinRequirement struct {
	Kind     MinRequirementKind
	Amount   string
	Quantity string
}

var (
	minAmountRe   = regexp.MustCompile(`(?i)minimum purchase amount(?: of)?\s*\(?\$?\)?\s*\$?\s*([0-9]+(?:\.[0-9]+)?)`)
	minQuantityRe = regexp.MustCompile(`(?i)minimum quantity(?: of)?\s*([0-9]+)`)
)

// Label is the selector text shown for the requirement kind.
func (m MinRequirement) Label() string {
	switch m.Kind {
	case MinAmountAtLeast:
		return MinLabelAmount
	case MinQuantityAtLeast:
		return MinLabelQuantity
	}
	return MinLabelNone
}

// Encode renders the requirement the way the backend stores it.
func (m MinRequirement) Encode() string {
	switch m.Kind {
	case MinAmountAtLeast:
		return fmt.Sprintf("Minimum purchase amount of $%s", strings.TrimSpace(m.Amount))
	case MinQuantityAtLeast:
		return fmt.Sprintf("Minimum quantity of %s plants", strings.TrimSpace(m.Quantity))
	}
	return MinLabelNone
}

// MinRequirementFromLabel builds the variant from a selector label and the
// matching side value. Unknown labels mean no minimum.
func MinRequirementFromLabel(label, amount, quantity string) MinRequirement {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case strings.HasPrefix(l, "minimum purchase amount"):
		return MinRequirement{Kind: MinAmountAtLeast, Amount: strings.TrimSpace(amount)}
	case strings.HasPrefix(l, "minimum quantity"):
		return MinRequirement{Kind: MinQuantityAtLeast, Quantity: strings.TrimSpace(quantity)}
	}
	return MinRequirement{Kind: MinNone}
}

// ParseMinRequirement recovers the variant from the stored sentence.
// A selector label without a number still yields the right kind.
func ParseMinRequirement(s string) MinRequirement {
	s = strings.TrimSpace(s)
	if s == "" {
		return MinRequirement{Kind: MinNone}
	}
	if m := minAmountRe.FindStringSubmatch(s); m != nil {
		return MinRequirement{Kind: MinAmountAtLeast, Amount: m[1]}
	}
	if m := minQuantityRe.FindStringSubmatch(s); m != nil {
		return MinRequirement{Kind: MinQuantityAtLeast, Quantity: m[1]}
	}
	return MinRequirementFromLabel(s, "", "")
}
