package domain

import (
	"fmt"
	"strings"
)

// Variant tags the kind of catalogue item. The loan rules hang off it.
type Variant uint8

const (
	VariantRegular Variant = iota
	VariantReference
	VariantFiction
)

var variantNames = map[Variant]string{
	VariantRegular:   "regular",
	VariantReference: "reference",
	VariantFiction:   "fiction",
}

func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return fmt.Sprintf("variant(%d)", uint8(v))
}

// ParseVariant converts a discriminator tag back to a Variant.
func ParseVariant(s string) (Variant, error) {
	for v, name := range variantNames {
		if strings.EqualFold(name, s) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown book type %q", s)
}

// LoanPolicy describes how long a book may leave the building and how
// often the loan may be renewed.
type LoanPolicy struct {
	Variant        Variant
	LoanPeriodDays int
	MaxRenewals    int
}

// CanBeExtended reports whether at least one renewal is allowed.
func (p LoanPolicy) CanBeExtended() bool {
	return p.MaxRenewals > 0
}

func (p LoanPolicy) String() string {
	if p.CanBeExtended() {
		return fmt.Sprintf("%d days, up to %d renewal(s)", p.LoanPeriodDays, p.MaxRenewals)
	}
	return fmt.Sprintf("%d days, no renewal", p.LoanPeriodDays)
}

var policies = map[Variant]LoanPolicy{
	VariantRegular:   {Variant: VariantRegular, LoanPeriodDays: 14, MaxRenewals: 1},
	VariantReference: {Variant: VariantReference, LoanPeriodDays: 7, MaxRenewals: 0},
	VariantFiction:   {Variant: VariantFiction, LoanPeriodDays: 21, MaxRenewals: 2},
}

// PolicyFor returns the loan policy of a variant. Unknown variants get the
// regular policy.
func PolicyFor(v Variant) LoanPolicy {
	if p, ok := policies[v]; ok {
		return p
	}
	return policies[VariantRegular]
}

// ReferenceKind is the sub-type of a reference book.
type ReferenceKind string

const (
	KindEncyclopedia ReferenceKind = "encyclopedia"
	KindDictionary   ReferenceKind = "dictionary"
	KindAtlas        ReferenceKind = "atlas"
	KindHandbook     ReferenceKind = "handbook"
)

// LibraryUseOnly reports whether books of this kind may not be taken home.
func (k ReferenceKind) LibraryUseOnly() bool {
	switch ReferenceKind(strings.ToLower(string(k))) {
	case KindEncyclopedia, KindDictionary:
		return true
	}
	return false
}
