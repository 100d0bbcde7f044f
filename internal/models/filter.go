package models

import "strings"

// ProductFilter narrows a product listing. Every field is optional and all
// supplied fields must match.
type ProductFilter struct {
	Category Category
	Pricing  []PricingTier
	Search   string
	SellerID string

	// IncludeDrafts lifts the published-only restriction. Only owner
	// dashboards set it, always together with SellerID.
	IncludeDrafts bool

	Limit  int
	Offset int
}

// SearchTerm returns the trimmed free-text query. An empty term disables
// text matching.
func (f ProductFilter) SearchTerm() string {
	return strings.TrimSpace(f.Search)
}

// Matches reports whether p satisfies every predicate of the filter.
func (f ProductFilter) Matches(p *Product) bool {
	if !f.IncludeDrafts && !p.IsPublished {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if len(f.Pricing) > 0 && !containsTier(f.Pricing, p.Pricing) {
		return false
	}
	if f.SellerID != "" && p.SellerID != f.SellerID {
		return false
	}
	if term := f.SearchTerm(); term != "" {
		term = strings.ToLower(term)
		if !strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Tagline), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			return false
		}
	}
	return true
}

func containsTier(tiers []PricingTier, t PricingTier) bool {
	for _, candidate := range tiers {
		if candidate == t {
			return true
		}
	}
	return false
}
