// Package model defines the core domain models used throughout the application.
package model

import "strings"

// Category is one of the fixed business expense categories a transaction can
// be classified into.
type Category string

// The fixed category taxonomy. Label strings are stable: exported reports and
// stored analyses depend on them, so renaming a label is a breaking change.
const (
	CategoryOffice    Category = "Office costs"
	CategoryTravel    Category = "Travel costs"
	CategoryClothing  Category = "Clothing expenses"
	CategoryStaff     Category = "Staff costs"
	CategoryResale    Category = "Things you resell"
	CategoryLegal     Category = "Legal and financial costs"
	CategoryMarketing Category = "Marketing and entertainment"
	CategoryEquipment Category = "Equipment and software"
	CategoryOther     Category = "Other expenses"

	// CategoryUnknown is the sentinel for transactions no rule or model
	// call could place.
	CategoryUnknown Category = "Unknown"
)

// TaxonomyVersion identifies the category list surfaced to the model and the
// keyword matcher. Bump it whenever Categories or keyword rules change.
const TaxonomyVersion = 1

// CategoryInfo describes one taxonomy entry for prompt rendering.
type CategoryInfo struct {
	Name     Category
	Examples string
}

// Categories returns the taxonomy in its canonical order, excluding the
// Unknown sentinel.
func Categories() []CategoryInfo {
	return []CategoryInfo{
		{CategoryOffice, "stationery, postage, printing, office supplies, rent for business premises"},
		{CategoryTravel, "train tickets, fuel, parking, hotels, taxi fares, flights"},
		{CategoryClothing, "uniforms, protective clothing, costumes"},
		{CategoryStaff, "salaries, wages, pensions, subcontractor payments, recruitment"},
		{CategoryResale, "stock purchases, raw materials, goods bought for resale"},
		{CategoryLegal, "accountancy, legal fees, insurance, bank charges, loan interest"},
		{CategoryMarketing, "advertising, website costs, client entertainment, sponsorship"},
		{CategoryEquipment, "computers, software subscriptions, tools, machinery"},
		{CategoryOther, "anything allowable that fits no other category"},
	}
}

// Valid reports whether c is a known taxonomy label or the Unknown sentinel.
func (c Category) Valid() bool {
	switch c {
	case CategoryOffice, CategoryTravel, CategoryClothing, CategoryStaff,
		CategoryResale, CategoryLegal, CategoryMarketing, CategoryEquipment,
		CategoryOther, CategoryUnknown:
		return true
	}
	return false
}

// keywordRule maps description substrings to a category. Rules are evaluated
// in order and the first match wins, so more specific keywords must come
// before broader ones.
type keywordRule struct {
	category Category
	keywords []string
}

var keywordRules = []keywordRule{
	{CategoryOffice, []string{"office", "stationery", "paper", "printing", "postage", "supplies"}},
	{CategoryTravel, []string{"travel", "train", "rail", "taxi", "uber", "fuel", "petrol", "parking", "hotel", "flight", "airline"}},
	{CategoryClothing, []string{"clothing", "uniform", "workwear"}},
	{CategoryStaff, []string{"salary", "wages", "payroll", "pension", "staff", "recruit"}},
	{CategoryResale, []string{"stock", "wholesale", "inventory", "goods"}},
	{CategoryLegal, []string{"legal", "solicitor", "accountant", "insurance", "bank charge", "interest", "fee"}},
	{CategoryMarketing, []string{"marketing", "advert", "promotion", "entertainment", "website", "domain", "sponsor"}},
	{CategoryEquipment, []string{"software", "subscription", "computer", "laptop", "equipment", "hardware", "tools", "licence", "license"}},
}

// GuessCategory assigns a category from the description using the shared
// keyword table. Matching is case-insensitive substring; no match yields the
// Unknown sentinel.
func GuessCategory(description string) Category {
	desc := strings.ToLower(description)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(desc, kw) {
				return rule.category
			}
		}
	}
	return CategoryUnknown
}
