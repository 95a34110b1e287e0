// Package exceptions classifies records that survived every matching
// stage, explaining why they are unmatched rather than trying to match
// them. It assigns a category from a fixed taxonomy, analyzes aging and
// description patterns across the exception set, and emits resolution
// suggestions.
package exceptions

import "regexp"

// Category is an exception classification.
type Category string

const (
	CategoryTiming      Category = "timing_differences"
	CategoryAmount      Category = "amount_differences"
	CategoryMissing     Category = "missing_transactions"
	CategoryDuplicate   Category = "duplicate_transactions"
	CategorySystem      Category = "system_specific"
	CategoryDataQuality Category = "data_quality_issues"
	CategoryUnknown     Category = "unknown"
)

// Priority ranks how urgently an exception or suggestion needs review.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Info is the static metadata attached to every category.
type Info struct {
	Category           Category
	Description        string
	ResolutionPriority Priority
	AutoResolvable     bool
}

// rule pairs a compiled description predicate with the category it
// assigns. Rules are evaluated in declaration order; the first hit wins.
type rule struct {
	pattern  *regexp.Regexp
	category Category
}

// rules is the ordered classification table. Patterns run against the
// normalized (lower-cased) description, so they are written lower-case.
var rules = []rule{
	{regexp.MustCompile(`pending`), CategoryTiming},
	{regexp.MustCompile(`processing`), CategoryTiming},
	{regexp.MustCompile(`clearing`), CategoryTiming},
	{regexp.MustCompile(`fee`), CategoryAmount},
	{regexp.MustCompile(`charge`), CategoryAmount},
	{regexp.MustCompile(`adjustment`), CategoryAmount},
	{regexp.MustCompile(`correction`), CategoryAmount},
	{regexp.MustCompile(`transfer`), CategoryMissing},
	{regexp.MustCompile(`internal`), CategoryMissing},
	{regexp.MustCompile(`journal`), CategoryMissing},
	{regexp.MustCompile(`duplicate`), CategoryDuplicate},
	{regexp.MustCompile(`reversal`), CategoryDuplicate},
	{regexp.MustCompile(`void`), CategoryDuplicate},
	{regexp.MustCompile(`accrual`), CategorySystem},
	{regexp.MustCompile(`provision`), CategorySystem},
	{regexp.MustCompile(`allocation`), CategorySystem},
	{regexp.MustCompile(`invalid`), CategoryDataQuality},
	{regexp.MustCompile(`error`), CategoryDataQuality},
	{regexp.MustCompile(`missing`), CategoryDataQuality},
}

var catalog = map[Category]Info{
	CategoryTiming: {
		Category:           CategoryTiming,
		Description:        "Transactions with timing mismatches",
		ResolutionPriority: PriorityLow,
		AutoResolvable:     true,
	},
	CategoryAmount: {
		Category:           CategoryAmount,
		Description:        "Transactions with amount discrepancies",
		ResolutionPriority: PriorityHigh,
		AutoResolvable:     false,
	},
	CategoryMissing: {
		Category:           CategoryMissing,
		Description:        "Transactions present in one system but not the other",
		ResolutionPriority: PriorityMedium,
		AutoResolvable:     false,
	},
	CategoryDuplicate: {
		Category:           CategoryDuplicate,
		Description:        "Potential duplicate entries",
		ResolutionPriority: PriorityMedium,
		AutoResolvable:     true,
	},
	CategorySystem: {
		Category:           CategorySystem,
		Description:        "System-specific entries not expected to match",
		ResolutionPriority: PriorityLow,
		AutoResolvable:     true,
	},
	CategoryDataQuality: {
		Category:           CategoryDataQuality,
		Description:        "Records with data quality problems",
		ResolutionPriority: PriorityHigh,
		AutoResolvable:     false,
	},
	CategoryUnknown: {
		Category:           CategoryUnknown,
		Description:        "Unclassified exceptions requiring manual review",
		ResolutionPriority: PriorityMedium,
		AutoResolvable:     false,
	},
}

// CategoryInfo returns the static metadata for a category. Unrecognized
// categories report as unknown.
func CategoryInfo(c Category) Info {
	if info, ok := catalog[c]; ok {
		return info
	}
	return catalog[CategoryUnknown]
}

// Categories lists the taxonomy in classification order.
func Categories() []Category {
	return []Category{
		CategoryTiming,
		CategoryAmount,
		CategoryMissing,
		CategoryDuplicate,
		CategorySystem,
		CategoryDataQuality,
		CategoryUnknown,
	}
}
