package types

// FindingCategory classifies an issue detected in course content.
type FindingCategory string

// Finding categories.
const (
	CategoryOutdated        FindingCategory = "outdated"
	CategoryInaccurate      FindingCategory = "inaccurate"
	CategoryIncomplete      FindingCategory = "incomplete"
	CategoryBrokenReference FindingCategory = "broken-reference"
)

// FindingSeverity grades how urgently a finding should be addressed.
type FindingSeverity string

// Finding severities.
const (
	SeverityLow    FindingSeverity = "low"
	SeverityMedium FindingSeverity = "medium"
	SeverityHigh   FindingSeverity = "high"
)

// Finding is an AI-identified issue in course content. Findings are produced
// by a scan call and round-tripped through the client: the browser sends the
// user-approved subset back to the generate call. Nothing is persisted
// server-side between the two calls.
type Finding struct {
	Category      FindingCategory `json:"category"`
	Severity      FindingSeverity `json:"severity"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	SourceSnippet string          `json:"sourceSnippet,omitempty"`
	CurrentInfo   string          `json:"currentInfo,omitempty"`
}

// ValidCategory reports whether c is one of the four finding categories.
func ValidCategory(c FindingCategory) bool {
	switch c {
	case CategoryOutdated, CategoryInaccurate, CategoryIncomplete, CategoryBrokenReference:
		return true
	}
	return false
}

// ValidSeverity reports whether s is one of the three severities.
func ValidSeverity(s FindingSeverity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// FindingCategories lists the allowed category values, in schema order.
func FindingCategories() []string {
	return []string{
		string(CategoryOutdated),
		string(CategoryInaccurate),
		string(CategoryIncomplete),
		string(CategoryBrokenReference),
	}
}

// FindingSeverities lists the allowed severity values, in schema order.
func FindingSeverities() []string {
	return []string{string(SeverityLow), string(SeverityMedium), string(SeverityHigh)}
}
