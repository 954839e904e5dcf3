package types

// SectionType classifies the structure of a content section as authored.
type SectionType string

// Original section types.
const (
	SectionBullets      SectionType = "bullets"
	SectionParagraph    SectionType = "paragraph"
	SectionNumberedList SectionType = "numberedList"
	SectionTable        SectionType = "table"
)

// VisualType is a suggested visual treatment for a section.
type VisualType string

// Suggested visual types.
const (
	VisualTimeline        VisualType = "timeline"
	VisualProcessFlow     VisualType = "processFlow"
	VisualComparisonTable VisualType = "comparisonTable"
	VisualIconGrid        VisualType = "iconGrid"
	VisualPyramid         VisualType = "pyramid"
	VisualCycle           VisualType = "cycle"
	VisualStatHighlight   VisualType = "statHighlight"
	VisualCardGrid        VisualType = "cardGrid"
)

// Transformation proposes a visual treatment for one content section.
type Transformation struct {
	SectionID     string      `json:"sectionId"`
	OriginalType  SectionType `json:"originalType"`
	SuggestedType VisualType  `json:"suggestedType"`
	Rationale     string      `json:"rationale,omitempty"`
	Preview       string      `json:"preview,omitempty"`
}

// SectionTypes lists the allowed originalType values, in schema order.
func SectionTypes() []string {
	return []string{
		string(SectionBullets),
		string(SectionParagraph),
		string(SectionNumberedList),
		string(SectionTable),
	}
}

// VisualTypes lists the allowed suggestedType values, in schema order.
func VisualTypes() []string {
	return []string{
		string(VisualTimeline),
		string(VisualProcessFlow),
		string(VisualComparisonTable),
		string(VisualIconGrid),
		string(VisualPyramid),
		string(VisualCycle),
		string(VisualStatHighlight),
		string(VisualCardGrid),
	}
}

// ValidSectionType reports whether t is one of the four section types.
func ValidSectionType(t SectionType) bool {
	switch t {
	case SectionBullets, SectionParagraph, SectionNumberedList, SectionTable:
		return true
	}
	return false
}

// ValidVisualType reports whether t is one of the eight visual types.
func ValidVisualType(t VisualType) bool {
	switch t {
	case VisualTimeline, VisualProcessFlow, VisualComparisonTable, VisualIconGrid,
		VisualPyramid, VisualCycle, VisualStatHighlight, VisualCardGrid:
		return true
	}
	return false
}
