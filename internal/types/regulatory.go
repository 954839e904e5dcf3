package types

// Authority identifies the regulator responsible for a regulation type in a
// jurisdiction.
type Authority struct {
	Name    string `json:"name"`
	Website string `json:"website,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// JurisdictionInfo is the result of a jurisdiction lookup.
type JurisdictionInfo struct {
	Location       string    `json:"location"`
	RegulationType string    `json:"regulationType"`
	Authority      Authority `json:"authority"`
}

// RegulatoryUpdate is one fact-checked change relevant to supplied content.
type RegulatoryUpdate struct {
	Area          string `json:"area"`
	Summary       string `json:"summary"`
	EffectiveDate string `json:"effectiveDate,omitempty"`
	Source        string `json:"source,omitempty"`
	Impact        string `json:"impact,omitempty"` // low, medium, high
}
