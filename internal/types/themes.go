package types

// Theme is a presentation color/typography theme suggestion.
type Theme struct {
	Name            string `json:"name"`
	PrimaryColor    string `json:"primaryColor"`
	SecondaryColor  string `json:"secondaryColor"`
	AccentColor     string `json:"accentColor"`
	BackgroundColor string `json:"backgroundColor"`
	TextColor       string `json:"textColor"`
	HeadingFont     string `json:"headingFont"`
	BodyFont        string `json:"bodyFont"`
	Rationale       string `json:"rationale,omitempty"`
}

// FontPairing is a heading/body font suggestion.
type FontPairing struct {
	Name        string `json:"name"`
	HeadingFont string `json:"headingFont"`
	BodyFont    string `json:"bodyFont"`
	Rationale   string `json:"rationale,omitempty"`
}
