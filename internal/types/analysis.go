package types

// CourseAnalysis scores course content for freshness and engagement.
// Scores are 0-100.
type CourseAnalysis struct {
	FreshnessScore   int      `json:"freshnessScore"`
	EngagementScore  int      `json:"engagementScore"`
	FreshnessIssues  []string `json:"freshnessIssues"`
	EngagementIssues []string `json:"engagementIssues"`
	Summary          string   `json:"summary"`
}

// Usage reports model token consumption for a request. Attached to
// responses as `_usage` so clients can surface cost.
type Usage struct {
	Model       string `json:"model"`
	TotalTokens int    `json:"totalTokens"`
}
