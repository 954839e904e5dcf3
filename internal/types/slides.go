package types

// Slide is one slide in a generated deck.
type Slide struct {
	Title        string   `json:"title"`
	Bullets      []string `json:"bullets,omitempty"`
	Body         string   `json:"body,omitempty"`
	SpeakerNotes string   `json:"speakerNotes,omitempty"`
	Layout       string   `json:"layout,omitempty"` // title, content, twoColumn, infographic
	ImagePrompt  string   `json:"imagePrompt,omitempty"`
}

// SlideDeck is the top-level result of slide generation.
type SlideDeck struct {
	Title  string  `json:"title"`
	Sector string  `json:"sector,omitempty"`
	Slides []Slide `json:"slides"`
}

// SlideReviewIssue flags a slide whose corrected content stayed too close to
// the flawed original during enhanced generation. Index refers into the
// generated deck.
type SlideReviewIssue struct {
	Index     int    `json:"index"`
	Reason    string `json:"reason"`
	Corrected *Slide `json:"corrected,omitempty"`
}

// SlideReview is the result of the fixed-depth self-correction pass over a
// first-pass deck.
type SlideReview struct {
	Issues []SlideReviewIssue `json:"issues"`
}

// StudyGuideSection is one section of a generated study guide.
type StudyGuideSection struct {
	Heading   string   `json:"heading"`
	KeyPoints []string `json:"keyPoints"`
	Summary   string   `json:"summary,omitempty"`
}

// StudyGuide accompanies a slide deck.
type StudyGuide struct {
	Title    string              `json:"title"`
	Sections []StudyGuideSection `json:"sections"`
}

// QuizQuestion is a single multiple-choice question.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answerIndex"`
	Explanation string   `json:"explanation,omitempty"`
}

// Quiz is a generated knowledge check for a deck or topic.
type Quiz struct {
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions"`
}

// CourseSummary condenses a course into an outline for downstream actions.
type CourseSummary struct {
	Title         string   `json:"title"`
	Overview      string   `json:"overview"`
	LearningGoals []string `json:"learningGoals"`
	Modules       []string `json:"modules"`
}
