package model

// AntiCheatConfig holds the per-assignment randomization switches. Time limits
// and lockdown flags live on the Assignment itself; only the shuffle switches
// influence layout generation.
type AntiCheatConfig struct {
	ShuffleQuestions bool `json:"shuffle_questions"`
	ShuffleOptions   bool `json:"shuffle_options"`
}

// PresentedOption wraps an Option as shown to one student. CanonicalLabel is
// the authoring-time letter used for grading; PresentedLabel is reassigned
// sequentially (A, B, C, ...) in presentation order.
type PresentedOption struct {
	Option
	CanonicalLabel string `json:"canonical_label"`
	PresentedLabel string `json:"presented_label"`
}

// PresentedQuestion wraps a Question at its position in the presented layout.
// OriginalIndex is the question's position in authoring order.
type PresentedQuestion struct {
	Question
	OriginalIndex int               `json:"original_index"`
	Presented     []PresentedOption `json:"presented_options"`
}
