package core

// Learning modes understood by BuildPrompt. Anything else gets a plain explanation.
const (
	ModeLesson     = "lesson"
	ModeFlashcards = "flashcards"
	ModeQuiz       = "quiz"
	ModeNotes      = "notes"
)

// BuildPrompt turns a topic and mode into the text sent to the model.
func BuildPrompt(topic, mode string) string {
	switch mode {
	case ModeLesson:
		return "Create a concise microlearning lesson about: " + topic +
			". Use bullet points, keep it under 200 words, focus on key concepts."
	case ModeFlashcards:
		return "Generate 5 flashcard Q&A pairs about: " + topic +
			". Format: Q: [question]\nA: [answer]\n\n for each card."
	case ModeQuiz:
		return "Create 5 multiple-choice quiz questions about: " + topic +
			". Format each as:\nQ: [question]\nA) [option]\nB) [option]\nC) [option]\nD) [option]\nCorrect: [letter]\n\n"
	case ModeNotes:
		return "Generate structured study notes about: " + topic +
			". Include: Definition, Key Points (3-5), Examples, Summary. Keep concise."
	default:
		return "Explain: " + topic
	}
}
