package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	tests := []struct {
		mode     string
		contains []string
	}{
		{mode: ModeLesson, contains: []string{"microlearning lesson", "bullet points", "under 200 words", "key concepts"}},
		{mode: ModeFlashcards, contains: []string{"5 flashcard Q&A pairs", "Q: [question]\nA: [answer]"}},
		{mode: ModeQuiz, contains: []string{"5 multiple-choice", "A) [option]", "D) [option]", "Correct: [letter]"}},
		{mode: ModeNotes, contains: []string{"Definition", "Key Points (3-5)", "Examples", "Summary"}},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			got := BuildPrompt("Photosynthesis", tt.mode)
			assert.Contains(t, got, "Photosynthesis")
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestBuildPrompt_Lesson(t *testing.T) {
	assert.Equal(t,
		"Create a concise microlearning lesson about: Photosynthesis. Use bullet points, keep it under 200 words, focus on key concepts.",
		BuildPrompt("Photosynthesis", "lesson"))
}

func TestBuildPrompt_Default(t *testing.T) {
	assert.Equal(t, "Explain: Black holes", BuildPrompt("Black holes", "podcast"))
	assert.Equal(t, "Explain: Black holes", BuildPrompt("Black holes", ""))
	// Mode matching is case-sensitive.
	assert.Equal(t, "Explain: Black holes", BuildPrompt("Black holes", "Lesson"))
}
