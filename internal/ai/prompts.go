package ai

import (
	"fmt"
	"strings"

	"github.com/studypod/studypod/internal/content"
)

// Source text is clipped before prompting so a pasted textbook chapter does
// not blow the context window.
const maxPromptSourceRunes = 12000

const quizSystemPrompt = `You generate quizzes from study material. Respond with JSON only, no prose:
{"questions":[{"question_text":"...","type":"mcq","options":["..."],"correct_answer":"..."}]}
Allowed types are "mcq" and "short_answer". For mcq, correct_answer must be one of options. For short_answer, correct_answer must be a single short word or phrase.`

func quizUserPrompt(sourceText string, count int) string {
	return fmt.Sprintf("Create exactly %d questions from this material:\n\n%s", count, clip(sourceText))
}

const feedbackSystemPrompt = `You are an encouraging study coach. Given a quiz score, write two or three sentences of feedback: acknowledge the result, then suggest what to focus on next. Plain text only.`

func feedbackUserPrompt(score, total int, sourceText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The student scored %d out of %d.", score, total)
	if sourceText != "" {
		fmt.Fprintf(&b, "\n\nThe quiz covered this material:\n%s", clip(sourceText))
	}
	return b.String()
}

const metadataSystemPrompt = `Label study material. Respond with JSON only:
{"title":"...","subject":"...","topic":"...","difficulty":"Easy|Medium|Hard"}`

func metadataUserPrompt(text string) string {
	return "Material:\n\n" + clip(text)
}

func chatSystemPrompt(sourceText string) string {
	return "Answer the student's questions using only the following study material. If the material does not cover the question, say so.\n\nMaterial:\n" + clip(sourceText)
}

func chatUserPrompt(history []content.ChatMessage, question string) string {
	var b strings.Builder
	for _, m := range history {
		role := "Student"
		if m.Sender == "ai" {
			role = "Tutor"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, m.Text)
	}
	fmt.Fprintf(&b, "Student: %s", question)
	return b.String()
}

const summarySystemPrompt = `Summarize the study material in one tight paragraph. Plain text only.`

const explainSystemPrompt = `Explain the study material as if to a motivated beginner: define terms on first use and build up from simple ideas. Plain text.`

func notesSystemPrompt(level string) string {
	switch level {
	case content.NotesShort:
		return "Produce very short revision notes: at most five bullet points."
	case content.NotesDetailed:
		return "Produce detailed revision notes: cover every section of the material with nested bullet points."
	default:
		return "Produce revision notes: roughly ten bullet points covering the key ideas."
	}
}

const transcriptSystemPrompt = `You are given a YouTube URL. Reconstruct the lecture content of that video as study text. If you cannot, reply with the single word UNAVAILABLE.`

func clip(s string) string {
	r := []rune(s)
	if len(r) <= maxPromptSourceRunes {
		return s
	}
	return string(r[:maxPromptSourceRunes]) + "…"
}
