package grading

import "strings"

// Normalize trims surrounding whitespace and casefolds. Nothing else:
// punctuation inside the answer is significant, so "paris," never matches
// "Paris".
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Match reports whether a user answer equals the correct answer after
// normalization. Exact equality is the sole rule; no partial credit.
func Match(userAnswer, correctAnswer string) bool {
	return Normalize(userAnswer) == Normalize(correctAnswer)
}
