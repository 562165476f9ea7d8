package quiz

import "errors"

var (
	// ErrNoSourceText means the material has no extracted text to quiz on.
	ErrNoSourceText = errors.New("material has no extracted text")
	// ErrNoQuestions means the gateway returned an empty question set.
	ErrNoQuestions = errors.New("generator returned no questions")
	// ErrSessionNotFound means the session id is unknown to the registry.
	ErrSessionNotFound = errors.New("quiz session not found")
)
