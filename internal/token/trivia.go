package token

import "cstrict/internal/source"

// TriviaKind classifies non-token bytes attached to the following token.
type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaNewline
	// TriviaContinuation is a backslash-newline line splice.
	TriviaContinuation
)

// Trivia is a run of whitespace preceding a token. Comments and
// preprocessor lines are first-class tokens, not trivia, because rules
// inspect their content.
type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}
