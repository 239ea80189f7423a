package parse

import (
	"errors"
	"fmt"

	"github.com/dhamidi/recognizer/token"
)

var (
	// ErrInvalidState reports a grammar authoring mistake such as defining a
	// rule twice or extending a rule that was never defined.
	ErrInvalidState = errors.New("invalid rule state")

	// ErrNoProgress reports a repetition whose body succeeded without
	// consuming a token.
	ErrNoProgress = errors.New("repetition made no progress")
)

// RecognitionError signals that the input could not be recognized at Index.
// It is the only error alternatives, options and repetitions recover from.
type RecognitionError struct {
	Index   int
	Token   token.Token
	Matcher *Matcher

	// Recovered is set on the notification a rule in recovery mode emits
	// before matching.
	Recovered bool
	Rule      *Rule
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Token.Line, e.Token.Column, e.Message())
}

// Message describes the failure without its position.
func (e *RecognitionError) Message() string {
	got := fmt.Sprintf("%q", e.Token.Value)
	if e.Token.IsEOF() {
		got = "end of input"
	}
	switch {
	case e.Recovered && e.Rule != nil:
		return fmt.Sprintf("recovering %s at %s", e.Rule.Name(), got)
	case e.Matcher == nil:
		return "unexpected " + got
	}
	msg := fmt.Sprintf("expected %s but got %s", e.Matcher.Definition(), got)
	if r := e.Matcher.Rule(); r != nil {
		msg += " in " + r.Name()
	}
	return msg
}

// IsRecognition reports whether err is, or wraps, a *RecognitionError.
func IsRecognition(err error) bool {
	var re *RecognitionError
	return errors.As(err, &re)
}
